package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketplace-chat/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository abstracts message persistence. Lookups for mutation are
// sender-scoped: a non-owner probing another sender's message simply sees no
// row.
type MessageRepository interface {
	Create(ctx context.Context, q Querier, msg models.Message) error
	List(ctx context.Context, q Querier, chatID string, limit, offset int) ([]models.Message, error)
	Count(ctx context.Context, q Querier, chatID string) (int, error)
	GetBySenderAndID(ctx context.Context, q Querier, chatID, messageID, senderID string) (models.Message, error)
	Update(ctx context.Context, q Querier, messageID string, update models.MessageUpdate) (models.Message, error)
	Delete(ctx context.Context, q Querier, messageID string) error
}

// MessageRepo is the sqlx implementation of MessageRepository.
type MessageRepo struct{}

func NewMessageRepo() *MessageRepo { return &MessageRepo{} }

func (r *MessageRepo) Create(ctx context.Context, q Querier, msg models.Message) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO messages (id, chat_id, chat_room, sender_id, content, is_read, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		msg.ID, msg.ChatID, msg.ChatRoom, msg.SenderID, msg.Content, msg.IsRead, msg.CreatedAt)
	return err
}

// List returns one page of the chat's history, newest first.
func (r *MessageRepo) List(ctx context.Context, q Querier, chatID string, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := sqlx.SelectContext(ctx, q, &msgs,
		`SELECT id, chat_id, chat_room, sender_id, content, is_read, created_at, updated_at
         FROM messages WHERE chat_id=$1
         ORDER BY created_at DESC
         LIMIT $2 OFFSET $3`, chatID, limit, offset)
	return msgs, err
}

func (r *MessageRepo) Count(ctx context.Context, q Querier, chatID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM messages WHERE chat_id=$1`, chatID)
	return count, err
}

func (r *MessageRepo) GetBySenderAndID(ctx context.Context, q Querier, chatID, messageID, senderID string) (models.Message, error) {
	var msg models.Message
	err := sqlx.GetContext(ctx, q, &msg,
		`SELECT id, chat_id, chat_room, sender_id, content, is_read, created_at, updated_at
         FROM messages WHERE id=$1 AND chat_id=$2 AND sender_id=$3`,
		messageID, chatID, senderID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// Update applies the non-nil fields and returns the fresh row.
func (r *MessageRepo) Update(ctx context.Context, q Querier, messageID string, update models.MessageUpdate) (models.Message, error) {
	assignments := ""
	args := []any{messageID}
	if update.Content != nil {
		args = append(args, *update.Content)
		assignments += fmt.Sprintf(", content=$%d", len(args))
	}
	if update.IsRead != nil {
		args = append(args, *update.IsRead)
		assignments += fmt.Sprintf(", is_read=$%d", len(args))
	}

	var msg models.Message
	query := `UPDATE messages SET updated_at=NOW()` + assignments + ` WHERE id=$1
        RETURNING id, chat_id, chat_room, sender_id, content, is_read, created_at, updated_at`
	err := q.QueryRowxContext(ctx, query, args...).StructScan(&msg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

func (r *MessageRepo) Delete(ctx context.Context, q Querier, messageID string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
