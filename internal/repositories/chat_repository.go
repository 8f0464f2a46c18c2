package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"marketplace-chat/internal/models"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrChatExists   = errors.New("chat already exists between these users")
)

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	Create(ctx context.Context, q Querier, chat models.Chat) error
	GetByID(ctx context.Context, q Querier, chatID string) (models.Chat, error)
	GetByParticipants(ctx context.Context, q Querier, userA, userB string) (models.Chat, error)
	GetWithStatuses(ctx context.Context, q Querier, chatID string) (models.ChatWithStatuses, error)
	ListForUser(ctx context.Context, q Querier, userID string) ([]models.ChatSummary, error)
	Delete(ctx context.Context, q Querier, chatID string) error
}

// ChatRepo is the sqlx implementation of ChatRepository.
type ChatRepo struct{}

func NewChatRepo() *ChatRepo { return &ChatRepo{} }

func (r *ChatRepo) Create(ctx context.Context, q Querier, chat models.Chat) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO chats (id, room_name, initiator_id, participant_id, created_at)
         VALUES ($1, $2, $3, $4, NOW())`,
		chat.ID, chat.RoomName, chat.InitiatorID, chat.ParticipantID)
	return err
}

func (r *ChatRepo) GetByID(ctx context.Context, q Querier, chatID string) (models.Chat, error) {
	var chat models.Chat
	err := sqlx.GetContext(ctx, q, &chat,
		`SELECT id, room_name, initiator_id, participant_id, created_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// GetByParticipants finds a chat between two users regardless of who
// initiated it.
func (r *ChatRepo) GetByParticipants(ctx context.Context, q Querier, userA, userB string) (models.Chat, error) {
	var chat models.Chat
	err := sqlx.GetContext(ctx, q, &chat,
		`SELECT id, room_name, initiator_id, participant_id, created_at FROM chats
         WHERE (initiator_id=$1 AND participant_id=$2) OR (initiator_id=$2 AND participant_id=$1)`,
		userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// GetWithStatuses loads a chat together with both participants' status rows.
func (r *ChatRepo) GetWithStatuses(ctx context.Context, q Querier, chatID string) (models.ChatWithStatuses, error) {
	chat, err := r.GetByID(ctx, q, chatID)
	if err != nil {
		return models.ChatWithStatuses{}, err
	}

	var statuses []models.UserChatStatus
	err = sqlx.SelectContext(ctx, q, &statuses,
		`SELECT id, chat_id, user_id, chat_status, notification_status, updated_at
         FROM chat_statuses WHERE chat_id=$1`, chatID)
	if err != nil {
		return models.ChatWithStatuses{}, err
	}
	return models.ChatWithStatuses{Chat: chat, Statuses: statuses}, nil
}

// ListForUser returns the caller's chats with their own status attached,
// hidden and removed ones filtered out.
func (r *ChatRepo) ListForUser(ctx context.Context, q Querier, userID string) ([]models.ChatSummary, error) {
	type row struct {
		models.Chat
		ChatStatus         models.ChatStatus         `db:"chat_status"`
		NotificationStatus models.NotificationStatus `db:"notification_status"`
	}

	var rows []row
	err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT c.id, c.room_name, c.initiator_id, c.participant_id, c.created_at,
                s.chat_status, s.notification_status
         FROM chats c
         JOIN chat_statuses s ON s.chat_id = c.id AND s.user_id = $1
         WHERE s.chat_status = 'active'
         ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, models.ChatSummary{
			ChatID:             r.ID,
			RoomName:           r.RoomName,
			FriendID:           r.Chat.OtherParticipant(userID),
			ChatStatus:         r.ChatStatus,
			NotificationStatus: r.NotificationStatus,
			CreatedAt:          r.CreatedAt,
		})
	}
	return summaries, nil
}

func (r *ChatRepo) Delete(ctx context.Context, q Querier, chatID string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, chatID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}
	return nil
}
