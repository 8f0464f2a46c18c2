package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketplace-chat/internal/models"
)

var (
	ErrStatusNotFound = errors.New("chat status not found")
	// ErrStatusCardinality signals a violated exactly-one-row invariant.
	ErrStatusCardinality = errors.New("expected exactly one chat status row")
)

// StatusRepository abstracts per-(chat,user) status persistence.
type StatusRepository interface {
	Create(ctx context.Context, q Querier, status models.UserChatStatus) error
	GetByID(ctx context.Context, q Querier, statusID string) (models.UserChatStatus, error)
	GetByChatAndUser(ctx context.Context, q Querier, chatID, userID string) (models.UserChatStatus, error)
	Update(ctx context.Context, q Querier, statusID string, update models.StatusUpdate) (models.UserChatStatus, error)
}

// StatusRepo is the sqlx implementation of StatusRepository.
type StatusRepo struct{}

func NewStatusRepo() *StatusRepo { return &StatusRepo{} }

func (r *StatusRepo) Create(ctx context.Context, q Querier, status models.UserChatStatus) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO chat_statuses (id, chat_id, user_id, chat_status, notification_status, updated_at)
         VALUES ($1, $2, $3, $4, $5, NOW())`,
		status.ID, status.ChatID, status.UserID, status.ChatStatus, status.NotificationStatus)
	return err
}

func (r *StatusRepo) GetByID(ctx context.Context, q Querier, statusID string) (models.UserChatStatus, error) {
	var status models.UserChatStatus
	err := sqlx.GetContext(ctx, q, &status,
		`SELECT id, chat_id, user_id, chat_status, notification_status, updated_at
         FROM chat_statuses WHERE id=$1`, statusID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserChatStatus{}, ErrStatusNotFound
	}
	return status, err
}

// GetByChatAndUser asserts the exactly-one-row invariant instead of trusting
// the unique constraint: zero rows is ErrStatusNotFound, more than one is
// ErrStatusCardinality and must surface as an internal fault.
func (r *StatusRepo) GetByChatAndUser(ctx context.Context, q Querier, chatID, userID string) (models.UserChatStatus, error) {
	var statuses []models.UserChatStatus
	err := sqlx.SelectContext(ctx, q, &statuses,
		`SELECT id, chat_id, user_id, chat_status, notification_status, updated_at
         FROM chat_statuses WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
	if err != nil {
		return models.UserChatStatus{}, err
	}
	switch len(statuses) {
	case 0:
		return models.UserChatStatus{}, ErrStatusNotFound
	case 1:
		return statuses[0], nil
	default:
		return models.UserChatStatus{}, ErrStatusCardinality
	}
}

// Update applies the non-nil fields and returns the fresh row.
func (r *StatusRepo) Update(ctx context.Context, q Querier, statusID string, update models.StatusUpdate) (models.UserChatStatus, error) {
	assignments := ""
	args := []any{statusID}
	if update.ChatStatus != nil {
		args = append(args, *update.ChatStatus)
		assignments += fmt.Sprintf(", chat_status=$%d", len(args))
	}
	if update.NotificationStatus != nil {
		args = append(args, *update.NotificationStatus)
		assignments += fmt.Sprintf(", notification_status=$%d", len(args))
	}

	var status models.UserChatStatus
	query := `UPDATE chat_statuses SET updated_at=NOW()` + assignments + ` WHERE id=$1
        RETURNING id, chat_id, user_id, chat_status, notification_status, updated_at`
	err := q.QueryRowxContext(ctx, query, args...).StructScan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserChatStatus{}, ErrStatusNotFound
	}
	return status, err
}
