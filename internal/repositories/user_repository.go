package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"marketplace-chat/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository covers the slice of the user record this service owns: the
// lookup on connect and the online/offline presence marker.
type UserRepository interface {
	GetByID(ctx context.Context, q Querier, userID string) (models.User, error)
	GetByLiveAddress(ctx context.Context, q Querier, liveAddress string) (models.User, error)
	SetOnline(ctx context.Context, q Querier, userID, liveAddress string) error
	SetOffline(ctx context.Context, q Querier, userID string) error
}

// UserRepo is the sqlx implementation of UserRepository.
type UserRepo struct{}

func NewUserRepo() *UserRepo { return &UserRepo{} }

func (r *UserRepo) GetByID(ctx context.Context, q Querier, userID string) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, q, &user,
		`SELECT id, username, email, role, is_online, live_address, last_seen_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *UserRepo) GetByLiveAddress(ctx context.Context, q Querier, liveAddress string) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, q, &user,
		`SELECT id, username, email, role, is_online, live_address, last_seen_at FROM users WHERE live_address=$1`, liveAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (r *UserRepo) SetOnline(ctx context.Context, q Querier, userID, liveAddress string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE users SET is_online=TRUE, live_address=$2, last_seen_at=NOW() WHERE id=$1`,
		userID, liveAddress)
	return err
}

func (r *UserRepo) SetOffline(ctx context.Context, q Querier, userID string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE users SET is_online=FALSE, live_address=NULL, last_seen_at=NOW() WHERE id=$1`, userID)
	return err
}
