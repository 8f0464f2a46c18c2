package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/auth"
	"marketplace-chat/internal/models"
	"marketplace-chat/internal/repositories"
)

// Conn is a live client connection as the registry sees it.
type Conn interface {
	ID() string
	Send(event models.ServerEvent) error
	Close()
}

// Registry maps authenticated users to their single live connection. It is
// the source of truth for "is user X currently reachable"; the user row and
// the Redis mirror only carry advisory markers.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Conn
	byConn map[string]string

	verifier auth.TokenVerifier
	users    repositories.UserRepository
	store    repositories.Store
	presence *PresenceStore
	log      *logrus.Logger
}

func NewRegistry(verifier auth.TokenVerifier, users repositories.UserRepository, store repositories.Store, presence *PresenceStore, log *logrus.Logger) *Registry {
	return &Registry{
		byUser:   make(map[string]Conn),
		byConn:   make(map[string]string),
		verifier: verifier,
		users:    users,
		store:    store,
		presence: presence,
		log:      log,
	}
}

// Connect authenticates the token and records conn as the user's live
// address. A later connect for the same user wins: the displaced socket is
// closed and its mapping dropped. All rejection paths carry KindAuthRejected
// so the transport can refuse the socket cleanly.
func (r *Registry) Connect(ctx context.Context, token string, conn Conn) (models.User, error) {
	principal, err := r.verifier.Verify(token)
	if err != nil {
		return models.User{}, err
	}
	if !principal.Role.Can(auth.ActionConnect) {
		return models.User{}, apperr.Newf(apperr.KindAuthRejected, "role %q may not connect", principal.Role)
	}
	if uuid.Validate(principal.UserID) != nil {
		return models.User{}, apperr.New(apperr.KindAuthRejected, "malformed user id")
	}

	user, err := r.users.GetByID(ctx, r.store.Reader(), principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.User{}, apperr.New(apperr.KindAuthRejected, "unknown user")
		}
		return models.User{}, apperr.Internal(err)
	}

	r.mu.Lock()
	if prev, ok := r.byUser[user.ID]; ok {
		delete(r.byConn, prev.ID())
		prev.Close()
	}
	r.byUser[user.ID] = conn
	r.byConn[conn.ID()] = user.ID
	r.mu.Unlock()

	if err := r.users.SetOnline(ctx, r.store.Reader(), user.ID, conn.ID()); err != nil {
		r.log.WithError(err).WithField("user_id", user.ID).Warn("failed to persist online marker")
	}
	if r.presence != nil {
		if err := r.presence.SetLive(ctx, user.ID, conn.ID()); err != nil {
			r.log.WithError(err).WithField("user_id", user.ID).Warn("failed to mirror live address")
		}
	}

	return user, nil
}

// Touch refreshes the Redis TTL of the user's live-address mirror. The
// transport calls it on client activity; a miss is ignored.
func (r *Registry) Touch(ctx context.Context, connID string) {
	if r.presence == nil {
		return
	}
	userID, ok := r.UserFor(connID)
	if !ok {
		return
	}
	if err := r.presence.Refresh(ctx, userID); err != nil {
		r.log.WithError(err).WithField("user_id", userID).Debug("failed to refresh live address")
	}
}

// Disconnect drops the connection's mapping and marks the user offline. A
// connection with no in-memory mapping falls back to the persisted
// live-address marker, so stale markers left by a previous process still get
// cleared; a miss there too is logged and swallowed — teardown must never
// fail back into the transport.
func (r *Registry) Disconnect(ctx context.Context, connID string) {
	r.mu.Lock()
	userID, ok := r.byConn[connID]
	if ok {
		delete(r.byConn, connID)
		if current, exists := r.byUser[userID]; exists && current.ID() == connID {
			delete(r.byUser, userID)
		}
	}
	r.mu.Unlock()

	if !ok {
		user, err := r.users.GetByLiveAddress(ctx, r.store.Reader(), connID)
		if err != nil {
			r.log.WithField("conn_id", connID).Warn("disconnect for unknown connection")
			return
		}
		userID = user.ID
	}

	if err := r.users.SetOffline(ctx, r.store.Reader(), userID); err != nil {
		r.log.WithError(err).WithField("user_id", userID).Warn("failed to persist offline marker")
	}
	if r.presence != nil {
		if err := r.presence.ClearLive(ctx, userID); err != nil {
			r.log.WithError(err).WithField("user_id", userID).Warn("failed to clear live address")
		}
	}
}

// Resolve returns the user's live connection if one exists.
func (r *Registry) Resolve(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[userID]
	return conn, ok
}

// UserFor returns the user owning a connection.
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}
