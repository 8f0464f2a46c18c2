package services

import (
	"context"
	"errors"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/models"
	"marketplace-chat/internal/repositories"
)

// Broadcaster pushes committed events to reachable sessions. Implementations
// must be fire-and-forget: services call it from post-commit hooks and never
// observe failures.
type Broadcaster interface {
	ToRoom(room string, recipients []string, event models.ServerEvent)
	ToRoomExcept(room string, recipients []string, exceptUserID string, event models.ServerEvent)
	ToUser(userID string, event models.ServerEvent)
}

// Notifier is the fire-and-forget side channel toward outbound mail.
type Notifier interface {
	Enqueue(ctx context.Context, kind, recipient string, payload map[string]any)
}

// mapStoreErr translates repository sentinels into the outward error
// taxonomy. Unknown failures normalize to an internal fault.
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrChatNotFound):
		return apperr.Wrap(apperr.KindNotFound, "chat not found", err)
	case errors.Is(err, repositories.ErrMessageNotFound):
		return apperr.Wrap(apperr.KindNotFound, "message not found", err)
	case errors.Is(err, repositories.ErrStatusNotFound):
		return apperr.Wrap(apperr.KindNotFound, "chat status not found", err)
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperr.Wrap(apperr.KindNotFound, "user not found", err)
	case errors.Is(err, repositories.ErrStatusCardinality):
		return apperr.Wrap(apperr.KindInternal, "chat status invariant violated", err)
	default:
		return apperr.Internal(err)
	}
}
