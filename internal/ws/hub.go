package ws

import (
	"context"

	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/models"
	"marketplace-chat/internal/observability"
	"marketplace-chat/internal/session"
)

// resolver is the slice of the session registry the hub needs.
type resolver interface {
	Resolve(userID string) (session.Conn, bool)
	Disconnect(ctx context.Context, connID string)
}

// Hub fans server events out to whichever recipients are currently
// reachable. Emission is fire-and-forget: a failed write is logged, counted,
// and the dead connection is torn down, but nothing propagates to the
// caller — a broadcast failure must never undo a committed write.
type Hub struct {
	registry resolver
	log      *logrus.Logger
}

func NewHub(registry resolver, log *logrus.Logger) *Hub {
	return &Hub{registry: registry, log: log}
}

// ToRoom emits the event to every reachable participant of the room.
func (h *Hub) ToRoom(room string, recipients []string, event models.ServerEvent) {
	h.emit(room, recipients, "", event)
}

// ToRoomExcept emits to every reachable participant except one, used for
// typing indicators where the sender must not hear itself.
func (h *Hub) ToRoomExcept(room string, recipients []string, exceptUserID string, event models.ServerEvent) {
	h.emit(room, recipients, exceptUserID, event)
}

// ToUser emits a per-user event.
func (h *Hub) ToUser(userID string, event models.ServerEvent) {
	h.emit("", []string{userID}, "", event)
}

func (h *Hub) emit(room string, recipients []string, exceptUserID string, event models.ServerEvent) {
	for _, userID := range recipients {
		if userID == exceptUserID {
			continue
		}
		conn, ok := h.registry.Resolve(userID)
		if !ok {
			continue
		}
		if err := conn.Send(event); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{
				"event":   event.Event,
				"room":    room,
				"user_id": userID,
				"conn_id": conn.ID(),
			}).Warn("websocket write failed, dropping connection")
			observability.IncBroadcastFailure()
			conn.Close()
			h.registry.Disconnect(context.Background(), conn.ID())
			continue
		}
		observability.IncWSEventOut(event.Event)
	}
}
