package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"marketplace-chat/internal/apperr"
	"marketplace-chat/internal/models"
	"marketplace-chat/internal/observability"
	"marketplace-chat/internal/services"
	"marketplace-chat/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway owns the websocket lifecycle: upgrade, authenticate, register the
// session, pump client operations, tear down on disconnect.
type Gateway struct {
	registry *session.Registry
	typing   *services.TypingService
	log      *logrus.Logger
}

func NewGateway(registry *session.Registry, typing *services.TypingService, log *logrus.Logger) *Gateway {
	return &Gateway{registry: registry, typing: typing, log: log}
}

// Handle upgrades the connection and runs its read loop until disconnect.
func (g *Gateway) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("marketplace-chat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()

	token := bearerToken(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := newClient(conn)

	user, err := g.registry.Connect(ctx, token, cl)
	if err != nil {
		// Auth failures refuse the socket with a clean close frame instead
		// of a generic fault.
		g.log.WithError(err).WithField("ip", observability.IPFromRequest(c.Request)).
			Info("websocket connection rejected")
		code := websocket.CloseInternalServerErr
		if apperr.IsKind(err, apperr.KindAuthRejected) {
			code = websocket.ClosePolicyViolation
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, "connection rejected"))
		_ = conn.Close()
		return
	}

	observability.IncWSActive()
	g.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"conn_id": cl.ID(),
	}).Info("websocket connected")

	go g.readLoop(user.ID, cl, conn)
}

func (g *Gateway) readLoop(userID string, cl *client, conn *websocket.Conn) {
	defer func() {
		// Teardown must never fail back into the transport.
		g.registry.Disconnect(context.Background(), cl.ID())
		observability.DecWSActive()
		_ = conn.Close()
		g.log.WithFields(logrus.Fields{
			"user_id": userID,
			"conn_id": cl.ID(),
		}).Info("websocket disconnected")
	}()

	for {
		var event models.ClientEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.WithError(err).WithField("conn_id", cl.ID()).Warn("websocket read failed")
			}
			return
		}
		g.registry.Touch(context.Background(), cl.ID())
		g.dispatch(userID, cl, event)
	}
}

func (g *Gateway) dispatch(userID string, cl *client, event models.ClientEvent) {
	observability.IncWSEventIn(event.Event)

	var err error
	switch event.Event {
	case models.OpStartTyping:
		err = g.typing.Start(context.Background(), userID, event.Data.ChatID)
	case models.OpStopTyping:
		err = g.typing.Stop(context.Background(), userID, event.Data.ChatID)
	default:
		g.log.WithFields(logrus.Fields{
			"event":   event.Event,
			"conn_id": cl.ID(),
		}).Debug("ignoring unknown client event")
		return
	}

	if err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{
			"event":   event.Event,
			"chat_id": event.Data.ChatID,
			"user_id": userID,
		}).Warn("client operation failed")
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && header[:7] == "Bearer " {
		return header[7:]
	}
	return c.Query("token")
}
