package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"marketplace-chat/internal/observability"
)

// KindChatMessage is the notification kind for an unread chat message.
const KindChatMessage = "chat.message"

// Envelope is the payload handed to the mail worker.
type Envelope struct {
	SchemaVersion int            `json:"schema_version"`
	Kind          string         `json:"kind"`
	OccurredAt    string         `json:"occurred_at"`
	Service       string         `json:"service"`
	Environment   string         `json:"environment"`
	RequestID     string         `json:"request_id,omitempty"`
	Recipient     string         `json:"recipient"`
	Payload       map[string]any `json:"payload"`
}

// Notifier is the fire-and-forget side channel toward outbound mail. Enqueue
// failures are logged and counted; they never reach the chat flow.
type Notifier struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	log         *logrus.Logger
}

func NewNotifier(publisher Publisher, routingKey, service, environment string, log *logrus.Logger) *Notifier {
	return &Notifier{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		log:         log,
	}
}

// Enqueue hands one notification to the broker. Best-effort by contract.
func (n *Notifier) Enqueue(ctx context.Context, kind, recipient string, payload map[string]any) {
	if n == nil || n.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		Kind:          kind,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       n.service,
		Environment:   n.environment,
		RequestID:     observability.RequestIDFromContext(ctx),
		Recipient:     recipient,
		Payload:       payload,
	}

	if err := n.publisher.Publish(ctx, n.routingKey, envelope); err != nil {
		observability.IncNotifyError()
		n.log.WithError(err).WithFields(logrus.Fields{
			"kind":      kind,
			"recipient": recipient,
		}).Warn("notification enqueue failed")
		return
	}
	observability.IncNotifyPublished()
}
