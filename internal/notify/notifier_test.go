package notify

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"marketplace-chat/internal/mocks"
	"marketplace-chat/internal/observability"
)

func newNotifierFixture(publisher Publisher) *Notifier {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewNotifier(publisher, "notifications.email", "marketplace-chat", "test", log)
}

func TestEnqueuePublishesEnvelopeOnce(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	notifier := newNotifierFixture(publisher)

	chatID, messageID := uuid.NewString(), uuid.NewString()
	var published Envelope
	publisher.On("Publish", mock.Anything, "notifications.email", mock.Anything).
		Run(func(args mock.Arguments) { published = args.Get(2).(Envelope) }).
		Return(nil).Once()

	ctx := observability.ContextWithRequestID(context.Background(), "req-7")
	notifier.Enqueue(ctx, KindChatMessage, "buyer@example.com", map[string]any{
		"chatId":    chatID,
		"messageId": messageID,
	})

	assert.Equal(t, 1, published.SchemaVersion)
	assert.Equal(t, KindChatMessage, published.Kind)
	assert.Equal(t, "marketplace-chat", published.Service)
	assert.Equal(t, "test", published.Environment)
	assert.Equal(t, "req-7", published.RequestID)
	assert.Equal(t, "buyer@example.com", published.Recipient)
	assert.Equal(t, chatID, published.Payload["chatId"])
	assert.NotEmpty(t, published.OccurredAt)
	publisher.AssertExpectations(t)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestEnqueuePublishErrorSwallowed(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	notifier := newNotifierFixture(publisher)

	publisher.On("Publish", mock.Anything, "notifications.email", mock.Anything).
		Return(assert.AnError).Once()

	// Best-effort by contract: the failure must not escape.
	notifier.Enqueue(context.Background(), KindChatMessage, "buyer@example.com", nil)
	publisher.AssertExpectations(t)
}

func TestEnqueueWithoutPublisherIsNoop(t *testing.T) {
	notifier := newNotifierFixture(nil)
	notifier.Enqueue(context.Background(), KindChatMessage, "buyer@example.com", nil)
}

func TestNewPublisherWithoutURLFallsBackToNoop(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	publisher := NewPublisher("", "notifications", log)
	require.NotNil(t, publisher)
	assert.NoError(t, publisher.Publish(context.Background(), "notifications.email", Envelope{}))
	assert.NoError(t, publisher.Close())
}
