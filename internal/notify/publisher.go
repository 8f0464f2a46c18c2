package notify

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher enqueues notification payloads for the mail worker. Delivery is
// at-least-once on the broker side; this side never awaits completion.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher builds a RabbitMQ publisher, or a noop publisher when AMQP is
// unconfigured or unreachable so the chat flow keeps working without mail.
func NewPublisher(amqpURL, exchange string, log *logrus.Logger) Publisher {
	if amqpURL == "" {
		log.Info("rabbitmq disabled, using noop: empty amqp url")
		return noopPublisher{log: log}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq disabled, using noop")
		return noopPublisher{log: log}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq disabled, using noop")
		_ = conn.Close()
		return noopPublisher{log: log}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq disabled, using noop")
		_ = ch.Close()
		_ = conn.Close()
		return noopPublisher{log: log}
	}

	log.WithField("exchange", exchange).Info("rabbitmq connected")
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct {
	log *logrus.Logger
}

func (n noopPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	n.log.WithField("routing_key", routingKey).Debug("rabbitmq noop publish")
	return nil
}

func (noopPublisher) Close() error { return nil }
