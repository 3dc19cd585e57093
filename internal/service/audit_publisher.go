package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	q "github.com/babyshop/api/internal/queue"
)

// AuditPublisher pushes auth audit events to RabbitMQ. Publishing is always
// best-effort: errors are logged and returned, and callers ignore them so a
// broker outage never blocks a login.
type AuditPublisher interface {
	Publish(ctx context.Context, event q.AuthAuditEvent) error
}

// AMQPAuditPublisher dials the broker per publish. Auth events are low-volume
// enough that a pooled channel is not worth the reconnect bookkeeping.
type AMQPAuditPublisher struct {
	log zerolog.Logger
}

func NewAMQPAuditPublisher(log zerolog.Logger) *AMQPAuditPublisher {
	return &AMQPAuditPublisher{log: log}
}

// Publish sends one event to the auth.audit queue, durable and persistent so
// audit records survive broker restarts.
func (p *AMQPAuditPublisher) Publish(ctx context.Context, event q.AuthAuditEvent) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(q.AuditQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq queue declare failed")
		return err
	}

	if event.OccurredAt == "" {
		event.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("event", event.Event).Msg("audit event marshal failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.AuditQueueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Str("event", event.Event).Msg("audit event publish failed")
		return err
	}
	return nil
}
