package events

import (
	"context"
	"encoding/json"
	"fmt"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher sends events to a durable queue through the default
// exchange. One channel is shared and guarded by amqp091's own locking.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
	log     *logger.Logger
}

func NewRabbitMQPublisher(url, queue string, log *logger.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	log = log.Component("events.rabbitmq")
	log.Info("Connected to RabbitMQ", "queue", queue)
	return &RabbitMQPublisher{conn: conn, channel: ch, queue: queue, log: log}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event model.ReservationEvent) error {
	pub, err := NewPublishing(event)
	if err != nil {
		return err
	}
	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// NewPublishing renders an event as a persistent JSON delivery.
func NewPublishing(event model.ReservationEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Type:         string(event.Type),
		AppId:        source,
		Timestamp:    event.OccurredAt,
		Headers:      amqp.Table{"reservation_id": event.ReservationID, "schema_version": schemaVersion},
		Body:         body,
	}, nil
}

func (p *RabbitMQPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
