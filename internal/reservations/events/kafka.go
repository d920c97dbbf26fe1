package events

import (
	"context"

	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
	kafka_middleware "innkeep/pkg/kafka/middleware"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

const source = "reservations"

type kafkaProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

// KafkaPublisher keys every record by reservation id so all events of one
// reservation land on the same partition in order.
type KafkaPublisher struct {
	producer kafkaProducer
	metrics  *kafka_middleware.Metrics
	log      *logger.Logger
}

func NewKafkaPublisher(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (*KafkaPublisher, error) {
	log = log.Component("events.kafka")
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic, log)
	if err != nil {
		return nil, err
	}

	metrics := kafka_middleware.NewMetrics()
	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
		producer.Use(metrics.ProducerMiddleware())
	}

	return &KafkaPublisher{producer: producer, metrics: metrics, log: log}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.ReservationEvent) error {
	msg, err := NewKafkaMessage(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// NewKafkaMessage converts an event into a keyed record with event headers.
func NewKafkaMessage(event model.ReservationEvent) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.ReservationID).
		WithValue(event).
		WithEventID("").
		WithEventType(string(event.Type)).
		WithSource(source).
		WithSchemaVersion(schemaVersion).
		WithTimestamp(event.OccurredAt).
		Build()
}

func (p *KafkaPublisher) Close() error {
	p.metrics.Log(p.log)
	return p.producer.Close()
}
