// Package events publishes reservation lifecycle events to the configured
// broker. Publishing happens after the state change is stored; callers log
// failures and never roll a mutation back because of them.
package events

import (
	"context"
	"fmt"

	"innkeep/pkg/config"
	kafka_config "innkeep/pkg/kafka/config"
	"innkeep/pkg/model"
)

const schemaVersion = "1"

type Publisher interface {
	Publish(ctx context.Context, event model.ReservationEvent) error
	Close() error
}

// New builds the publisher selected by EVENTS_BACKEND.
func New(cfg *config.Config) (Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsBackendNone:
		return Noop{}, nil
	case config.EventsBackendKafka:
		kcfg, err := kafka_config.Load()
		if err != nil {
			return nil, err
		}
		kcfg.LogConfiguration(cfg.Log)
		return NewKafkaPublisher(kcfg, cfg.KafkaReservationTopic, cfg.KafkaReservationDLQTopic, cfg.Log)
	case config.EventsBackendRabbitMQ:
		return NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.Log)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, model.ReservationEvent) error { return nil }

func (Noop) Close() error { return nil }
