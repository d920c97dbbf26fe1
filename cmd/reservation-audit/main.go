package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"innkeep/internal/audit"
	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
	kafka_middleware "innkeep/pkg/kafka/middleware"
)

const ServiceName = "reservation-audit"

func main() {
	cfg := config.Load(ServiceName)
	log := cfg.Log

	kcfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kcfg.LogConfiguration(log)

	auditor := audit.NewAuditor(log.Component("audit"))
	consumer, err := kafka.NewConsumer(
		kcfg,
		cfg.KafkaReservationTopic,
		cfg.KafkaAuditGroupID,
		cfg.KafkaReservationDLQTopic,
		auditor.Handle,
		log,
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kcfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Reservation audit consumer started",
		"topic", cfg.KafkaReservationTopic,
		"group_id", cfg.KafkaAuditGroupID,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	metrics.Log(log)
	log.Info("Reservation audit consumer stopped")
}
