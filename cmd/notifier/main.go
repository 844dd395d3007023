package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"staybook/internal/notifier"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
	"staybook/pkg/logger"
)

const ServiceName = "staybook-notifier"

func main() {
	log := logger.New(logger.Config{
		Level:     os.Getenv("LOG_LEVEL"),
		Format:    logger.JSON,
		AddSource: true,
		Service:   ServiceName,
	})

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled() {
		log.Fatal("KAFKA_BROKERS must be set for the notifier")
	}
	kafkaCfg.LogConfiguration(log)

	n := notifier.New(notifier.LogSender{Log: log}, log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.BookingTopic,
		kafkaCfg.ConsumerGroupID,
		kafkaCfg.BookingDLQTopic,
		n.Handle,
		log,
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Notifier started", "topic", kafkaCfg.BookingTopic, "group_id", kafkaCfg.ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifier stopped")
}
