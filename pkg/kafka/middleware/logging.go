package kafka_middleware

import (
	"context"
	"time"

	"staybook/pkg/kafka"
	"staybook/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"correlation_id", msg.GetCorrelationID(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Error("Failed to publish message", append(attrs, "error", err)...)
		} else {
			log.Debug("Published message", attrs...)
		}
		return err
	}
}

func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"retry_count", msg.GetRetryCount(),
			"duration", time.Since(start),
		}
		if err != nil {
			log.Warn("Failed to process message", append(attrs, "error", err)...)
		} else {
			log.Debug("Processed message", attrs...)
		}
		return err
	}
}
