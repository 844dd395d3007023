package events

import (
	"context"
	"fmt"
	"time"

	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"
)

// Publisher announces booking lifecycle changes to other services.
type Publisher interface {
	BookingCreated(ctx context.Context, b *model.Booking) error
	BookingCancelled(ctx context.Context, b *model.Booking) error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessagePublisher
	source   string
	log      *logger.Logger
	now      func() time.Time
}

func NewKafkaPublisher(producer MessagePublisher, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
		now:      time.Now,
	}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, b *model.Booking) error {
	return p.publish(ctx, TypeBookingCreated, b)
}

func (p *kafkaPublisher) BookingCancelled(ctx context.Context, b *model.Booking) error {
	return p.publish(ctx, TypeBookingCancelled, b)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, b *model.Booking) error {
	evt := NewBookingEvent(eventType, b, p.now())

	msg, err := kafka.NewMessage().
		WithKey(b.Reference).
		WithValue(evt).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithTimestamp(evt.OccurredAt).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	p.log.Debug("Booking event published",
		"event_type", eventType,
		"booking_reference", b.Reference,
		"event_id", msg.GetEventID(),
	)
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingCreated(context.Context, *model.Booking) error   { return nil }
func (noopPublisher) BookingCancelled(context.Context, *model.Booking) error { return nil }
