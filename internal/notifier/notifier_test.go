package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"staybook/internal/events"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

type captureSender struct {
	sent []Notification
	err  error
}

func (s *captureSender) Send(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

func eventMessage(t *testing.T, eventType string) kafka.Message {
	t.Helper()
	b := &model.Booking{
		ID:         "b-1",
		Reference:  "ref-1",
		GuestName:  "Grace",
		Email:      "grace@example.com",
		HotelName:  "Harbor Inn",
		CheckIn:    time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2030, 5, 4, 0, 0, 0, 0, time.UTC),
		Nights:     3,
		TotalPrice: 450,
	}
	msg, err := kafka.NewMessage().
		WithKey(b.Reference).
		WithValue(events.NewBookingEvent(eventType, b, time.Now())).
		WithEventType(eventType).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return msg
}

func TestHandle_Created(t *testing.T) {
	sender := &captureSender{}
	n := New(sender, logger.Discard())

	if err := n.Handle(context.Background(), eventMessage(t, events.TypeBookingCreated)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one notification, got %d", len(sender.sent))
	}
	got := sender.sent[0]
	if got.To != "grace@example.com" || !strings.Contains(got.Subject, "confirmed") {
		t.Errorf("unexpected notification %+v", got)
	}
	if !strings.Contains(got.Body, "2030-05-01") || !strings.Contains(got.Body, "3 nights") {
		t.Errorf("body missing stay details: %q", got.Body)
	}
}

func TestHandle_Cancelled(t *testing.T) {
	sender := &captureSender{}
	n := New(sender, logger.Discard())

	if err := n.Handle(context.Background(), eventMessage(t, events.TypeBookingCancelled)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.sent[0].Subject, "cancelled") {
		t.Errorf("unexpected subject %q", sender.sent[0].Subject)
	}
}

func TestHandle_UnknownTypeIsPermanent(t *testing.T) {
	n := New(&captureSender{}, logger.Discard())

	err := n.Handle(context.Background(), eventMessage(t, "booking.updated"))
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Fatalf("expected permanent error, got %v", err)
	}
}

func TestHandle_SendFailureIsTransient(t *testing.T) {
	n := New(&captureSender{err: errors.New("smtp down")}, logger.Discard())

	err := n.Handle(context.Background(), eventMessage(t, events.TypeBookingCreated))
	if !kafka.ShouldRetry(err, 0, 3) {
		t.Fatalf("expected retryable error, got %v", err)
	}
}
