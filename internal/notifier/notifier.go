package notifier

import (
	"context"
	"fmt"

	"staybook/internal/events"
	"staybook/pkg/kafka"
	"staybook/pkg/logger"
)

// Notification is a rendered guest message.
type Notification struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a notification to a guest.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct {
	Log *logger.Logger
}

func (s LogSender) Send(_ context.Context, n Notification) error {
	s.Log.Info("Guest notification", "to", n.To, "subject", n.Subject, "body", n.Body)
	return nil
}

type Notifier struct {
	sender Sender
	log    *logger.Logger
}

func New(sender Sender, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, log: log}
}

// Handle is a kafka.MessageHandler for the booking topic.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	evt, err := events.DecodeBookingEvent(msg)
	if err != nil {
		return err
	}

	note, err := render(evt)
	if err != nil {
		return err
	}

	if err := n.sender.Send(ctx, note); err != nil {
		return kafka.NewTransientError("failed to send notification", err)
	}

	n.log.Info("Booking notification sent",
		"event_type", evt.Type,
		"booking_reference", evt.Reference,
		"event_id", msg.GetEventID(),
	)
	return nil
}

func render(evt *events.BookingEvent) (Notification, error) {
	hotel := evt.HotelName
	if hotel == "" {
		hotel = "your hotel"
	}

	switch evt.Type {
	case events.TypeBookingCreated:
		return Notification{
			To:      evt.Email,
			Subject: "Booking confirmed: " + evt.Reference,
			Body: fmt.Sprintf("Dear %s, your stay at %s from %s to %s (%d nights) is confirmed. Total: %d.",
				evt.GuestName, hotel, evt.CheckIn, evt.CheckOut, evt.Nights, evt.TotalPrice),
		}, nil
	case events.TypeBookingCancelled:
		return Notification{
			To:      evt.Email,
			Subject: "Booking cancelled: " + evt.Reference,
			Body: fmt.Sprintf("Dear %s, your stay at %s from %s to %s has been cancelled.",
				evt.GuestName, hotel, evt.CheckIn, evt.CheckOut),
		}, nil
	default:
		return Notification{}, kafka.NewPermanentError("invalid message", fmt.Errorf("unknown event type %q", evt.Type))
	}
}
