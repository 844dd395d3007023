package events

import (
	"fmt"
	"time"

	"staybook/pkg/kafka"
	"staybook/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"

	SchemaVersion = "1"

	dateLayout = "2006-01-02"
)

// BookingEvent is the payload published for every booking state change.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	Reference  string    `json:"booking_reference"`
	HotelID    string    `json:"hotel_id"`
	HotelName  string    `json:"hotel_name,omitempty"`
	RoomTypeID string    `json:"room_id"`
	RoomType   string    `json:"room_type,omitempty"`
	GuestName  string    `json:"guest_name"`
	Email      string    `json:"email"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Nights     int       `json:"nights"`
	TotalPrice int64     `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *model.Booking, at time.Time) *BookingEvent {
	return &BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		Reference:  b.Reference,
		HotelID:    b.HotelID,
		HotelName:  b.HotelName,
		RoomTypeID: b.RoomTypeID,
		RoomType:   b.RoomType,
		GuestName:  b.GuestName,
		Email:      b.Email,
		CheckIn:    b.CheckIn.UTC().Format(dateLayout),
		CheckOut:   b.CheckOut.UTC().Format(dateLayout),
		Nights:     b.Nights,
		TotalPrice: b.TotalPrice,
		OccurredAt: at.UTC(),
	}
}

// DecodeBookingEvent reads a BookingEvent from msg. Messages whose header and
// payload disagree on the event type are rejected.
func DecodeBookingEvent(msg kafka.Message) (*BookingEvent, error) {
	var evt BookingEvent
	if err := msg.DecodeValue(&evt); err != nil {
		return nil, err
	}
	if header := msg.GetEventType(); header != "" && header != evt.Type {
		return nil, kafka.NewPermanentError("schema mismatch",
			fmt.Errorf("header event type %q, payload type %q", header, evt.Type))
	}
	if evt.Reference == "" {
		return nil, kafka.NewPermanentError("invalid message", fmt.Errorf("booking event without reference"))
	}
	return &evt, nil
}
