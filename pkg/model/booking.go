package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire form of stay dates.
const DateLayout = "2006-01-02"

type Booking struct {
	ID         string    `json:"id" bson:"_id"`
	HotelID    string    `json:"hotel_id" bson:"hotel_id"`
	RoomTypeID string    `json:"room_id" bson:"room_type_id"`
	GuestName  string    `json:"guest_name" bson:"guest_name"`
	Email      string    `json:"email" bson:"email"`
	CheckIn    time.Time `json:"check_in" bson:"check_in"`
	CheckOut   time.Time `json:"check_out" bson:"check_out"`
	Reference  string    `json:"booking_reference" bson:"booking_reference"`
	TotalPrice int64     `json:"total_price" bson:"total_price"`
	Nights     int       `json:"nights" bson:"nights"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`

	HotelName string `json:"hotel_name,omitempty" bson:"-"`
	RoomType  string `json:"room_type,omitempty" bson:"-"`
}

// bookingJSON shadows the stay dates so they travel as plain calendar dates.
type bookingJSON struct {
	bookingAlias
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type bookingAlias Booking

func (b Booking) MarshalJSON() ([]byte, error) {
	return json.Marshal(bookingJSON{
		bookingAlias: bookingAlias(b),
		CheckIn:      b.CheckIn.UTC().Format(DateLayout),
		CheckOut:     b.CheckOut.UTC().Format(DateLayout),
	})
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	var raw bookingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Booking(raw.bookingAlias)

	var err error
	if b.CheckIn, err = parseDate("check_in", raw.CheckIn); err != nil {
		return err
	}
	if b.CheckOut, err = parseDate("check_out", raw.CheckOut); err != nil {
		return err
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

type BookingRequest struct {
	HotelID   string `json:"hotel_id" validate:"required,uuid"`
	RoomID    string `json:"room_id" validate:"required,uuid"`
	GuestName string `json:"guest_name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	CheckIn   string `json:"check_in" validate:"required"`
	CheckOut  string `json:"check_out" validate:"required"`
}

type BookingConfirmation struct {
	Reference     string   `json:"booking_reference"`
	TotalPrice    int64    `json:"total_price"`
	Nights        int      `json:"nights"`
	PricePerNight int64    `json:"price_per_night"`
	Booking       *Booking `json:"booking"`
}

// AvailabilityCheck is the answer to "how many rooms of this type are free
// for these dates". CheckIn and CheckOut are empty in listing mode.
type AvailabilityCheck struct {
	RoomTypeID     string `json:"room_id"`
	CheckIn        string `json:"check_in,omitempty"`
	CheckOut       string `json:"check_out,omitempty"`
	TotalRooms     int64  `json:"total_rooms"`
	BookedRooms    int64  `json:"booked_rooms"`
	AvailableRooms int64  `json:"available_rooms"`
	IsAvailable    bool   `json:"is_available"`
}

type Quote struct {
	RoomTypeID    string `json:"room_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Nights        int    `json:"nights"`
	PricePerNight int64  `json:"price_per_night"`
	TotalPrice    int64  `json:"total_price"`
}
