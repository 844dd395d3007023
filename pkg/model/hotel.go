package model

import "time"

type Hotel struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=150"`
	City        string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Address     string    `json:"address" bson:"address" validate:"omitempty,max=255"`
	Description string    `json:"description" bson:"description" validate:"omitempty,max=2000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// HotelDetail is a hotel together with the availability projection of each
// of its room types for an optional stay.
type HotelDetail struct {
	Hotel
	CheckIn  string              `json:"check_in,omitempty"`
	CheckOut string              `json:"check_out,omitempty"`
	Rooms    []*RoomAvailability `json:"rooms"`
}
