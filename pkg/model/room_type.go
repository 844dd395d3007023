package model

import "time"

type RoomType struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,uuid"`
	HotelID    string    `json:"hotel_id" bson:"hotel_id" validate:"required,uuid"`
	Name       string    `json:"room_type" bson:"room_type" validate:"required,min=2,max=100"`
	Price      int64     `json:"price" bson:"price" validate:"min=0"`
	TotalRooms int       `json:"total_rooms" bson:"total_rooms" validate:"min=0,max=10000"`
	Capacity   int       `json:"capacity" bson:"capacity" validate:"min=1,max=50"`
	HotelName  string    `json:"hotel_name,omitempty" bson:"-" validate:"-"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RoomAvailability is the per-room-type projection shown on detail and search
// pages. BookedRooms is zero in listing mode.
type RoomAvailability struct {
	RoomType
	BookedRooms    int64 `json:"booked_rooms"`
	AvailableRooms int64 `json:"available_rooms"`
	IsAvailable    bool  `json:"is_available"`
}

// RoomUsage is a raw projection row: a room type, its owning hotel and the
// number of bookings overlapping the queried stay.
type RoomUsage struct {
	Hotel    Hotel
	RoomType RoomType
	Booked   int64
}

type SearchResult struct {
	HotelID     string `json:"hotel_id"`
	HotelName   string `json:"hotel_name"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Description string `json:"description"`
	RoomAvailability
}
