package errors

import (
	"errors"

	"staybook/internal/availability"
)

var (
	ErrHotelNotFound = errors.New("hotel not found")

	// ErrRoomTypeNotFound is the engine's not-found sentinel so that one
	// repository can serve both admin lookups and availability decisions.
	ErrRoomTypeNotFound = availability.ErrNotFound
)
