package repository

import (
	"context"

	"staybook/internal/availability"
	"staybook/pkg/model"
)

// Tx is the store view inside a room type's critical section. Counts and the
// insert it exposes observe the same snapshot.
type Tx interface {
	availability.Store
	// InsertBooking returns availability.ErrDuplicateReference when the
	// reference is already taken.
	InsertBooking(ctx context.Context, booking *model.Booking) error
}

type TxFunc func(ctx context.Context, tx Tx) error

type BookingRepository interface {
	availability.Store

	// WithRoomTypeLock runs fn while no other booking for roomTypeID can be
	// admitted. An unknown room type yields availability.ErrNotFound.
	WithRoomTypeLock(ctx context.Context, roomTypeID string, fn TxFunc) error

	FindByReference(ctx context.Context, reference string) (*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}
