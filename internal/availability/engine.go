package availability

import (
	"context"
	"fmt"
	"time"

	"staybook/pkg/model"
)

// Store is the read side the engine needs. Implementations return
// ErrNotFound (possibly wrapped) for an unknown room type; any other error is
// reported to callers as a StoreError.
type Store interface {
	GetRoomType(ctx context.Context, id string) (*model.RoomType, error)
	CountOverlappingBookings(ctx context.Context, roomTypeID string, stay Stay) (int64, error)
}

type Engine struct {
	store    Store
	location *time.Location
	now      func() time.Time
}

type Option func(*Engine)

// WithLocation sets the zone whose calendar date counts as "today".
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithStore returns a copy of the engine reading from store. Booking creation
// uses it to run the admission decision against a transaction-scoped store.
func (e *Engine) WithStore(store Store) *Engine {
	cp := *e
	cp.store = store
	return &cp
}

// Today is the current calendar date in the engine location.
func (e *Engine) Today() time.Time {
	return dateOf(e.now().In(e.location))
}

// ParseBookingStay runs every validation a new booking needs before the
// store is touched: format, ordering, and check-in not before today.
func (e *Engine) ParseBookingStay(checkIn, checkOut string) (Stay, error) {
	stay, err := ParseStay(checkIn, checkOut)
	if err != nil {
		return Stay{}, err
	}
	if stay.CheckIn.Before(e.Today()) {
		return Stay{}, fmt.Errorf("%w: %s", ErrPastDate, stay.CheckInDate())
	}
	return stay, nil
}

type Availability struct {
	TotalRooms  int64
	BookedRooms int64
	Available   int64
	IsAvailable bool
}

// Project derives availability from inventory and overlapping bookings.
// Available never goes negative, even if the store holds more bookings than
// rooms (inventory reduced after the fact).
func Project(totalRooms int, booked int64) Availability {
	total := int64(totalRooms)
	available := total - booked
	if available < 0 {
		available = 0
	}
	return Availability{
		TotalRooms:  total,
		BookedRooms: booked,
		Available:   available,
		IsAvailable: available > 0,
	}
}

// CheckAvailability reports availability of a room type. A nil stay is
// listing mode: no bookings are counted and no date checks apply.
func (e *Engine) CheckAvailability(ctx context.Context, roomTypeID string, stay *Stay) (*model.RoomType, Availability, error) {
	if stay != nil {
		if err := stay.Validate(); err != nil {
			return nil, Availability{}, err
		}
	}

	rt, err := e.store.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, Availability{}, storeErr("get room type", err)
	}

	if stay == nil {
		return rt, Project(rt.TotalRooms, 0), nil
	}

	booked, err := e.store.CountOverlappingBookings(ctx, roomTypeID, *stay)
	if err != nil {
		return nil, Availability{}, storeErr("count overlapping bookings", err)
	}
	return rt, Project(rt.TotalRooms, booked), nil
}

type Decision struct {
	RoomType      *model.RoomType
	Stay          Stay
	BookedRooms   int64
	Nights        int
	PricePerNight int64
	TotalPrice    int64
}

// DecideAndPrice validates the raw dates, then admits and prices a booking.
func (e *Engine) DecideAndPrice(ctx context.Context, roomTypeID, checkIn, checkOut string) (*Decision, error) {
	stay, err := e.ParseBookingStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	return e.Decide(ctx, roomTypeID, stay)
}

// Decide admits a booking for an already validated stay iff fewer than
// total_rooms bookings overlap it. A rejection is ErrRoomFull.
func (e *Engine) Decide(ctx context.Context, roomTypeID string, stay Stay) (*Decision, error) {
	nights := stay.Nights()
	if nights < 1 {
		return nil, fmt.Errorf("%w: stay %s has no nights", ErrInvalidRange, stay)
	}

	rt, err := e.store.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return nil, storeErr("get room type", err)
	}

	booked, err := e.store.CountOverlappingBookings(ctx, roomTypeID, stay)
	if err != nil {
		return nil, storeErr("count overlapping bookings", err)
	}

	if booked >= int64(rt.TotalRooms) {
		return nil, &RoomFullError{RoomTypeID: roomTypeID, TotalRooms: rt.TotalRooms, BookedRooms: booked}
	}

	return &Decision{
		RoomType:      rt,
		Stay:          stay,
		BookedRooms:   booked,
		Nights:        nights,
		PricePerNight: rt.Price,
		TotalPrice:    int64(nights) * rt.Price,
	}, nil
}

// RoomFullError carries the counts behind a rejection. It matches
// ErrRoomFull under errors.Is.
type RoomFullError struct {
	RoomTypeID  string
	TotalRooms  int
	BookedRooms int64
}

func (e *RoomFullError) Error() string {
	return fmt.Sprintf("%v: %d of %d rooms booked", ErrRoomFull, e.BookedRooms, e.TotalRooms)
}

func (e *RoomFullError) Is(target error) bool {
	return target == ErrRoomFull
}
