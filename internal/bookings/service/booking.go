package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"staybook/internal/availability"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/export"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	"staybook/internal/events"
	hotelsvalidator "staybook/internal/hotels/validator"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
)

const exportPageSize = 500

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error)
	GetByReference(ctx context.Context, reference string) (*model.Booking, error)
	CheckAvailability(ctx context.Context, roomID, checkIn, checkOut string) (*model.AvailabilityCheck, error)
	Quote(ctx context.Context, roomID, checkIn, checkOut string) (*model.Quote, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context) ([]byte, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	engine    *availability.Engine
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	engine *availability.Engine,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		engine:    engine,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Create admits and stores a booking. Counting overlapping bookings and the
// insert run under the room type's lock, so two requests racing for the last
// room cannot both be admitted.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.BookingConfirmation, error) {
	sanitizeRequest(req)

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "room_id", req.RoomID, "error", err)
		return nil, validationError(err)
	}

	stay, err := s.engine.ParseBookingStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, s.bookingError(err, req.RoomID)
	}

	rt, err := s.repo.GetRoomType(ctx, req.RoomID)
	if err != nil {
		return nil, s.bookingError(err, req.RoomID)
	}
	if rt.HotelID != req.HotelID {
		s.cfg.Log.Warn("Room type does not belong to hotel",
			"room_id", req.RoomID,
			"hotel_id", req.HotelID,
		)
		return nil, apperrors.NotFoundWithID("Room type", req.RoomID)
	}

	booking := &model.Booking{
		ID:         uuid.NewString(),
		HotelID:    req.HotelID,
		RoomTypeID: req.RoomID,
		GuestName:  req.GuestName,
		Email:      req.Email,
		CheckIn:    stay.CheckIn,
		CheckOut:   stay.CheckOut,
		Reference:  uuid.NewString(),
		HotelName:  rt.HotelName,
	}

	var decision *availability.Decision
	err = s.repo.WithRoomTypeLock(ctx, req.RoomID, func(ctx context.Context, tx repository.Tx) error {
		d, err := s.engine.WithStore(tx).Decide(ctx, req.RoomID, stay)
		if err != nil {
			return err
		}
		decision = d

		booking.Nights = d.Nights
		booking.TotalPrice = d.TotalPrice
		booking.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
		return tx.InsertBooking(ctx, booking)
	})
	if err != nil {
		return nil, s.bookingError(err, req.RoomID)
	}

	booking.RoomType = decision.RoomType.Name
	s.cfg.Log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"room_id", booking.RoomTypeID,
		"nights", booking.Nights,
		"total_price", booking.TotalPrice,
	)

	if err := s.publisher.BookingCreated(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking created event", "booking_id", booking.ID, "error", err)
	}

	return &model.BookingConfirmation{
		Reference:     booking.Reference,
		TotalPrice:    booking.TotalPrice,
		Nights:        booking.Nights,
		PricePerNight: decision.PricePerNight,
		Booking:       booking,
	}, nil
}

func (s *bookingService) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	reference = sanitizer.SanitizeReference(reference)
	if reference == "" {
		return nil, apperrors.InvalidInput("Booking reference cannot be empty")
	}

	booking, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, s.lookupError(err, "reference", reference)
	}
	return booking, nil
}

// CheckAvailability answers for one room type. Missing dates give listing
// mode; past dates are allowed since nothing is admitted.
func (s *bookingService) CheckAvailability(ctx context.Context, roomID, checkIn, checkOut string) (*model.AvailabilityCheck, error) {
	roomID = sanitizer.SanitizeID(roomID)
	if roomID == "" {
		return nil, apperrors.InvalidInput("room_id is required")
	}

	stay, err := availability.ParseOptionalStay(sanitizer.SanitizeDate(checkIn), sanitizer.SanitizeDate(checkOut))
	if err != nil {
		return nil, s.bookingError(err, roomID)
	}

	rt, a, err := s.engine.CheckAvailability(ctx, roomID, stay)
	if err != nil {
		return nil, s.bookingError(err, roomID)
	}

	check := &model.AvailabilityCheck{
		RoomTypeID:     rt.ID,
		TotalRooms:     a.TotalRooms,
		BookedRooms:    a.BookedRooms,
		AvailableRooms: a.Available,
		IsAvailable:    a.IsAvailable,
	}
	if stay != nil {
		check.CheckIn = stay.CheckInDate()
		check.CheckOut = stay.CheckOutDate()
	}
	return check, nil
}

// Quote prices a prospective booking without storing it. It applies the
// same checks Create does, so a quote implies Create would admit right now.
func (s *bookingService) Quote(ctx context.Context, roomID, checkIn, checkOut string) (*model.Quote, error) {
	roomID = sanitizer.SanitizeID(roomID)
	if roomID == "" {
		return nil, apperrors.InvalidInput("room_id is required")
	}

	d, err := s.engine.DecideAndPrice(ctx, roomID, sanitizer.SanitizeDate(checkIn), sanitizer.SanitizeDate(checkOut))
	if err != nil {
		return nil, s.bookingError(err, roomID)
	}

	return &model.Quote{
		RoomTypeID:    roomID,
		CheckIn:       d.Stay.CheckInDate(),
		CheckOut:      d.Stay.CheckOutDate(),
		Nights:        d.Nights,
		PricePerNight: d.PricePerNight,
		TotalPrice:    d.TotalPrice,
	}, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", err)
			errCount = apperrors.StoreFailure("Failed to count bookings", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all bookings", "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.StoreFailure("Failed to retrieve bookings", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return bookings, count, nil
}

// Delete cancels a booking. Cancellation removes the row, which frees the
// room for overlapping stays.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.lookupError(err, "id", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.lookupError(err, "id", id)
	}

	s.cfg.Log.Info("Booking cancelled successfully", "booking_id", id, "reference", booking.Reference)
	if err := s.publisher.BookingCancelled(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking cancelled event", "booking_id", id, "error", err)
	}
	return nil
}

// Export renders every booking into an XLSX workbook, newest first.
func (s *bookingService) Export(ctx context.Context) ([]byte, error) {
	sheet := export.NewBookingSheet()

	var offset int64
	for {
		page, err := s.repo.FindAll(ctx, exportPageSize, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to read bookings for export", "offset", offset, "error", err)
			return nil, apperrors.StoreFailure("Failed to export bookings", err)
		}
		if err := sheet.Append(page); err != nil {
			return nil, apperrors.Internal("Failed to export bookings", err)
		}
		if len(page) < exportPageSize {
			break
		}
		offset += int64(len(page))
	}

	data, err := sheet.Bytes()
	if err != nil {
		return nil, apperrors.Internal("Failed to export bookings", err)
	}

	s.cfg.Log.Info("Bookings exported", "rows", sheet.Rows())
	return data, nil
}

func (s *bookingService) lookupError(err error, key, value string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", value)
	}
	s.cfg.Log.Error("Booking store operation failed", key, value, "error", err)
	return apperrors.StoreFailure("Failed to access booking", err)
}

// bookingError maps availability outcomes onto API errors.
func (s *bookingService) bookingError(err error, roomID string) error {
	var full *availability.RoomFullError
	switch {
	case errors.Is(err, availability.ErrInvalidFormat):
		return apperrors.InvalidFormat("Dates must use the YYYY-MM-DD format")
	case errors.Is(err, availability.ErrInvalidRange):
		return apperrors.InvalidRange("check_out must be after check_in")
	case errors.Is(err, availability.ErrPastDate):
		return apperrors.PastDate("check_in cannot be in the past")
	case errors.Is(err, availability.ErrNotFound):
		return apperrors.NotFoundWithID("Room type", roomID)
	case errors.As(err, &full):
		return apperrors.RoomFull("No rooms of this type are available for the selected dates", map[string]any{
			"total_rooms":  full.TotalRooms,
			"booked_rooms": full.BookedRooms,
		})
	case errors.Is(err, availability.ErrDuplicateReference):
		s.cfg.Log.Error("Booking reference collision", "room_id", roomID, "error", err)
		return apperrors.DuplicateReference("Booking reference already exists, please retry")
	case errors.Is(err, bookingserrors.ErrLocked):
		return apperrors.Conflict("This room type is currently being booked by another request. Please try again.")
	default:
		s.cfg.Log.Error("Booking store operation failed", "room_id", roomID, "error", err)
		return apperrors.StoreFailure("Failed to process booking", err)
	}
}

func validationError(err error) error {
	var verrs hotelsvalidator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", verrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

func sanitizeRequest(req *model.BookingRequest) {
	req.HotelID = sanitizer.SanitizeID(req.HotelID)
	req.RoomID = sanitizer.SanitizeID(req.RoomID)
	req.GuestName = sanitizer.SanitizeName(req.GuestName)
	req.Email = sanitizer.SanitizeEmail(req.Email)
	req.CheckIn = sanitizer.SanitizeDate(req.CheckIn)
	req.CheckOut = sanitizer.SanitizeDate(req.CheckOut)
}
