package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"staybook/internal/availability"
	hotelserrors "staybook/internal/hotels/errors"
	"staybook/internal/hotels/repository"
	"staybook/internal/hotels/validator"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
)

// SearchQuery is a city search for rooms. Empty dates mean listing mode and
// a zero Guests applies no capacity filter.
type SearchQuery struct {
	City     string
	CheckIn  string
	CheckOut string
	Guests   int
}

type HotelService interface {
	Search(ctx context.Context, city string) ([]*model.Hotel, error)
	Detail(ctx context.Context, id, checkIn, checkOut string) (*model.HotelDetail, error)
	SearchAvailable(ctx context.Context, q SearchQuery) ([]*model.SearchResult, error)

	CreateHotel(ctx context.Context, h *model.Hotel) error
	GetAllHotels(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error)
	UpdateHotel(ctx context.Context, id string, h *model.Hotel) error
	DeleteHotel(ctx context.Context, id string) error

	CreateRoomType(ctx context.Context, rt *model.RoomType) error
	GetAllRoomTypes(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, int64, error)
	UpdateRoomType(ctx context.Context, id string, rt *model.RoomType) error
	DeleteRoomType(ctx context.Context, id string) error
}

type hotelService struct {
	repo      repository.HotelRepository
	validator *validator.HotelValidator
	cfg       *config.Config
}

func NewHotelService(
	repo repository.HotelRepository,
	validator *validator.HotelValidator,
	cfg *config.Config,
) HotelService {
	return &hotelService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *hotelService) Search(ctx context.Context, city string) ([]*model.Hotel, error) {
	city = sanitizer.SanitizeCity(city)

	hotels, err := s.repo.SearchHotelsByCity(ctx, city)
	if err != nil {
		s.cfg.Log.Error("Failed to search hotels", "city", city, "error", err)
		return nil, apperrors.StoreFailure("Failed to search hotels", err)
	}

	s.cfg.Log.Debug("Hotel search completed", "city", city, "results_count", len(hotels))
	return hotels, nil
}

// Detail returns a hotel with every room type projected against the stay.
// Missing or partial dates give listing mode. Dates in the past are allowed:
// this is a read, not an admission.
func (s *hotelService) Detail(ctx context.Context, id, checkIn, checkOut string) (*model.HotelDetail, error) {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	stay, err := availability.ParseOptionalStay(sanitizer.SanitizeDate(checkIn), sanitizer.SanitizeDate(checkOut))
	if err != nil {
		return nil, stayError(err)
	}

	hotel, err := s.repo.FindHotelByID(ctx, id)
	if err != nil {
		return nil, s.hotelLookupError(err, id)
	}

	usage, err := s.repo.ListRoomUsage(ctx, repository.RoomFilter{HotelID: id, Stay: stay})
	if err != nil {
		s.cfg.Log.Error("Failed to project room availability", "hotel_id", id, "error", err)
		return nil, apperrors.StoreFailure("Failed to compute room availability", err)
	}

	detail := &model.HotelDetail{Hotel: *hotel, Rooms: make([]*model.RoomAvailability, 0, len(usage))}
	if stay != nil {
		detail.CheckIn = stay.CheckInDate()
		detail.CheckOut = stay.CheckOutDate()
	}
	for _, u := range usage {
		detail.Rooms = append(detail.Rooms, project(u))
	}
	return detail, nil
}

// SearchAvailable lists room types in matching cities that still have at
// least one free room for the stay and fit the party size.
func (s *hotelService) SearchAvailable(ctx context.Context, q SearchQuery) ([]*model.SearchResult, error) {
	if q.Guests < 0 {
		return nil, apperrors.InvalidInput("guests must be positive")
	}

	stay, err := availability.ParseOptionalStay(sanitizer.SanitizeDate(q.CheckIn), sanitizer.SanitizeDate(q.CheckOut))
	if err != nil {
		return nil, stayError(err)
	}

	city := sanitizer.SanitizeCity(q.City)
	usage, err := s.repo.ListRoomUsage(ctx, repository.RoomFilter{
		City:        city,
		MinCapacity: q.Guests,
		Stay:        stay,
	})
	if err != nil {
		s.cfg.Log.Error("Failed to search available rooms",
			"city", city,
			"guests", q.Guests,
			"error", err,
		)
		return nil, apperrors.StoreFailure("Failed to search available rooms", err)
	}

	results := make([]*model.SearchResult, 0, len(usage))
	for _, u := range usage {
		ra := project(u)
		if !ra.IsAvailable {
			continue
		}
		results = append(results, &model.SearchResult{
			HotelID:          u.Hotel.ID,
			HotelName:        u.Hotel.Name,
			City:             u.Hotel.City,
			Address:          u.Hotel.Address,
			Description:      u.Hotel.Description,
			RoomAvailability: *ra,
		})
	}

	s.cfg.Log.Debug("Availability search completed",
		"city", city,
		"guests", q.Guests,
		"dated", stay != nil,
		"results_count", len(results),
	)
	return results, nil
}

func (s *hotelService) CreateHotel(ctx context.Context, h *model.Hotel) error {
	sanitizeHotel(h)
	h.ID = uuid.NewString()

	if err := s.validator.ValidateHotel(h); err != nil {
		s.cfg.Log.Warn("Hotel validation failed", "name", h.Name, "error", err)
		return validationError("Hotel validation failed", err)
	}

	if err := s.repo.CreateHotel(ctx, h); err != nil {
		s.cfg.Log.Error("Failed to create hotel", "name", h.Name, "error", err)
		return apperrors.StoreFailure("Failed to create hotel", err)
	}

	s.cfg.Log.Info("Hotel created successfully", "id", h.ID, "name", h.Name, "city", h.City)
	return nil
}

func (s *hotelService) GetAllHotels(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var hotels []*model.Hotel
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountHotels(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count hotels", "error", err)
			errCount = apperrors.StoreFailure("Failed to count hotels", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		hotels, err = s.repo.FindHotels(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all hotels", "limit", limit, "offset", offset, "error", err)
			errFind = apperrors.StoreFailure("Failed to retrieve hotels", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return hotels, count, nil
}

func (s *hotelService) UpdateHotel(ctx context.Context, id string, h *model.Hotel) error {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	existing, err := s.repo.FindHotelByID(ctx, id)
	if err != nil {
		return s.hotelLookupError(err, id)
	}

	sanitizeHotel(h)
	h.ID = id
	h.CreatedAt = existing.CreatedAt
	if err := s.validator.ValidateHotel(h); err != nil {
		s.cfg.Log.Warn("Hotel validation failed", "id", id, "error", err)
		return validationError("Hotel validation failed", err)
	}

	if err := s.repo.UpdateHotel(ctx, h); err != nil {
		return s.hotelLookupError(err, id)
	}

	s.cfg.Log.Info("Hotel updated successfully", "id", id, "name", h.Name)
	return nil
}

func (s *hotelService) DeleteHotel(ctx context.Context, id string) error {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}

	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		return s.hotelLookupError(err, id)
	}

	s.cfg.Log.Info("Hotel deleted successfully", "id", id)
	return nil
}

func (s *hotelService) CreateRoomType(ctx context.Context, rt *model.RoomType) error {
	sanitizeRoomType(rt)
	rt.ID = uuid.NewString()

	if err := s.validator.ValidateRoomType(rt); err != nil {
		s.cfg.Log.Warn("Room type validation failed", "hotel_id", rt.HotelID, "room_type", rt.Name, "error", err)
		return validationError("Room type validation failed", err)
	}

	if err := s.repo.CreateRoomType(ctx, rt); err != nil {
		return s.hotelLookupError(err, rt.HotelID)
	}

	s.cfg.Log.Info("Room type created successfully",
		"id", rt.ID,
		"hotel_id", rt.HotelID,
		"room_type", rt.Name,
		"total_rooms", rt.TotalRooms,
	)
	return nil
}

func (s *hotelService) GetAllRoomTypes(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, int64, error) {
	hotelID = sanitizer.SanitizeID(hotelID)
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var roomTypes []*model.RoomType
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountRoomTypes(ctx, hotelID)
		if err != nil {
			s.cfg.Log.Error("Failed to count room types", "hotel_id", hotelID, "error", err)
			errCount = apperrors.StoreFailure("Failed to count room types", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		roomTypes, err = s.repo.FindRoomTypes(ctx, hotelID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get room types", "hotel_id", hotelID, "error", err)
			errFind = apperrors.StoreFailure("Failed to retrieve room types", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return roomTypes, count, nil
}

// UpdateRoomType replaces name, price, inventory and capacity. The owning
// hotel cannot change.
func (s *hotelService) UpdateRoomType(ctx context.Context, id string, rt *model.RoomType) error {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return apperrors.InvalidInput("Room type ID cannot be empty")
	}

	existing, err := s.repo.FindRoomTypeByID(ctx, id)
	if err != nil {
		return s.roomTypeLookupError(err, id)
	}

	sanitizeRoomType(rt)
	rt.ID = id
	rt.HotelID = existing.HotelID
	rt.HotelName = existing.HotelName
	rt.CreatedAt = existing.CreatedAt
	if err := s.validator.ValidateRoomType(rt); err != nil {
		s.cfg.Log.Warn("Room type validation failed", "id", id, "error", err)
		return validationError("Room type validation failed", err)
	}

	if err := s.repo.UpdateRoomType(ctx, rt); err != nil {
		return s.roomTypeLookupError(err, id)
	}

	s.cfg.Log.Info("Room type updated successfully", "id", id, "total_rooms", rt.TotalRooms, "price", rt.Price)
	return nil
}

func (s *hotelService) DeleteRoomType(ctx context.Context, id string) error {
	id = sanitizer.SanitizeID(id)
	if id == "" {
		return apperrors.InvalidInput("Room type ID cannot be empty")
	}

	if err := s.repo.DeleteRoomType(ctx, id); err != nil {
		return s.roomTypeLookupError(err, id)
	}

	s.cfg.Log.Info("Room type deleted successfully", "id", id)
	return nil
}

func (s *hotelService) hotelLookupError(err error, id string) error {
	if errors.Is(err, hotelserrors.ErrHotelNotFound) {
		return apperrors.NotFoundWithID("Hotel", id)
	}
	s.cfg.Log.Error("Hotel store operation failed", "hotel_id", id, "error", err)
	return apperrors.StoreFailure("Failed to access hotel", err)
}

func (s *hotelService) roomTypeLookupError(err error, id string) error {
	if errors.Is(err, hotelserrors.ErrRoomTypeNotFound) {
		return apperrors.NotFoundWithID("Room type", id)
	}
	s.cfg.Log.Error("Room type store operation failed", "room_type_id", id, "error", err)
	return apperrors.StoreFailure("Failed to access room type", err)
}

func project(u *model.RoomUsage) *model.RoomAvailability {
	a := availability.Project(u.RoomType.TotalRooms, u.Booked)
	rt := u.RoomType
	rt.HotelName = u.Hotel.Name
	return &model.RoomAvailability{
		RoomType:       rt,
		BookedRooms:    a.BookedRooms,
		AvailableRooms: a.Available,
		IsAvailable:    a.IsAvailable,
	}
}

func stayError(err error) error {
	switch {
	case errors.Is(err, availability.ErrInvalidFormat):
		return apperrors.InvalidFormat("Dates must use the YYYY-MM-DD format")
	case errors.Is(err, availability.ErrInvalidRange):
		return apperrors.InvalidRange("check_out must be after check_in")
	default:
		return apperrors.InvalidInput(err.Error())
	}
}

func validationError(msg string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(msg, verrs.Details())
	}
	return apperrors.Validation(msg, map[string]any{"error": err.Error()})
}

func sanitizeHotel(h *model.Hotel) {
	h.Name = sanitizer.SanitizeName(h.Name)
	h.City = sanitizer.SanitizeCity(h.City)
	h.Address = sanitizer.SanitizeName(h.Address)
	h.Description = sanitizer.SanitizeText(h.Description)
}

func sanitizeRoomType(rt *model.RoomType) {
	rt.HotelID = sanitizer.SanitizeID(rt.HotelID)
	rt.Name = sanitizer.SanitizeName(rt.Name)
}
