package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	hotelserrors "staybook/internal/hotels/errors"
	"staybook/pkg/config"
	"staybook/pkg/db/postgres"
	"staybook/pkg/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	hotelColumns    = []string{"id", "name", "city", "address", "description", "created_at"}
	roomTypeColumns = []string{"r.id", "r.hotel_id", "r.room_type", "r.price", "r.total_rooms", "r.capacity", "r.created_at"}
)

type postgresHotelRepository struct {
	cfg *config.Config
	db  *sql.DB
}

func NewPostgresHotelRepository(cfg *config.Config, db *sql.DB) HotelRepository {
	return &postgresHotelRepository{cfg: cfg, db: db}
}

func (r *postgresHotelRepository) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *postgresHotelRepository) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.WriteTimeout)
}

func (r *postgresHotelRepository) CreateHotel(ctx context.Context, h *model.Hotel) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	h.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	query, args, err := psql.Insert("hotels").
		Columns(hotelColumns...).
		Values(h.ID, h.Name, h.City, h.Address, h.Description, h.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (r *postgresHotelRepository) FindHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, hotelserrors.ErrHotelNotFound
	}

	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := psql.Select(hotelColumns...).From("hotels").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	h, err := scanHotel(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hotelserrors.ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}
	return h, nil
}

func (r *postgresHotelRepository) FindHotels(ctx context.Context, limit int, offset int64) ([]*model.Hotel, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := psql.Select(hotelColumns...).
		From("hotels").
		OrderBy("name", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.queryHotels(ctx, query, args)
}

func (r *postgresHotelRepository) CountHotels(ctx context.Context) (int64, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotels").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count hotels: %w", err)
	}
	return count, nil
}

func (r *postgresHotelRepository) SearchHotelsByCity(ctx context.Context, city string) ([]*model.Hotel, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := psql.Select(hotelColumns...).
		From("hotels").
		Where(sq.ILike{"city": containsPattern(city)}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.queryHotels(ctx, query, args)
}

func (r *postgresHotelRepository) UpdateHotel(ctx context.Context, h *model.Hotel) error {
	if _, err := uuid.Parse(h.ID); err != nil {
		return hotelserrors.ErrHotelNotFound
	}

	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query, args, err := psql.Update("hotels").
		Set("name", h.Name).
		Set("city", h.City).
		Set("address", h.Address).
		Set("description", h.Description).
		Where(sq.Eq{"id": h.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	return r.execAffectingOne(ctx, query, args, hotelserrors.ErrHotelNotFound, "update hotel")
}

// DeleteHotel removes the hotel; room types and bookings go with it through
// ON DELETE CASCADE.
func (r *postgresHotelRepository) DeleteHotel(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return hotelserrors.ErrHotelNotFound
	}

	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query, args, err := psql.Delete("hotels").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	return r.execAffectingOne(ctx, query, args, hotelserrors.ErrHotelNotFound, "delete hotel")
}

func (r *postgresHotelRepository) CreateRoomType(ctx context.Context, rt *model.RoomType) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	rt.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	query, args, err := psql.Insert("room_types").
		Columns("id", "hotel_id", "room_type", "price", "total_rooms", "capacity", "created_at").
		Values(rt.ID, rt.HotelID, rt.Name, rt.Price, rt.TotalRooms, rt.Capacity, rt.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return hotelserrors.ErrHotelNotFound
		}
		return fmt.Errorf("failed to create room type: %w", err)
	}
	return nil
}

func (r *postgresHotelRepository) FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, hotelserrors.ErrRoomTypeNotFound
	}

	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := roomTypeSelect().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rt, err := scanRoomType(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hotelserrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to find room type: %w", err)
	}
	return rt, nil
}

func (r *postgresHotelRepository) FindRoomTypes(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, error) {
	if !validHotelFilter(hotelID) {
		return []*model.RoomType{}, nil
	}

	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	q := roomTypeSelect()
	if hotelID != "" {
		q = q.Where(sq.Eq{"r.hotel_id": hotelID})
	}
	query, args, err := q.OrderBy("h.name", "r.room_type", "r.id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find room types: %w", err)
	}
	defer rows.Close()

	roomTypes := []*model.RoomType{}
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room type: %w", err)
		}
		roomTypes = append(roomTypes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room types: %w", err)
	}
	return roomTypes, nil
}

func (r *postgresHotelRepository) CountRoomTypes(ctx context.Context, hotelID string) (int64, error) {
	if !validHotelFilter(hotelID) {
		return 0, nil
	}

	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	q := psql.Select("COUNT(*)").From("room_types r")
	if hotelID != "" {
		q = q.Where(sq.Eq{"r.hotel_id": hotelID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count room types: %w", err)
	}
	return count, nil
}

func (r *postgresHotelRepository) UpdateRoomType(ctx context.Context, rt *model.RoomType) error {
	if _, err := uuid.Parse(rt.ID); err != nil {
		return hotelserrors.ErrRoomTypeNotFound
	}

	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query, args, err := psql.Update("room_types").
		Set("room_type", rt.Name).
		Set("price", rt.Price).
		Set("total_rooms", rt.TotalRooms).
		Set("capacity", rt.Capacity).
		Where(sq.Eq{"id": rt.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	return r.execAffectingOne(ctx, query, args, hotelserrors.ErrRoomTypeNotFound, "update room type")
}

func (r *postgresHotelRepository) DeleteRoomType(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return hotelserrors.ErrRoomTypeNotFound
	}

	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query, args, err := psql.Delete("room_types").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	return r.execAffectingOne(ctx, query, args, hotelserrors.ErrRoomTypeNotFound, "delete room type")
}

// ListRoomUsage projects room types against the bookings overlapping
// f.Stay. The overlap predicate lives in the LEFT JOIN so room types with no
// overlapping bookings still appear with a zero count.
func (r *postgresHotelRepository) ListRoomUsage(ctx context.Context, f RoomFilter) ([]*model.RoomUsage, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := roomUsageQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list room usage: %w", err)
	}
	defer rows.Close()

	usage := []*model.RoomUsage{}
	for rows.Next() {
		var u model.RoomUsage
		if err := rows.Scan(
			&u.Hotel.ID, &u.Hotel.Name, &u.Hotel.City, &u.Hotel.Address, &u.Hotel.Description, &u.Hotel.CreatedAt,
			&u.RoomType.ID, &u.RoomType.HotelID, &u.RoomType.Name, &u.RoomType.Price,
			&u.RoomType.TotalRooms, &u.RoomType.Capacity, &u.RoomType.CreatedAt,
			&u.Booked,
		); err != nil {
			return nil, fmt.Errorf("failed to scan room usage: %w", err)
		}
		u.RoomType.HotelName = u.Hotel.Name
		usage = append(usage, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate room usage: %w", err)
	}
	return usage, nil
}

func roomUsageQuery(f RoomFilter) sq.SelectBuilder {
	columns := []string{"h.id", "h.name", "h.city", "h.address", "h.description", "h.created_at"}
	columns = append(columns, roomTypeColumns...)

	var q sq.SelectBuilder
	if f.Stay != nil {
		q = psql.Select(append(columns, "COUNT(b.id) AS booked_rooms")...).
			From("room_types r").
			Join("hotels h ON h.id = r.hotel_id").
			LeftJoin("bookings b ON b.room_type_id = r.id AND b.check_out > ?::date AND b.check_in < ?::date",
				f.Stay.CheckInDate(), f.Stay.CheckOutDate()).
			GroupBy("h.id", "r.id")
	} else {
		q = psql.Select(append(columns, "0 AS booked_rooms")...).
			From("room_types r").
			Join("hotels h ON h.id = r.hotel_id")
	}

	if f.HotelID != "" {
		q = q.Where(sq.Eq{"r.hotel_id": f.HotelID})
	}
	if f.City != "" {
		q = q.Where(sq.ILike{"h.city": containsPattern(f.City)})
	}
	if f.MinCapacity > 0 {
		q = q.Where(sq.GtOrEq{"r.capacity": f.MinCapacity})
	}
	return q.OrderBy("h.name", "r.price", "r.id")
}

func roomTypeSelect() sq.SelectBuilder {
	return psql.Select(append(roomTypeColumns, "h.name")...).
		From("room_types r").
		Join("hotels h ON h.id = r.hotel_id")
}

func (r *postgresHotelRepository) queryHotels(ctx context.Context, query string, args []any) ([]*model.Hotel, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotels: %w", err)
	}
	defer rows.Close()

	hotels := []*model.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hotels: %w", err)
	}
	return hotels, nil
}

func (r *postgresHotelRepository) execAffectingOne(ctx context.Context, query string, args []any, notFound error, op string) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// validHotelFilter reports whether hotelID can match a row. An empty filter
// lists every hotel; a malformed id matches nothing.
func validHotelFilter(hotelID string) bool {
	if hotelID == "" {
		return true
	}
	_, err := uuid.Parse(hotelID)
	return err == nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHotel(s scanner) (*model.Hotel, error) {
	var h model.Hotel
	if err := s.Scan(&h.ID, &h.Name, &h.City, &h.Address, &h.Description, &h.CreatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func scanRoomType(s scanner) (*model.RoomType, error) {
	var rt model.RoomType
	if err := s.Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Price, &rt.TotalRooms, &rt.Capacity, &rt.CreatedAt, &rt.HotelName); err != nil {
		return nil, err
	}
	return &rt, nil
}
