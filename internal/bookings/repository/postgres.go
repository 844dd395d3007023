package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"staybook/internal/availability"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/pkg/config"
	"staybook/pkg/db/postgres"
	"staybook/pkg/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var bookingColumns = []string{
	"b.id", "b.hotel_id", "b.room_type_id", "b.guest_name", "b.email",
	"b.check_in", "b.check_out", "b.booking_reference", "b.total_price", "b.nights", "b.created_at",
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type postgresBookingRepository struct {
	cfg *config.Config
	db  *sql.DB
	q   querier
}

func NewPostgresBookingRepository(cfg *config.Config, db *sql.DB) BookingRepository {
	return &postgresBookingRepository{cfg: cfg, db: db, q: db}
}

func (r *postgresBookingRepository) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *postgresBookingRepository) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.WriteTimeout)
}

func (r *postgresBookingRepository) GetRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, availability.ErrNotFound
	}

	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := psql.Select("r.id", "r.hotel_id", "r.room_type", "r.price", "r.total_rooms", "r.capacity", "r.created_at", "h.name").
		From("room_types r").
		Join("hotels h ON h.id = r.hotel_id").
		Where(sq.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rt model.RoomType
	err = r.q.QueryRowContext(ctx, query, args...).
		Scan(&rt.ID, &rt.HotelID, &rt.Name, &rt.Price, &rt.TotalRooms, &rt.Capacity, &rt.CreatedAt, &rt.HotelName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, availability.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room type: %w", err)
	}
	return &rt, nil
}

func (r *postgresBookingRepository) CountOverlappingBookings(ctx context.Context, roomTypeID string, stay availability.Stay) (int64, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := psql.Select("COUNT(*)").
		From("bookings").
		Where(sq.Eq{"room_type_id": roomTypeID}).
		Where("check_out > ?::date", stay.CheckInDate()).
		Where("check_in < ?::date", stay.CheckOutDate()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func (r *postgresBookingRepository) InsertBooking(ctx context.Context, b *model.Booking) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query, args, err := psql.Insert("bookings").
		Columns("id", "hotel_id", "room_type_id", "guest_name", "email",
			"check_in", "check_out", "booking_reference", "total_price", "nights", "created_at").
		Values(b.ID, b.HotelID, b.RoomTypeID, b.GuestName, b.Email,
			b.CheckIn, b.CheckOut, b.Reference, b.TotalPrice, b.Nights, b.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return availability.ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// WithRoomTypeLock holds a row lock on the room type for the whole of fn, so
// concurrent admissions for the same room type run one after another.
func (r *postgresBookingRepository) WithRoomTypeLock(ctx context.Context, roomTypeID string, fn TxFunc) error {
	if _, err := uuid.Parse(roomTypeID); err != nil {
		return availability.ErrNotFound
	}

	return postgres.ExecuteTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		var locked string
		err := tx.QueryRowContext(ctx, "SELECT id FROM room_types WHERE id = $1 FOR UPDATE", roomTypeID).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return availability.ErrNotFound
			}
			return fmt.Errorf("failed to lock room type: %w", err)
		}

		return fn(ctx, &postgresBookingRepository{cfg: r.cfg, db: r.db, q: tx})
	})
}

func (r *postgresBookingRepository) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return r.findOne(ctx, sq.Eq{"b.booking_reference": reference})
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, bookingserrors.ErrNotFound
	}
	return r.findOne(ctx, sq.Eq{"b.id": id})
}

func (r *postgresBookingRepository) findOne(ctx context.Context, pred sq.Eq) (*model.Booking, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := joinedBookings().Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return b, nil
}

func (r *postgresBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query, args, err := joinedBookings().
		OrderBy("b.created_at DESC", "b.id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

func (r *postgresBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	var count int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *postgresBookingRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return bookingserrors.ErrNotFound
	}

	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, "DELETE FROM bookings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func joinedBookings() sq.SelectBuilder {
	return psql.Select(append(bookingColumns, "h.name", "r.room_type")...).
		From("bookings b").
		Join("hotels h ON h.id = b.hotel_id").
		Join("room_types r ON r.id = b.room_type_id")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(s scanner) (*model.Booking, error) {
	var b model.Booking
	err := s.Scan(&b.ID, &b.HotelID, &b.RoomTypeID, &b.GuestName, &b.Email,
		&b.CheckIn, &b.CheckOut, &b.Reference, &b.TotalPrice, &b.Nights, &b.CreatedAt,
		&b.HotelName, &b.RoomType)
	if err != nil {
		return nil, err
	}
	b.CheckIn = b.CheckIn.UTC()
	b.CheckOut = b.CheckOut.UTC()
	return &b, nil
}
