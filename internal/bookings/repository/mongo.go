package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/availability"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
)

const (
	BookingsCollection  = "Bookings"
	HotelsCollection    = "Hotels"
	RoomTypesCollection = "Room_types"
)

type mongoBookingRepository struct {
	cfg       *config.Config
	bookings  *mongo.Collection
	hotels    *mongo.Collection
	roomTypes *mongo.Collection
	locker    *roomTypeLocker
	txManager mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:       cfg,
		bookings:  db.Collection(BookingsCollection),
		hotels:    db.Collection(HotelsCollection),
		roomTypes: db.Collection(RoomTypesCollection),
		locker: &roomTypeLocker{
			collection: db.Collection(LocksCollection),
			ttl:        cfg.BookingLockTTL,
			now:        time.Now,
		},
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) GetRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var rt model.RoomType
	if err := r.roomTypes.FindOne(ctx, bson.M{"_id": id}).Decode(&rt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availability.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room type: %w", err)
	}

	var hotel model.Hotel
	err := r.hotels.FindOne(ctx, bson.M{"_id": rt.HotelID}, options.FindOne().SetProjection(bson.M{"name": 1})).Decode(&hotel)
	switch {
	case err == nil:
		rt.HotelName = hotel.Name
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("failed to get hotel of room type: %w", err)
	}
	return &rt, nil
}

func (r *mongoBookingRepository) CountOverlappingBookings(ctx context.Context, roomTypeID string, stay availability.Stay) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.bookings.CountDocuments(ctx, bson.M{
		"room_type_id": roomTypeID,
		"check_out":    bson.M{"$gt": stay.CheckIn},
		"check_in":     bson.M{"$lt": stay.CheckOut},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) InsertBooking(ctx context.Context, b *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.bookings.InsertOne(ctx, b); err != nil {
		if mongotx.IsDuplicateKeyError(err) {
			return availability.ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// WithRoomTypeLock takes the room type's advisory lock and runs fn inside a
// session transaction. A second caller gets bookingserrors.ErrLocked rather
// than waiting.
func (r *mongoBookingRepository) WithRoomTypeLock(ctx context.Context, roomTypeID string, fn TxFunc) error {
	if _, err := r.GetRoomType(ctx, roomTypeID); err != nil {
		return err
	}

	release, err := r.locker.acquire(ctx, roomTypeID)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
		defer cancel()
		release(releaseCtx)
	}()

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx, r)
	})
}

func (r *mongoBookingRepository) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	return r.findOne(ctx, bson.M{"booking_reference": reference})
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	bookings, err := r.aggregate(ctx, filter, 0, 1)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return bookings[0], nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.aggregate(ctx, bson.M{}, offset, int64(limit))
}

// joinedBooking carries the names the $lookup stages attach. Booking keeps
// them out of its own bson shape.
type joinedBooking struct {
	model.Booking `bson:",inline"`
	Hotel         []struct {
		Name string `bson:"name"`
	} `bson:"hotel"`
	Room []struct {
		Name string `bson:"room_type"`
	} `bson:"room"`
}

func (r *mongoBookingRepository) aggregate(ctx context.Context, filter bson.M, skip, limit int64) ([]*model.Booking, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         HotelsCollection,
			"localField":   "hotel_id",
			"foreignField": "_id",
			"as":           "hotel",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         RoomTypesCollection,
			"localField":   "room_type_id",
			"foreignField": "_id",
			"as":           "room",
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []joinedBooking
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(rows))
	for i := range rows {
		b := rows[i].Booking
		if len(rows[i].Hotel) > 0 {
			b.HotelName = rows[i].Hotel[0].Name
		}
		if len(rows[i].Room) > 0 {
			b.RoomType = rows[i].Room[0].Name
		}
		b.CheckIn = b.CheckIn.UTC()
		b.CheckOut = b.CheckOut.UTC()
		bookings = append(bookings, &b)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.bookings.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.bookings.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}
