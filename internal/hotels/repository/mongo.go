package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	hotelserrors "staybook/internal/hotels/errors"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
)

const (
	HotelsCollection    = "Hotels"
	RoomTypesCollection = "Room_types"
	BookingsCollection  = "Bookings"
)

type mongoHotelRepository struct {
	cfg       *config.Config
	hotels    *mongo.Collection
	roomTypes *mongo.Collection
	bookings  *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoHotelRepository(cfg *config.Config) HotelRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHotelRepository{
		cfg:       cfg,
		hotels:    db.Collection(HotelsCollection),
		roomTypes: db.Collection(RoomTypesCollection),
		bookings:  db.Collection(BookingsCollection),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoHotelRepository) CreateHotel(ctx context.Context, h *model.Hotel) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	h.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.hotels.InsertOne(ctx, h); err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (r *mongoHotelRepository) FindHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var h model.Hotel
	if err := r.hotels.FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelserrors.ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to find hotel: %w", err)
	}
	return &h, nil
}

func (r *mongoHotelRepository) FindHotels(ctx context.Context, limit int, offset int64) ([]*model.Hotel, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	return r.findHotels(ctx, bson.M{}, opts)
}

func (r *mongoHotelRepository) CountHotels(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.hotels.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count hotels: %w", err)
	}
	return count, nil
}

func (r *mongoHotelRepository) SearchHotelsByCity(ctx context.Context, city string) ([]*model.Hotel, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	return r.findHotels(ctx, cityFilter(city), opts)
}

func (r *mongoHotelRepository) UpdateHotel(ctx context.Context, h *model.Hotel) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        h.Name,
		"city":        h.City,
		"address":     h.Address,
		"description": h.Description,
	}}
	result, err := r.hotels.UpdateOne(ctx, bson.M{"_id": h.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update hotel: %w", err)
	}
	if result.MatchedCount == 0 {
		return hotelserrors.ErrHotelNotFound
	}
	return nil
}

// DeleteHotel removes the hotel together with its room types and bookings.
func (r *mongoHotelRepository) DeleteHotel(ctx context.Context, id string) error {
	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.hotels.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to delete hotel: %w", err)
		}
		if result.DeletedCount == 0 {
			return hotelserrors.ErrHotelNotFound
		}
		if _, err := r.roomTypes.DeleteMany(sessCtx, bson.M{"hotel_id": id}); err != nil {
			return fmt.Errorf("failed to delete room types of hotel: %w", err)
		}
		if _, err := r.bookings.DeleteMany(sessCtx, bson.M{"hotel_id": id}); err != nil {
			return fmt.Errorf("failed to delete bookings of hotel: %w", err)
		}
		return nil
	})
}

func (r *mongoHotelRepository) CreateRoomType(ctx context.Context, rt *model.RoomType) error {
	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := r.hotels.FindOne(sessCtx, bson.M{"_id": rt.HotelID}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return hotelserrors.ErrHotelNotFound
			}
			return fmt.Errorf("failed to check hotel: %w", err)
		}

		rt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		if _, err := r.roomTypes.InsertOne(sessCtx, rt); err != nil {
			return fmt.Errorf("failed to create room type: %w", err)
		}
		return nil
	})
}

func (r *mongoHotelRepository) FindRoomTypeByID(ctx context.Context, id string) (*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var rt model.RoomType
	if err := r.roomTypes.FindOne(ctx, bson.M{"_id": id}).Decode(&rt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelserrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("failed to find room type: %w", err)
	}

	names, err := r.hotelNames(ctx, []string{rt.HotelID})
	if err != nil {
		return nil, err
	}
	rt.HotelName = names[rt.HotelID]
	return &rt, nil
}

func (r *mongoHotelRepository) FindRoomTypes(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.RoomType, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "hotel_id", Value: 1}, {Key: "room_type", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.roomTypes.Find(ctx, roomTypeFilter(hotelID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find room types: %w", err)
	}
	defer cursor.Close(ctx)

	roomTypes := []*model.RoomType{}
	if err := cursor.All(ctx, &roomTypes); err != nil {
		return nil, fmt.Errorf("failed to decode room types: %w", err)
	}

	hotelIDs := make([]string, 0, len(roomTypes))
	for _, rt := range roomTypes {
		hotelIDs = append(hotelIDs, rt.HotelID)
	}
	names, err := r.hotelNames(ctx, hotelIDs)
	if err != nil {
		return nil, err
	}
	for _, rt := range roomTypes {
		rt.HotelName = names[rt.HotelID]
	}
	return roomTypes, nil
}

func (r *mongoHotelRepository) CountRoomTypes(ctx context.Context, hotelID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.roomTypes.CountDocuments(ctx, roomTypeFilter(hotelID))
	if err != nil {
		return 0, fmt.Errorf("failed to count room types: %w", err)
	}
	return count, nil
}

func (r *mongoHotelRepository) UpdateRoomType(ctx context.Context, rt *model.RoomType) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"room_type":   rt.Name,
		"price":       rt.Price,
		"total_rooms": rt.TotalRooms,
		"capacity":    rt.Capacity,
	}}
	result, err := r.roomTypes.UpdateOne(ctx, bson.M{"_id": rt.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update room type: %w", err)
	}
	if result.MatchedCount == 0 {
		return hotelserrors.ErrRoomTypeNotFound
	}
	return nil
}

func (r *mongoHotelRepository) DeleteRoomType(ctx context.Context, id string) error {
	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.roomTypes.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("failed to delete room type: %w", err)
		}
		if result.DeletedCount == 0 {
			return hotelserrors.ErrRoomTypeNotFound
		}
		if _, err := r.bookings.DeleteMany(sessCtx, bson.M{"room_type_id": id}); err != nil {
			return fmt.Errorf("failed to delete bookings of room type: %w", err)
		}
		return nil
	})
}

// ListRoomUsage resolves matching hotels, then their room types, then one
// aggregation counting overlapping bookings per room type.
func (r *mongoHotelRepository) ListRoomUsage(ctx context.Context, f RoomFilter) ([]*model.RoomUsage, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	hotelFilter := cityFilter(f.City)
	if f.HotelID != "" {
		hotelFilter["_id"] = f.HotelID
	}
	hotels, err := r.findHotels(ctx, hotelFilter, options.Find())
	if err != nil {
		return nil, err
	}
	if len(hotels) == 0 {
		return []*model.RoomUsage{}, nil
	}

	hotelsByID := make(map[string]*model.Hotel, len(hotels))
	hotelIDs := make([]string, 0, len(hotels))
	for _, h := range hotels {
		hotelsByID[h.ID] = h
		hotelIDs = append(hotelIDs, h.ID)
	}

	rtFilter := bson.M{"hotel_id": bson.M{"$in": hotelIDs}}
	if f.MinCapacity > 0 {
		rtFilter["capacity"] = bson.M{"$gte": f.MinCapacity}
	}
	cursor, err := r.roomTypes.Find(ctx, rtFilter, options.Find().SetSort(bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find room types: %w", err)
	}
	defer cursor.Close(ctx)

	var roomTypes []*model.RoomType
	if err := cursor.All(ctx, &roomTypes); err != nil {
		return nil, fmt.Errorf("failed to decode room types: %w", err)
	}

	booked := map[string]int64{}
	if f.Stay != nil && len(roomTypes) > 0 {
		ids := make([]string, 0, len(roomTypes))
		for _, rt := range roomTypes {
			ids = append(ids, rt.ID)
		}
		if booked, err = r.countOverlapping(ctx, ids, f.Stay.CheckIn, f.Stay.CheckOut); err != nil {
			return nil, err
		}
	}

	usage := make([]*model.RoomUsage, 0, len(roomTypes))
	for _, rt := range roomTypes {
		h := hotelsByID[rt.HotelID]
		rt.HotelName = h.Name
		usage = append(usage, &model.RoomUsage{Hotel: *h, RoomType: *rt, Booked: booked[rt.ID]})
	}
	sortUsage(usage)
	return usage, nil
}

func (r *mongoHotelRepository) countOverlapping(ctx context.Context, roomTypeIDs []string, checkIn, checkOut time.Time) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"room_type_id": bson.M{"$in": roomTypeIDs},
			"check_out":    bson.M{"$gt": checkIn},
			"check_in":     bson.M{"$lt": checkOut},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$room_type_id",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		RoomTypeID string `bson:"_id"`
		Count      int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode booking counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.RoomTypeID] = row.Count
	}
	return counts, nil
}

func (r *mongoHotelRepository) hotelNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := map[string]string{}
	if len(ids) == 0 {
		return names, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1})
	hotels, err := r.findHotels(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	for _, h := range hotels {
		names[h.ID] = h.Name
	}
	return names, nil
}

func (r *mongoHotelRepository) findHotels(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Hotel, error) {
	cursor, err := r.hotels.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find hotels: %w", err)
	}
	defer cursor.Close(ctx)

	hotels := []*model.Hotel{}
	if err := cursor.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("failed to decode hotels: %w", err)
	}
	return hotels, nil
}

// cityFilter matches city case-insensitively anywhere in the field.
func cityFilter(city string) bson.M {
	if city == "" {
		return bson.M{}
	}
	return bson.M{"city": primitive.Regex{Pattern: regexp.QuoteMeta(city), Options: "i"}}
}

func roomTypeFilter(hotelID string) bson.M {
	if hotelID == "" {
		return bson.M{}
	}
	return bson.M{"hotel_id": hotelID}
}
