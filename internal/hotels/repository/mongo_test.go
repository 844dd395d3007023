package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"staybook/internal/availability"
	"staybook/pkg/client"
	"staybook/pkg/config"
)

func newMongoRepo(mt *mtest.T) HotelRepository {
	cfg := &config.Config{
		MongoDatabaseName: mt.DB.Name(),
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		Client:            &client.Client{Mongo: mt.Client},
	}
	return NewMongoHotelRepository(cfg)
}

func roomTypeDoc(id, name string, price int64, total int32) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "hotel_id", Value: hotelID},
		{Key: "room_type", Value: name},
		{Key: "price", Value: price},
		{Key: "total_rooms", Value: total},
		{Key: "capacity", Value: int32(2)},
	}
}

func TestMongoListRoomUsage(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	hotelDoc := bson.D{
		{Key: "_id", Value: hotelID},
		{Key: "name", Value: "Harbor Inn"},
		{Key: "city", Value: "Lisbon"},
	}

	mt.Run("counts overlapping bookings per room type", func(mt *mtest.T) {
		db := mt.DB.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, db+"."+HotelsCollection, mtest.FirstBatch, hotelDoc),
			mtest.CreateCursorResponse(0, db+"."+RoomTypesCollection, mtest.FirstBatch,
				roomTypeDoc("rt-twin", "Twin", 90, 2),
				roomTypeDoc("rt-suite", "Suite", 200, 5),
			),
			mtest.CreateCursorResponse(0, db+"."+BookingsCollection, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "rt-twin"}, {Key: "count", Value: int32(2)}},
			),
		)

		stay, err := availability.ParseStay("2030-01-10", "2030-01-12")
		require.NoError(mt, err)

		usage, err := newMongoRepo(mt).ListRoomUsage(context.Background(), RoomFilter{City: "lis", Stay: &stay})
		require.NoError(mt, err)
		require.Len(mt, usage, 2)

		assert.Equal(mt, "rt-twin", usage[0].RoomType.ID)
		assert.Equal(mt, int64(2), usage[0].Booked)
		assert.Equal(mt, "Harbor Inn", usage[0].RoomType.HotelName)
		assert.Equal(mt, "rt-suite", usage[1].RoomType.ID)
		assert.Zero(mt, usage[1].Booked)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 3)

		pattern, opts := events[0].Command.Lookup("filter", "city").Regex()
		assert.Equal(mt, "lis", pattern)
		assert.Equal(mt, "i", opts)

		require.Equal(mt, "aggregate", events[2].CommandName)
		match := events[2].Command.Lookup("pipeline", "0", "$match").Document()
		assert.True(mt, match.Lookup("check_out", "$gt").Time().Equal(stay.CheckIn))
		assert.True(mt, match.Lookup("check_in", "$lt").Time().Equal(stay.CheckOut))
		group := events[2].Command.Lookup("pipeline", "1", "$group").Document()
		assert.Equal(mt, "$room_type_id", group.Lookup("_id").StringValue())
	})

	mt.Run("listing mode skips bookings", func(mt *mtest.T) {
		db := mt.DB.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, db+"."+HotelsCollection, mtest.FirstBatch, hotelDoc),
			mtest.CreateCursorResponse(0, db+"."+RoomTypesCollection, mtest.FirstBatch,
				roomTypeDoc("rt-twin", "Twin", 90, 2),
			),
		)

		usage, err := newMongoRepo(mt).ListRoomUsage(context.Background(), RoomFilter{HotelID: hotelID})
		require.NoError(mt, err)
		require.Len(mt, usage, 1)
		assert.Zero(mt, usage[0].Booked)
		assert.Len(mt, mt.GetAllStartedEvents(), 2)
	})

	mt.Run("no matching hotel", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+HotelsCollection, mtest.FirstBatch))

		usage, err := newMongoRepo(mt).ListRoomUsage(context.Background(), RoomFilter{City: "nowhere"})
		require.NoError(mt, err)
		assert.Empty(mt, usage)
	})
}
