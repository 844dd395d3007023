package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/migrations/mongo/validators"
	"staybook/pkg/logger"
)

const (
	HotelsCollection    = "Hotels"
	RoomTypesCollection = "Room_types"
	BookingsCollection  = "Bookings"
	LocksCollection     = "Booking_locks"
)

var (
	HotelsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "name", Value: 1}}},
	}

	RoomTypesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "hotel_id", Value: 1}, {Key: "price", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "booking_reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "room_type_id", Value: 1},
			{Key: "check_in", Value: 1},
			{Key: "check_out", Value: 1},
		}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	// Expired locks are reaped by the TTL monitor.
	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		HotelsCollection: {
			Indexes:   HotelsIndexes,
			Validator: validators.HotelValidator,
		},
		RoomTypesCollection: {
			Indexes:   RoomTypesIndexes,
			Validator: validators.RoomTypeValidator,
		},
		BookingsCollection: {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		LocksCollection: {
			Indexes: LocksIndexes,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All Mongo migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
