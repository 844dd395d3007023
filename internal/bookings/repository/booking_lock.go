package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "staybook/internal/bookings/errors"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
)

const LocksCollection = "Booking_locks"

// roomTypeLocker hands out advisory lock documents, one per room type.
// A crashed holder's lock stops blocking once ExpiresAt has passed.
type roomTypeLocker struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

func lockID(roomTypeID string) string {
	return "room_type:" + roomTypeID
}

// acquire returns a release func, or bookingserrors.ErrLocked while another
// live holder owns the lock.
func (l *roomTypeLocker) acquire(ctx context.Context, roomTypeID string) (func(context.Context), error) {
	now := l.now().UTC()
	lock := &model.RoomTypeLock{
		ID:         lockID(roomTypeID),
		RoomTypeID: roomTypeID,
		Holder:     uuid.NewString(),
		ExpiresAt:  now.Add(l.ttl),
		CreatedAt:  now,
	}

	err := l.insert(ctx, lock)
	if mongotx.IsDuplicateKeyError(err) {
		// The TTL monitor runs about once a minute, so reap a stale lock here.
		res, delErr := l.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}})
		if delErr != nil {
			return nil, fmt.Errorf("failed to reap expired lock: %w", delErr)
		}
		if res.DeletedCount == 0 {
			return nil, bookingserrors.ErrLocked
		}
		err = l.insert(ctx, lock)
		if mongotx.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrLocked
		}
	}
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) {
		_, _ = l.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "holder": lock.Holder})
	}, nil
}

func (l *roomTypeLocker) insert(ctx context.Context, lock *model.RoomTypeLock) error {
	_, err := l.collection.InsertOne(ctx, lock)
	if err != nil && !mongotx.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create lock: %w", err)
	}
	return err
}
