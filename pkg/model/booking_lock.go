package model

import "time"

// RoomTypeLock is an advisory lock document serializing booking admission
// for one room type on stores without row locks. Expired locks are reaped by
// a TTL index on ExpiresAt.
type RoomTypeLock struct {
	ID         string    `bson:"_id" json:"id"`
	RoomTypeID string    `bson:"room_type_id" json:"room_type_id"`
	Holder     string    `bson:"holder" json:"holder"`
	ExpiresAt  time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
