package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"staybook/pkg/db/postgres"
	"staybook/pkg/logger"
)

type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{
		name: "hotels",
		stmt: `CREATE TABLE IF NOT EXISTS hotels (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	city        TEXT NOT NULL,
	address     TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	},
	{
		name: "hotels_city_idx",
		stmt: `CREATE INDEX IF NOT EXISTS hotels_city_idx ON hotels (lower(city))`,
	},
	{
		name: "room_types",
		stmt: `CREATE TABLE IF NOT EXISTS room_types (
	id          UUID PRIMARY KEY,
	hotel_id    UUID NOT NULL REFERENCES hotels (id) ON DELETE CASCADE,
	room_type   TEXT NOT NULL,
	price       BIGINT NOT NULL CHECK (price >= 0),
	total_rooms INTEGER NOT NULL CHECK (total_rooms >= 0),
	capacity    INTEGER NOT NULL CHECK (capacity >= 1),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	},
	{
		name: "room_types_hotel_idx",
		stmt: `CREATE INDEX IF NOT EXISTS room_types_hotel_idx ON room_types (hotel_id)`,
	},
	{
		name: "bookings",
		stmt: `CREATE TABLE IF NOT EXISTS bookings (
	id                UUID PRIMARY KEY,
	hotel_id          UUID NOT NULL REFERENCES hotels (id) ON DELETE CASCADE,
	room_type_id      UUID NOT NULL REFERENCES room_types (id) ON DELETE CASCADE,
	guest_name        TEXT NOT NULL,
	email             TEXT NOT NULL,
	check_in          DATE NOT NULL,
	check_out         DATE NOT NULL,
	booking_reference TEXT NOT NULL UNIQUE,
	total_price       BIGINT NOT NULL CHECK (total_price >= 0),
	nights            INTEGER NOT NULL CHECK (nights >= 1),
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (check_in < check_out)
)`,
	},
	{
		name: "bookings_overlap_idx",
		stmt: `CREATE INDEX IF NOT EXISTS bookings_overlap_idx ON bookings (room_type_id, check_in, check_out)`,
	},
}

// RunMigration creates the schema in one transaction. Every statement is
// idempotent, so reruns are safe.
func RunMigration(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	log.Info("Running PostgreSQL migrations", "statements", len(migrations))

	err := postgres.ExecuteTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		for _, m := range migrations {
			if _, err := tx.ExecContext(ctx, m.stmt); err != nil {
				return fmt.Errorf("failed to apply %s: %w", m.name, err)
			}
			log.Info("Applied migration", "name", m.name)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("All PostgreSQL migrations applied successfully")
	return nil
}
