package main

import (
	"context"
	"time"

	mongoMigration "staybook/internal/migrations/mongo"
	postgresMigration "staybook/internal/migrations/postgres"
	"staybook/pkg/config"
)

const (
	JobName = "staybook-migration"
	timeout = 120 * time.Second
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetStore()
	defer cfg.Client.GracefulShutdown(cfg.Log)

	cfg.Log.Info("Starting migration job", "store", cfg.StoreDriver)

	var err error
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		err = mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log)
	default:
		err = postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log)
	}
	if err != nil {
		cfg.Client.GracefulShutdown(cfg.Log)
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	cfg.Log.Info("Migration completed successfully")
}
