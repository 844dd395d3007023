package client

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/pkg/db/postgres"
	"staybook/pkg/logger"
)

const connectTimeout = 10 * time.Second

// Client holds the process-wide store connections. Each field is nil until
// the matching Set method succeeds.
type Client struct {
	Postgres *sql.DB
	Mongo    *mongo.Client
	Redis    *redis.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetPostgres(log *logger.Logger, dsn string, maxConns, maxIdle int) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, postgres.Options{DSN: dsn, MaxConns: maxConns, MaxIdle: maxIdle})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	log.Info("Successfully connected to PostgreSQL", "max_conns", maxConns, "max_idle", maxIdle)
	c.Postgres = db
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetRedis(log *logger.Logger, addr, password string, db int) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis", "error", err, "addr", addr)
	}

	log.Info("Successfully connected to Redis", "addr", addr, "db", db)
	c.Redis = rdb
}

// Ping checks whichever primary store is connected.
func (c *Client) Ping(ctx context.Context) error {
	if c.Postgres != nil {
		if err := c.Postgres.PingContext(ctx); err != nil {
			return err
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Ping(ctx, nil); err != nil {
			return err
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if c.Postgres != nil {
		if err := c.Postgres.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", "error", err)
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Error("Failed to close Redis connection", "error", err)
		}
	}
	log.Info("Store connections closed")
}
