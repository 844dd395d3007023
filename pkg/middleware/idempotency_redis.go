package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"staybook/pkg/logger"
)

const redisIdempotencyPrefix = "staybook:idempotency:"

// RedisIdempotencyStore shares replay state between API replicas. Redis
// failures degrade to "not cached" rather than failing the request.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl, log: log}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	data, err := s.rdb.Get(ctx, redisIdempotencyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("Failed to read idempotency key", "error", err)
		}
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("Discarding corrupt idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("Failed to encode idempotency entry", "error", err)
		return
	}

	// SetNX keeps the first stored response if two replicas race on one key.
	if err := s.rdb.SetNX(ctx, redisIdempotencyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Failed to store idempotency key", "error", err)
	}
}

// Stop is a no-op; the Redis client is owned and closed by the caller.
func (s *RedisIdempotencyStore) Stop() {}
