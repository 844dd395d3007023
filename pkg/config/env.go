package config

const (
	EnvStoreDriver = "STORE_DRIVER"

	EnvPostgresDSN      = "POSTGRES_DSN"
	EnvPostgresMaxConns = "POSTGRES_MAX_CONNS"
	EnvPostgresMaxIdle  = "POSTGRES_MAX_IDLE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvTimezone       = "TIMEZONE"
	EnvBookingLockTTL = "BOOKING_LOCK_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvCORSAllowedOrigin = "CORS_ALLOWED_ORIGIN"
)
