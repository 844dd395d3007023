package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"staybook/pkg/client"
	"staybook/pkg/logger"
)

type Config struct {
	StoreDriver string

	PostgresDSN      string
	PostgresMaxConns int
	PostgresMaxIdle  int

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Port string

	Timezone       string
	Location       *time.Location
	BookingLockTTL time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	CORSAllowedOrigin string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		StoreDriver: getEnvStr(EnvStoreDriver, DefaultStoreDriver),

		PostgresDSN:      getEnvStr(EnvPostgresDSN, DefaultPostgresDSN),
		PostgresMaxConns: getEnvNum(EnvPostgresMaxConns, DefaultPostgresMaxConns),
		PostgresMaxIdle:  getEnvNum(EnvPostgresMaxIdle, DefaultPostgresMaxIdle),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		Port: getEnvStr(EnvPort, DefaultPort),

		Timezone:       getEnvStr(EnvTimezone, DefaultTimezone),
		BookingLockTTL: getEnvDuration(EnvBookingLockTTL, DefaultBookingLockTTL),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		CORSAllowedOrigin: getEnvStr(EnvCORSAllowedOrigin, DefaultCORSAllowedOrigin),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, logger.INFO),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// SetStore connects the configured primary store.
func (cfg *Config) SetStore() {
	switch cfg.StoreDriver {
	case StoreDriverMongo:
		cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
	default:
		cfg.Client.SetPostgres(cfg.Log, cfg.PostgresDSN, cfg.PostgresMaxConns, cfg.PostgresMaxIdle)
	}
}

// SetRedis connects Redis when REDIS_ADDR is set. Without it the service
// falls back to in-process stores.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.PostgresDSN == "" {
			errors = append(errors, "PostgresDSN cannot be empty")
		} else if !regexp.MustCompile(`^postgres(ql)?://`).MatchString(cfg.PostgresDSN) {
			errors = append(errors, fmt.Sprintf("PostgresDSN must start with 'postgres://' or 'postgresql://', got: %s", redactDSN(cfg.PostgresDSN)))
		}
		if cfg.PostgresMaxConns <= 0 {
			errors = append(errors, fmt.Sprintf("PostgresMaxConns must be positive, got: %d", cfg.PostgresMaxConns))
		}
		if cfg.PostgresMaxIdle < 0 || cfg.PostgresMaxIdle > cfg.PostgresMaxConns {
			errors = append(errors, fmt.Sprintf("PostgresMaxIdle must be between 0 and PostgresMaxConns (%d), got: %d", cfg.PostgresMaxConns, cfg.PostgresMaxIdle))
		}
	case StoreDriverMongo:
		if cfg.MongoURI == "" {
			errors = append(errors, "MongoURI cannot be empty")
		} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactDSN(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	default:
		errors = append(errors, fmt.Sprintf("StoreDriver must be one of %q or %q, got: %q", StoreDriverPostgres, StoreDriverMongo, cfg.StoreDriver))
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("Timezone must be an IANA zone name, got: %s", cfg.Timezone))
	} else {
		cfg.Location = loc
	}

	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}
	if cfg.BookingLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("BookingLockTTL must be positive, got: %s", cfg.BookingLockTTL))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"store_driver", cfg.StoreDriver,
		"postgres_dsn", redactDSN(cfg.PostgresDSN),
		"postgres_max_conns", cfg.PostgresMaxConns,
		"postgres_max_idle", cfg.PostgresMaxIdle,
		"mongo_uri", redactDSN(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"port", cfg.Port,
		"timezone", cfg.Timezone,
		"booking_lock_ttl", cfg.BookingLockTTL,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"cors_allowed_origin", cfg.CORSAllowedOrigin,
	)
}

var credentialRegex = regexp.MustCompile(`^([a-z+]+://)[^:/@]+:[^@]+@`)

// redactDSN hides the user and password of a connection URI.
func redactDSN(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
