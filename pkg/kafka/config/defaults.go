package kafka_config

import "time"

const (
	// Empty means event publishing is disabled.
	DefaultKafkaBrokers = ""

	DefaultBookingTopic    = "staybook.bookings"
	DefaultBookingDLQTopic = "staybook.bookings.dlq"
	DefaultConsumerGroupID = "staybook-notifier"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	DefaultConsumerStartOffset       = -1 // Newest messages
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024 // 10MB
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3
	DefaultConsumerRetryBackoff      = 200 * time.Millisecond
)
