package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_DisabledByDefault(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Enabled() {
		t.Errorf("kafka should be disabled without brokers")
	}
}

func TestLoad_Brokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvKafkaBookingTopic, "bookings")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[0] != "kafka-1:9092" || cfg.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Brokers)
	}
	if cfg.BookingTopic != "bookings" {
		t.Errorf("unexpected topic %q", cfg.BookingTopic)
	}
}

func TestLoad_InvalidWhenEnabled(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "kafka:9092")
	t.Setenv(EnvKafkaProducerCompression, "brotli")
	t.Setenv(EnvKafkaProducerRequireAcks, "2")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"ProducerCompression", "ProducerRequireAcks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}
