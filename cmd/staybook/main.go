package main

import (
	"context"

	"staybook/internal/availability"
	bookingshandler "staybook/internal/bookings/handler"
	bookingsrepo "staybook/internal/bookings/repository"
	bookingsservice "staybook/internal/bookings/service"
	bookingsvalidator "staybook/internal/bookings/validator"
	"staybook/internal/events"
	hotelshandler "staybook/internal/hotels/handler"
	hotelsrepo "staybook/internal/hotels/repository"
	hotelsservice "staybook/internal/hotels/service"
	hotelsvalidator "staybook/internal/hotels/validator"
	"staybook/pkg/app"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
)

const ServiceName = "staybook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()
	cfg.SetRedis()

	cfg.Log.Info("Starting Staybook service", "store", cfg.StoreDriver)

	serverApp := app.NewApplication(cfg)
	publisher := initPublisher(cfg, serverApp)
	hotelRepo, bookingRepo := initRepositories(cfg)

	engine := availability.NewEngine(bookingRepo, availability.WithLocation(cfg.Location))

	hotelService := hotelsservice.NewHotelService(hotelRepo, hotelsvalidator.NewHotelValidator(), cfg)
	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		engine,
		bookingsvalidator.NewBookingValidator(),
		publisher,
		cfg,
	)

	serverApp.SetApp(
		hotelshandler.NewHotelHandler(hotelService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func initRepositories(cfg *config.Config) (hotelsrepo.HotelRepository, bookingsrepo.BookingRepository) {
	if cfg.StoreDriver == config.StoreDriverMongo {
		cfg.Log.Info("Repositories initialized", "store", "mongo", "database", cfg.MongoDatabaseName)
		return hotelsrepo.NewMongoHotelRepository(cfg), bookingsrepo.NewMongoBookingRepository(cfg)
	}

	cfg.Log.Info("Repositories initialized", "store", "postgres")
	return hotelsrepo.NewPostgresHotelRepository(cfg, cfg.Client.Postgres),
		bookingsrepo.NewPostgresBookingRepository(cfg, cfg.Client.Postgres)
}

// initPublisher returns a Kafka-backed publisher when brokers are configured
// and a no-op one otherwise.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher()
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingTopic, kafkaCfg.BookingDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	serverApp.OnShutdown(func(context.Context) {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return events.NewKafkaPublisher(producer, ServiceName, cfg.Log)
}
