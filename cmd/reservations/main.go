package main

import (
	"roomly/internal/reservations/handler"
	"roomly/internal/reservations/repository"
	"roomly/internal/reservations/service"
	"roomly/internal/reservations/validator"
	"roomly/pkg/app"
	"roomly/pkg/client"
	"roomly/pkg/clock"
	"roomly/pkg/config"
	"roomly/pkg/kafka"
	kafka_config "roomly/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	producer := initProducer(cfg)
	if producer != nil {
		defer producer.Close()
	}

	reservationService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg, handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Reservation events disabled")
		return nil
	}

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Reservation events enabled", "topic", cfg.EventsTopic)
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.ReservationService {
	reservationRepo := repository.NewMongoReservationRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)

	roomClient := client.NewRoomClient(cfg.RoomsBaseURL)
	requesterClient := client.NewRequesterClient(cfg.RequestersBaseURL)

	reservationValidator := validator.NewReservationValidator(
		roomClient,
		requesterClient,
		reservationRepo,
		clock.System(),
		cfg.Log,
	)

	var events service.EventPublisher
	if producer != nil {
		events = producer
	}

	reservationService := service.NewReservationService(
		reservationRepo,
		lockRepo,
		reservationValidator,
		events,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}
