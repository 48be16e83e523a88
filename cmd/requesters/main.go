package main

import (
	"roomly/internal/requesters/handler"
	"roomly/internal/requesters/repository"
	"roomly/internal/requesters/service"
	"roomly/internal/requesters/validator"
	"roomly/pkg/app"
	"roomly/pkg/client"
	"roomly/pkg/config"
)

const ServiceName = "requesters"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Requesters service")

	requesterService := initServices(cfg)
	serverApp := app.NewApplication(cfg, handler.NewRequesterHandler(requesterService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.RequesterService {
	requesterValidator := validator.NewRequesterValidator(cfg.Log)
	requesterRepo := repository.NewMongoRequesterRepository(cfg)
	reservationClient := client.NewReservationClient(cfg.ReservationsBaseURL)

	requesterService := service.NewRequesterService(
		requesterRepo,
		requesterValidator,
		reservationClient,
		cfg,
	)

	cfg.Log.Info("Requester service initialized", "database", cfg.MongoDatabaseName)
	return requesterService
}
