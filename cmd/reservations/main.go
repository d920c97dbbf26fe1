package main

import (
	"innkeep/internal/reservations/events"
	reservationhandler "innkeep/internal/reservations/handler"
	"innkeep/internal/reservations/locker"
	reservationrepo "innkeep/internal/reservations/repository"
	reservationservice "innkeep/internal/reservations/service"
	reservationvalidator "innkeep/internal/reservations/validator"
	unithandler "innkeep/internal/units/handler"
	unitrepo "innkeep/internal/units/repository"
	unitservice "innkeep/internal/units/service"
	unitvalidator "innkeep/internal/units/validator"
	"innkeep/pkg/app"
	"innkeep/pkg/clock"
	"innkeep/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Reservations service")

	units := unitservice.NewUnitService(
		unitrepo.NewMongoUnitRepository(cfg),
		unitvalidator.NewUnitValidator(cfg.Log),
		cfg,
	)

	unitLocker, err := locker.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize unit locker", "error", err)
	}

	publisher, err := events.New(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "backend", cfg.EventsBackend, "error", err)
	}

	reservations := reservationservice.NewReservationService(
		reservationrepo.NewMongoReservationRepository(cfg),
		units,
		unitLocker,
		publisher,
		reservationvalidator.NewReservationValidator(cfg.Log),
		clock.System(),
		cfg,
	)
	cfg.Log.Info("Reservation service initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.LockBackend,
		"events_backend", cfg.EventsBackend,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.SetApp(
		unithandler.NewUnitHandler(units, cfg.Log),
		reservationhandler.NewReservationHandler(reservations, cfg.Log),
	)
	serverApp.Run()
}
