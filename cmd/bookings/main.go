package main

import (
	"printhub/internal/bookings/handler"
	"printhub/internal/bookings/repository"
	"printhub/internal/bookings/service"
	hoursrepo "printhub/internal/operatinghours/repository"
	hoursservice "printhub/internal/operatinghours/service"
	pricingrepo "printhub/internal/pricing/repository"
	pricingservice "printhub/internal/pricing/service"
	printjobsrepo "printhub/internal/printjobs/repository"
	"printhub/internal/realtime"
	settingsrepo "printhub/internal/settings/repository"
	settingsservice "printhub/internal/settings/service"
	shopsrepo "printhub/internal/shops/repository"
	slothandler "printhub/internal/timeslots/handler"
	slotrepo "printhub/internal/timeslots/repository"
	slotservice "printhub/internal/timeslots/service"
	"printhub/pkg/app"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	"printhub/pkg/contracts"
	"printhub/pkg/kafka"
	kafka_middleware "printhub/pkg/kafka/middleware"
	"printhub/pkg/validation"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)
	bookingService, slotService, validator := initServices(cfg, serverApp)

	serverApp.SetApp(app.Options{
		Verifier:     auth.NewIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		PublicRoutes: slothandler.PublicRoutes,
	},
		handler.NewBookingHandler(bookingService, cfg.Log),
		slothandler.NewTimeSlotHandler(slotService, validator, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) (service.BookingService, slotservice.TimeSlotService, *validation.Validator) {
	validator := validation.New(cfg.Log)

	hoursService := hoursservice.NewOperatingHoursService(
		hoursrepo.NewMongoOperatingHoursRepository(cfg),
		shopsrepo.NewMongoShopRepository(cfg),
		validator,
		cfg,
	)
	settingsService := settingsservice.NewSettingsService(
		settingsrepo.NewMongoSettingsRepository(cfg),
		settingsrepo.NewMongoEquipmentRepository(cfg),
		validator,
		cfg,
	)
	pricingService := pricingservice.NewPricingService(pricingrepo.NewMongoPricingRuleRepository(cfg), validator, cfg)

	slotRepo := slotrepo.NewMongoTimeSlotRepository(cfg)
	slotService := slotservice.NewTimeSlotService(slotRepo, hoursService, settingsService, cfg)

	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewBookingLockRepository(cfg),
		slotRepo,
		printjobsrepo.NewMongoPrintJobRepository(cfg),
		pricingService,
		validator,
		initPublisher(cfg, serverApp),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, slotService, validator
}

// initPublisher returns nil when kafka is disabled; jobs created from bookings
// then reach open queues on the next poll.
func initPublisher(cfg *config.Config, serverApp *app.Application) realtime.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Warn("Kafka disabled, booking jobs are not streamed to print queues")
		return nil
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.PrintJobEventTopic, cfg.PrintJobEventDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if cfg.Kafka.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	serverApp.OnShutdown(contracts.StopFunc(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}))
	return realtime.NewKafkaPublisher(producer, ServiceName)
}
