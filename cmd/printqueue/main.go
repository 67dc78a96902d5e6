package main

import (
	"context"

	expiryhandler "printhub/internal/expiry/handler"
	expiryrepo "printhub/internal/expiry/repository"
	expiryservice "printhub/internal/expiry/service"
	pricingrepo "printhub/internal/pricing/repository"
	pricingservice "printhub/internal/pricing/service"
	"printhub/internal/printjobs/handler"
	"printhub/internal/printjobs/repository"
	"printhub/internal/printjobs/service"
	"printhub/internal/realtime"
	"printhub/pkg/app"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	"printhub/pkg/contracts"
	"printhub/pkg/kafka"
	kafka_middleware "printhub/pkg/kafka/middleware"
	"printhub/pkg/sealer"
	"printhub/pkg/storage"
	"printhub/pkg/validation"
)

const ServiceName = "printqueue"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Print Queue service")
	serverApp := app.NewApplication(cfg)

	hub := realtime.NewHub(cfg.Log)
	publisher := initPublisher(cfg, serverApp, hub)

	store := storage.NewGridFSStore(cfg.Client.Mongo.Database(cfg.MongoDatabaseName))
	signer := initSigner(cfg)
	validator := validation.New(cfg.Log)

	pricingService := pricingservice.NewPricingService(pricingrepo.NewMongoPricingRuleRepository(cfg), validator, cfg)
	jobRepo := repository.NewMongoPrintJobRepository(cfg)
	jobService := service.NewPrintJobService(jobRepo, validator, publisher, store, signer, pricingService, cfg)

	markers := expiryrepo.NewMongoSweepMarkerRepository(cfg)
	sweeper := expiryservice.NewSweeper(jobRepo, markers, store, publisher, cfg)
	serverApp.Background("expiry-sweeper", func(ctx context.Context) error {
		if err := sweeper.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	})
	serverApp.OnShutdown(hub)
	serverApp.OnShutdown(sweeper)
	expiryService := expiryservice.NewExpiryService(jobRepo, markers, sweeper, cfg)

	handlers := []contracts.Handler{
		handler.NewPrintJobHandler(jobService, cfg.Log),
		expiryhandler.NewExpiryHandler(expiryService, cfg.Log),
		realtime.NewStreamHandler(hub, cfg.Log),
		storage.NewFilesHandler(store, signer, cfg.Log),
	}
	serverApp.SetApp(app.Options{
		Verifier:          auth.NewIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		PublicRoutes:      storage.PublicRoutes,
		ExtraContentTypes: []string{"multipart/form-data"},
		StreamRoutes:      []string{realtime.StreamRoute},
	}, handlers...)

	cfg.Log.Info("Print queue service initialized", "database", cfg.MongoDatabaseName, "kafka", cfg.KafkaEnabled)
	serverApp.Run()
}

func initSigner(cfg *config.Config) *storage.SealedURLSigner {
	s, err := sealer.New(cfg.SealerKey)
	if err != nil {
		cfg.Log.Fatal("Failed to create URL sealer", "error", err)
	}
	return storage.NewSealedURLSigner(s, cfg.PublicBaseURL)
}

// initPublisher routes change events through kafka when enabled; the bridge
// consumes them back into the hub so every replica streams every write.
// Without kafka, events go straight to the local hub.
func initPublisher(cfg *config.Config, serverApp *app.Application, hub *realtime.Hub) realtime.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Warn("Kafka disabled, change events stay in-process")
		return realtime.NewHubPublisher(hub)
	}

	producer, err := kafka.NewProducer(cfg.Kafka, cfg.PrintJobEventTopic, cfg.PrintJobEventDLQ, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	consumer, err := kafka.NewConsumer(
		cfg.Kafka,
		cfg.PrintJobEventTopic,
		ServiceName+"-realtime",
		cfg.PrintJobEventDLQ,
		realtime.NewBridge(hub, cfg.Log).Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if cfg.Kafka.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	serverApp.Background("realtime-bridge", consumer.Start)
	serverApp.OnShutdown(contracts.StopFunc(func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}))
	return realtime.NewKafkaPublisher(producer, ServiceName)
}
