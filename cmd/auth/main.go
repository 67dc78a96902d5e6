package main

import (
	"printhub/internal/auth/handler"
	"printhub/internal/auth/repository"
	"printhub/internal/auth/service"
	profileshandler "printhub/internal/profiles/handler"
	profilesrepo "printhub/internal/profiles/repository"
	profilesservice "printhub/internal/profiles/service"
	shopsrepo "printhub/internal/shops/repository"
	shopsservice "printhub/internal/shops/service"
	"printhub/pkg/app"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	"printhub/pkg/sealer"
	"printhub/pkg/storage"
	"printhub/pkg/validation"
)

const ServiceName = "auth"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Auth service")
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authService, profileService := initServices(cfg, issuer)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(app.Options{
		Verifier:          issuer,
		PublicRoutes:      handler.PublicRoutes,
		ExtraContentTypes: []string{"multipart/form-data"},
	},
		handler.NewAuthHandler(authService, cfg.Log),
		profileshandler.NewProfileHandler(profileService, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, issuer *auth.Issuer) (service.AuthService, profilesservice.ProfileService) {
	validator := validation.New(cfg.Log)

	s, err := sealer.New(cfg.SealerKey)
	if err != nil {
		cfg.Log.Fatal("Failed to create URL sealer", "error", err)
	}
	store := storage.NewGridFSStore(cfg.Client.Mongo.Database(cfg.MongoDatabaseName))
	signer := storage.NewSealedURLSigner(s, cfg.PublicBaseURL)

	profileRepo := profilesrepo.NewMongoProfileRepository(cfg)
	profileService := profilesservice.NewProfileService(profileRepo, store, signer, validator, cfg)
	shopService := shopsservice.NewShopService(shopsrepo.NewMongoShopRepository(cfg), profileRepo, validator, cfg)

	authService := service.NewAuthService(
		repository.NewMongoUserRepository(cfg),
		repository.NewMongoSessionRepository(cfg),
		issuer,
		profileService,
		shopService,
		validator,
		cfg,
	)

	cfg.Log.Info("Auth service initialized", "database", cfg.MongoDatabaseName, "email_confirmation", cfg.RequireEmailConfirmation)
	return authService, profileService
}
