package main

import (
	analyticshandler "printhub/internal/analytics/handler"
	analyticsrepo "printhub/internal/analytics/repository"
	analyticsservice "printhub/internal/analytics/service"
	hourshandler "printhub/internal/operatinghours/handler"
	hoursrepo "printhub/internal/operatinghours/repository"
	hoursservice "printhub/internal/operatinghours/service"
	pricinghandler "printhub/internal/pricing/handler"
	pricingrepo "printhub/internal/pricing/repository"
	pricingservice "printhub/internal/pricing/service"
	profilesrepo "printhub/internal/profiles/repository"
	settingshandler "printhub/internal/settings/handler"
	settingsrepo "printhub/internal/settings/repository"
	settingsservice "printhub/internal/settings/service"
	"printhub/internal/shops/handler"
	"printhub/internal/shops/repository"
	"printhub/internal/shops/service"
	"printhub/pkg/app"
	"printhub/pkg/auth"
	"printhub/pkg/config"
	"printhub/pkg/contracts"
	"printhub/pkg/middleware"
	"printhub/pkg/validation"
)

const ServiceName = "shops"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Shops service")
	serverApp := app.NewApplication(cfg)

	var public []middleware.PublicRoute
	for _, routes := range [][]middleware.PublicRoute{
		handler.PublicRoutes,
		hourshandler.PublicRoutes,
		pricinghandler.PublicRoutes,
		settingshandler.PublicRoutes,
	} {
		public = append(public, routes...)
	}

	serverApp.SetApp(app.Options{
		Verifier:     auth.NewIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		PublicRoutes: public,
	}, initHandlers(cfg)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config) []contracts.Handler {
	validator := validation.New(cfg.Log)

	shopRepo := repository.NewMongoShopRepository(cfg)
	shopService := service.NewShopService(shopRepo, profilesrepo.NewMongoProfileRepository(cfg), validator, cfg)

	hoursService := hoursservice.NewOperatingHoursService(hoursrepo.NewMongoOperatingHoursRepository(cfg), shopRepo, validator, cfg)

	settingsService := settingsservice.NewSettingsService(
		settingsrepo.NewMongoSettingsRepository(cfg),
		settingsrepo.NewMongoEquipmentRepository(cfg),
		validator,
		cfg,
	)

	pricingService := pricingservice.NewPricingService(pricingrepo.NewMongoPricingRuleRepository(cfg), validator, cfg)

	analyticsService := analyticsservice.NewAnalyticsService(analyticsrepo.NewMongoAnalyticsRepository(cfg), cfg)

	cfg.Log.Info("Shop services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		handler.NewShopHandler(shopService, cfg.Log),
		hourshandler.NewOperatingHoursHandler(hoursService, cfg.Log),
		settingshandler.NewSettingsHandler(settingsService, cfg.Log),
		pricinghandler.NewPricingHandler(pricingService, cfg.Log),
		analyticshandler.NewAnalyticsHandler(analyticsService, cfg.Log),
	}
}
