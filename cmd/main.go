package main

import (
	"context"
	"fmt"
	"os"

	"github.com/attunelab/attune-backend/internal/cache"
	"github.com/attunelab/attune-backend/internal/catalog"
	"github.com/attunelab/attune-backend/internal/db"
	"github.com/attunelab/attune-backend/internal/handlers"
	"github.com/attunelab/attune-backend/internal/logger"
	"github.com/attunelab/attune-backend/internal/middleware"
	"github.com/attunelab/attune-backend/internal/observability"
	"github.com/attunelab/attune-backend/internal/repos"
	"github.com/attunelab/attune-backend/internal/server"
	"github.com/attunelab/attune-backend/internal/services"
	"github.com/attunelab/attune-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	serviceName := utils.GetEnv("SERVICE_NAME", "attune-backend", log)
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	catalogPath := utils.GetEnv("WIDGET_CATALOG_PATH", "", log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() { _ = otelShutdown(context.Background()) }()
	}

	// Widget catalog
	cat := catalog.Default()
	if catalogPath != "" {
		loaded, err := catalog.LoadFile(catalogPath)
		if err != nil {
			log.Error("Could not load widget catalog", "error", err, "path", catalogPath)
			os.Exit(1)
		}
		cat = loaded
	}
	log.Info("Widget catalog ready", "widgets", cat.Len())

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Redis layout cache (optional)
	layoutCache, err := cache.NewLayoutCache(log)
	if err != nil {
		log.Warn("Layout cache disabled", "error", err)
		layoutCache = nil
	}
	if layoutCache != nil {
		defer func() { _ = layoutCache.Close() }()
	}

	// Repos
	log.Info("Setting up repos from main...")
	coupleRepo := repos.NewCoupleRepo(thePG, log)
	userRepo := repos.NewUserRepo(thePG, log)
	coupleLayoutRepo := repos.NewCoupleLayoutRepo(thePG, log)
	overrideRepo := repos.NewLayoutOverrideRepo(thePG, log)
	templateRepo := repos.NewLayoutTemplateRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	sessionVerifier := services.NewJWTSessionVerifier(log, jwtSecretKey)
	coupleLayoutService := services.NewCoupleLayoutService(thePG, log, cat, coupleLayoutRepo, userRepo, layoutCache)
	overrideService := services.NewOverrideService(thePG, log, overrideRepo, coupleRepo, layoutCache)
	templateService := services.NewTemplateService(thePG, log, cat, templateRepo, coupleLayoutRepo, userRepo, layoutCache)
	dashboardService := services.NewDashboardService(thePG, log, cat, coupleLayoutRepo, overrideRepo, userRepo, layoutCache)

	// Handlers
	log.Info("Setting up handlers from main...")
	coupleLayoutHandler := handlers.NewCoupleLayoutHandler(coupleLayoutService)
	overrideHandler := handlers.NewOverrideHandler(overrideService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, cat)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, sessionVerifier)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:         serviceName,
		AuthMiddleware:      authMiddleware,
		CoupleLayoutHandler: coupleLayoutHandler,
		OverrideHandler:     overrideHandler,
		TemplateHandler:     templateHandler,
		DashboardHandler:    dashboardHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
