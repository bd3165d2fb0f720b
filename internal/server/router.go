package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/attunelab/attune-backend/internal/handlers"
	"github.com/attunelab/attune-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName         string
	AuthMiddleware      *middleware.AuthMiddleware
	CoupleLayoutHandler *handlers.CoupleLayoutHandler
	OverrideHandler     *handlers.OverrideHandler
	TemplateHandler     *handlers.TemplateHandler
	DashboardHandler    *handlers.DashboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	dl := protected.Group("/dashboard-layout")
	{
		dl.GET("/catalog", cfg.DashboardHandler.GetCatalog)

		dl.GET("/couple/:coupleId", cfg.CoupleLayoutHandler.GetCoupleLayout)
		dl.POST("/couple/:coupleId", cfg.CoupleLayoutHandler.UpsertCoupleLayout)

		dl.GET("/user/:userId", cfg.OverrideHandler.GetOverride)
		dl.POST("/user/:userId", cfg.OverrideHandler.UpsertOverride)
		dl.PATCH("/user/:userId/toggle", cfg.OverrideHandler.Toggle)
		dl.PUT("/user/:userId/hide-widget", cfg.OverrideHandler.HideWidget)
		dl.DELETE("/user/:userId", cfg.OverrideHandler.Reset)
		dl.GET("/user/:userId/resolved", cfg.DashboardHandler.GetResolved)

		dl.GET("/templates/therapist/:therapistId", cfg.TemplateHandler.ListForTherapist)
		dl.POST("/templates", cfg.TemplateHandler.Create)
		dl.PUT("/templates/:id", cfg.TemplateHandler.Update)
		dl.DELETE("/templates/:id", cfg.TemplateHandler.Delete)
		dl.POST("/templates/:id/apply/:coupleId", cfg.TemplateHandler.ApplyToCouple)
		dl.POST("/templates/copy/:sourceCoupleId/to/:targetCoupleId", cfg.TemplateHandler.CopyBetweenCouples)
	}

	return router
}
