package http

import (
	"github.com/gin-gonic/gin"
	"github.com/stylescout/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		scan := v1.Group("/scan")
		{
			scan.POST("/detect", handler.DetectProducts)
			scan.POST("/clear", handler.ClearDetection)
			scan.POST("/debug", handler.EnableDebugMode)
			scan.GET("/stats", handler.GetDetectionStats)
		}

		settings := v1.Group("/settings")
		{
			settings.PUT("/filter-state", handler.UpdateFilterState)
			settings.POST("/prompt", handler.ApplyPrompt)
			settings.POST("/style-mode", handler.SwitchToStyleMode)
			settings.POST("/disable", handler.DisableExtension)
		}

		wardrobe := v1.Group("/wardrobe")
		{
			wardrobe.POST("/match", handler.MatchWardrobe)
		}
	}

	return router
}
