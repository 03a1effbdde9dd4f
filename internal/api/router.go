package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sutaaa0/cashier-app-sub001/internal/middleware"
	"github.com/sutaaa0/cashier-app-sub001/internal/repository"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
)

func SetupRouter(
	backupHandler *BackupHandler,
	resetHandler *ResetHandler,
	settingsHandler *SettingsHandler,
	auditHandler *AuditHandler,
	prometheusHandler *PrometheusHandler,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router with custom middleware
	router := gin.New()

	// Global middleware (in order)
	router.Use(gin.Recovery())                                               // Panic recovery
	router.Use(middleware.ErrorHandler())                                    // Error handling
	router.Use(middleware.RequestLogger())                                   // Request logging
	router.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimiter)) // Global rate limiting

	// CORS middleware (for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoints
	dbProvider := repository.GetDBProvider()
	healthHandler := NewHealthHandler(dbProvider)
	router.GET("/health", healthHandler.HealthCheck)
	router.HEAD("/health", healthHandler.HealthCheck) // Docker healthcheck uses HEAD
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", healthHandler.MetricsCheck)

	// Prometheus metrics endpoint (no auth required for scraping)
	router.GET("/prometheus", prometheusHandler.MetricsEndpoint)

	api := router.Group("/api")
	{
		// Backup artifacts
		backups := api.Group("/backups")
		{
			backups.GET("", backupHandler.ListBackups)
			backups.POST("", middleware.RateLimitMiddleware(middleware.DestructiveRateLimiter), backupHandler.CreateBackup)
			backups.GET("/:filename", backupHandler.DownloadBackup)
			backups.DELETE("/:filename", backupHandler.DeleteBackup)
		}

		// Database reset
		reset := api.Group("/reset")
		{
			reset.POST("", middleware.RateLimitMiddleware(middleware.DestructiveRateLimiter), resetHandler.RunReset)
			reset.GET("/logs", resetHandler.ListResetLogs)
			reset.GET("/logs/:name", resetHandler.GetResetLog)
		}

		// Settings
		settings := api.Group("/settings")
		{
			settings.GET("/backup", settingsHandler.GetBackupSettings)
			settings.PUT("/backup", settingsHandler.UpdateBackupSettings)
			settings.GET("/reset", settingsHandler.GetResetSettings)
			settings.PUT("/reset", settingsHandler.UpdateResetSettings)
		}

		// Audit trail and operation events
		api.GET("/audit", auditHandler.GetAuditLog)
		api.GET("/audit/stats", auditHandler.GetAuditStats)
		api.GET("/events", auditHandler.GetOperationEvents)
	}

	return router
}
