package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sutaaa0/cashier-app-sub001/internal/api"
	"github.com/sutaaa0/cashier-app-sub001/internal/audit"
	"github.com/sutaaa0/cashier-app-sub001/internal/dbadmin"
	"github.com/sutaaa0/cashier-app-sub001/internal/events"
	"github.com/sutaaa0/cashier-app-sub001/internal/monitoring"
	"github.com/sutaaa0/cashier-app-sub001/internal/oplock"
	"github.com/sutaaa0/cashier-app-sub001/internal/repository"
	"github.com/sutaaa0/cashier-app-sub001/internal/runlog"
	"github.com/sutaaa0/cashier-app-sub001/internal/service"
	"github.com/sutaaa0/cashier-app-sub001/internal/settings"
	"github.com/sutaaa0/cashier-app-sub001/internal/storage"
	"github.com/sutaaa0/cashier-app-sub001/pkg/config"
	"github.com/sutaaa0/cashier-app-sub001/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.NewLogger(logger.ParseLevel(cfg.LogLevel), os.Stdout, cfg.LogJSON)
	logger.SetDefault(appLogger)

	logger.Info("Starting application", map[string]interface{}{
		"app":   cfg.AppName,
		"debug": cfg.Debug,
		"port":  cfg.Port,
	})

	// Initialize database
	if err := repository.InitDB(cfg); err != nil {
		logger.Fatal("Failed to initialize database", err, nil)
	}
	logger.Info("Database initialized", nil)

	db := repository.GetDB()
	if err := repository.EnsureDefaultAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("Failed to ensure default admin account", err, nil)
	}

	// Initialize Event-Bus with multi-storage (PostgreSQL + InfluxDB)
	dbStorage := events.NewDatabaseEventStorage(db)

	var eventStorage events.EventStorage = dbStorage
	if cfg.InfluxDBURL != "" && cfg.InfluxDBToken != "" {
		influxClient, err := storage.NewInfluxDBClient(storage.InfluxDBConfig{
			URL:    cfg.InfluxDBURL,
			Token:  cfg.InfluxDBToken,
			Org:    cfg.InfluxDBOrg,
			Bucket: cfg.InfluxDBBucket,
		})
		if err != nil {
			logger.Warn("Failed to initialize InfluxDB, falling back to database-only storage", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer influxClient.Close()
			eventStorage = events.NewMultiEventStorage(dbStorage, events.NewInfluxDBEventStorage(influxClient))
			logger.Info("Event-Bus initialized with dual storage (PostgreSQL + InfluxDB)", map[string]interface{}{
				"influxdb_url": cfg.InfluxDBURL,
				"org":          cfg.InfluxDBOrg,
				"bucket":       cfg.InfluxDBBucket,
			})
		}
	} else {
		logger.Info("Event-Bus initialized with database storage only", nil)
	}
	events.SetEventStorage(eventStorage)

	// Audit trail and per-run operation logs
	auditLog := audit.NewAuditLogger(1000)
	runlogs := runlog.NewManager(cfg.LogsDir)

	// Operation lock serializing backups and resets
	lock := oplock.New(cfg.DataDir, appLogger, func(age time.Duration) {
		monitoring.LockReclaimsTotal.Inc()
		auditLog.RecordLockReclaimed(age, "oplock")
		events.PublishLockReclaimed(age.Seconds())
	})

	// Database admin surface (pg_dump / psql / maintenance SQL)
	admin, err := dbadmin.NewPostgresAdmin(cfg, db, appLogger)
	if err != nil {
		logger.Fatal("Failed to initialize database admin", err, nil)
	}

	// Settings store
	settingsStore := settings.NewStore(cfg.DataDir, appLogger)

	// Lifecycle services
	retentionService := service.NewRetentionService(cfg, auditLog)
	backupService := service.NewBackupService(admin, cfg, settingsStore, retentionService, auditLog, runlogs, lock)
	resetService := service.NewResetService(admin, backupService, cfg, settingsStore, auditLog, runlogs, lock,
		func(email, password string) error {
			return repository.EnsureDefaultAdmin(repository.GetDB(), email, password)
		})

	// Scheduler polling both schedules every minute
	scheduler := service.NewScheduler(settingsStore, backupService, resetService)
	scheduler.Start()

	// HTTP handlers
	backupHandler := api.NewBackupHandler(backupService)
	resetHandler := api.NewResetHandler(resetService, runlogs)
	settingsHandler := api.NewSettingsHandler(settingsStore)
	auditHandler := api.NewAuditHandler(auditLog)
	prometheusHandler := api.NewPrometheusHandler()

	router := api.SetupRouter(backupHandler, resetHandler, settingsHandler, auditHandler, prometheusHandler, cfg)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...", nil)
		scheduler.Stop()

		if provider := repository.GetDBProvider(); provider != nil {
			if err := provider.Close(); err != nil {
				logger.Error("Failed to close database connection", err, nil)
			}
		}

		logger.Info("Shutdown complete", nil)
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("Server starting", map[string]interface{}{
		"address": addr,
	})
	if err := router.Run(addr); err != nil {
		logger.Fatal("Server failed", err, nil)
	}
}
