package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/resume-parser-api/internal/config"
	"github.com/BerylCAtieno/resume-parser-api/internal/db"
	"github.com/BerylCAtieno/resume-parser-api/internal/metrics"
	"github.com/BerylCAtieno/resume-parser-api/internal/repository"
	"github.com/BerylCAtieno/resume-parser-api/internal/router"
	"github.com/BerylCAtieno/resume-parser-api/internal/services"
	"github.com/BerylCAtieno/resume-parser-api/internal/storage"
	"github.com/BerylCAtieno/resume-parser-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	var repo repository.Repository
	if cfg.RecordsEnabled() {
		database, err := db.NewSQLiteDB(cfg.DatabasePath)
		if err != nil {
			logger.Fatal("Failed to open database", "error", err, "path", cfg.DatabasePath)
		}
		defer database.Close()

		if err := db.RunMigrations(database); err != nil {
			logger.Fatal("Failed to run migrations", "error", err)
		}

		repo = repository.NewRepository(database)
		logger.Info("Parse records enabled", "path", cfg.DatabasePath)
	}

	var store storage.Storage
	if cfg.ArchiveEnabled() {
		if repo == nil {
			logger.Warn("S3 archive configured without DATABASE_PATH; results will not be archived")
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
			store, err = storage.NewS3Storage(ctx, cfg)
			cancel()
			if err != nil {
				logger.Fatal("Failed to initialize S3 storage", "error", err, "endpoint", cfg.S3Endpoint)
			}
			logger.Info("Result archive enabled", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketName)
		}
	}

	m := metrics.New()

	resumeService := services.NewService(cfg, repo, store, m, logger)

	// Setup HTTP router
	handler := router.NewRouter(cfg, resumeService, m, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "max_upload_mb", cfg.MaxUploadMB)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
