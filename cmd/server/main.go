package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hazmate/internal/analyzer"
	"hazmate/internal/config"
	"hazmate/internal/guidelines"
	"hazmate/internal/handler"
	"hazmate/internal/logger"
	"hazmate/internal/metrics"
	"hazmate/internal/port"
	"hazmate/internal/router"
	"hazmate/internal/service"
	s3storage "hazmate/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = appLog.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	rules, err := guidelines.LoadOrDefault(cfg.Rules.File)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Fails fast on an unknown AI_PROVIDER or a missing default key.
	factory, err := analyzer.NewFactory(cfg.AI, rules, analyzer.WithLogger(appLog), analyzer.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	var storage port.ObjectStorage
	if cfg.Archive.Enabled() {
		storage, err = s3storage.NewS3Client(context.Background(), &cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		appLog.Info("document archive enabled",
			logger.String("bucket", cfg.Archive.Bucket),
			logger.String("prefix", cfg.Archive.Prefix),
		)
	}

	// Initialize services
	analysisSvc := service.NewAnalysisService(factory, storage, &cfg.Upload, &cfg.Archive, appLog, m)

	// Initialize handlers
	handlers := router.Handlers{
		Analysis: handler.NewAnalysisHandler(analysisSvc, cfg.Upload.MaxBytes()),
		Report:   handler.NewReportHandler(),
		Health:   handler.NewHealthHandler(analysisSvc),
	}

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Setup(cfg, handlers, appLog, m),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("server starting", logger.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		appLog.Info("shutting down", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	appLog.Info("server exited")
	return nil
}
