package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OldStager01/driftwatch/api"
	"github.com/OldStager01/driftwatch/internal/baseline"
	"github.com/OldStager01/driftwatch/internal/buffer"
	"github.com/OldStager01/driftwatch/internal/drift"
	"github.com/OldStager01/driftwatch/internal/events"
	"github.com/OldStager01/driftwatch/internal/logger"
	"github.com/OldStager01/driftwatch/internal/model"
	"github.com/OldStager01/driftwatch/internal/monitor"
	"github.com/OldStager01/driftwatch/internal/reportstore"
	"github.com/OldStager01/driftwatch/internal/resilience"
	"github.com/OldStager01/driftwatch/pkg/config"
	"github.com/OldStager01/driftwatch/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	// Optional audit sink
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("Database connection established")
	}

	if *migrate {
		if db == nil {
			return fmt.Errorf("migrations require database.enabled=true")
		}
		migrationTimeout := cfg.Database.MigrationTimeout
		if migrationTimeout == 0 {
			migrationTimeout = 60 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()

		logger.Info("Running database migrations")
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	// Reference baseline and the classifier fitted on it
	base, err := baseline.Load()
	if err != nil {
		return fmt.Errorf("failed to load reference baseline: %w", err)
	}
	logger.Infof("Reference baseline loaded: %d rows, %d features, fingerprint %.12s",
		base.Samples(), len(base.Features()), base.Fingerprint())

	classifier, err := model.FitNearestCentroid(base)
	if err != nil {
		return fmt.Errorf("failed to fit classifier: %w", err)
	}
	logger.Infof("Classifier ready: %s", classifier.Name())

	// Shared state and stores
	buf := buffer.New(cfg.Buffer.Capacity)
	store, err := reportstore.New(reportstore.Config{
		Dir:     cfg.Reports.Dir,
		BaseURL: cfg.Reports.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}

	// Event pipeline
	bus := events.NewEventBus(cfg.Events.BufferSize)
	publisher := events.NewPublisher(bus)

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:        "audit-db",
		MaxFailures: cfg.Database.CircuitBreaker.MaxFailures,
		Timeout:     cfg.Database.CircuitBreaker.Timeout,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	eventLogger := events.NewEventLogger(db, breaker, bus.SubscribeAll())
	eventLogger.Start()

	// Drift scheduler
	analyzer := drift.New(drift.Config{
		PThreshold:     cfg.Drift.PThreshold,
		ShareThreshold: cfg.Drift.ShareThreshold,
	})
	scheduler := monitor.NewScheduler(monitor.Config{
		Interval:   cfg.Monitor.Interval,
		MinSamples: cfg.Monitor.MinSamples,
		RunTimeout: cfg.Monitor.RunTimeout,
	}, buf, base, analyzer, store, publisher)

	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	server := api.NewServer(cfg, api.Deps{
		Classifier: classifier,
		Buffer:     buf,
		Scheduler:  scheduler,
		Store:      store,
		Bus:        bus,
		Publisher:  publisher,
		DB:         db,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	scheduler.Stop()
	eventLogger.Stop()
	bus.Close()

	logger.Info("Server stopped gracefully")
	return nil
}
