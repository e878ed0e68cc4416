package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/ribapurify/internal/domain/history"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/handler"
	"github.com/FACorreiaa/ribapurify/internal/domain/statement/service"
	"github.com/FACorreiaa/ribapurify/internal/jobs"
	"github.com/FACorreiaa/ribapurify/pkg/config"
	"github.com/FACorreiaa/ribapurify/pkg/cron"
	"github.com/FACorreiaa/ribapurify/pkg/db"
	"github.com/FACorreiaa/ribapurify/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Repositories
	HistoryRepo *history.Repository
	JobStore    *jobs.Store

	// Services
	ScanService    *service.ScanService
	HistoryService *history.Service
	JobQueue       *jobs.Queue
	Scheduler      *cron.Scheduler

	// Handlers
	ScanHandler *handler.ScanHandler
	Router      http.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initObservability()

	if cfg.Database.Enabled {
		if err := deps.initDatabase(); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initObservability() {
	if !d.Config.Observability.MetricsEnabled {
		return
	}
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	if d.DB != nil {
		d.HistoryRepo = history.NewRepository(d.DB.Pool)
	}
	d.JobStore = jobs.NewStore()

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.ScanService = statement.NewScanService(d.Config.Pipeline, d.Config.OCR, d.Logger).
		WithMetrics(d.Metrics)

	if d.HistoryRepo != nil {
		d.HistoryService = history.NewService(d.HistoryRepo, d.Logger)
		d.ScanService.WithHistory(d.HistoryService)
	}

	d.JobQueue = jobs.NewQueue(d.JobStore, d.ScanService, d.Config.Jobs.QueueSize, d.Config.Jobs.Workers, d.Logger).
		WithMetrics(d.Metrics)

	d.Scheduler = cron.NewScheduler(d.Config.Jobs.PruneSchedule, d.JobStore, d.Config.Jobs.Retention, d.Logger)
	if d.HistoryService != nil {
		d.Scheduler.WithHistory(d.HistoryService, d.Config.Pipeline.HistoryRetention)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.ScanHandler = handler.NewScanHandler(d.ScanService, d.Logger).
		WithJobs(d.JobQueue, d.JobStore).
		WithMaxUpload(d.Config.Server.MaxUploadBytes)
	if d.HistoryService != nil {
		d.ScanHandler.WithHistory(d.HistoryService)
	}

	opts := handler.RouterOptions{
		RateLimitPerSecond: d.Config.Server.RateLimitPerSecond,
		RateLimitBurst:     d.Config.Server.RateLimitBurst,
		CORSOrigins:        d.Config.Server.CORSOrigins,
		RequestTimeout:     d.Config.Pipeline.BatchTimeout + 15*time.Second,
		Logger:             d.Logger,
	}
	if d.Registry != nil {
		opts.Metrics = d.Registry
	}
	d.Router = handler.NewRouter(d.ScanHandler, opts)

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
