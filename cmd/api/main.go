package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driveline-ai/fleetguard/cmd/mainconfig"
	"github.com/driveline-ai/fleetguard/internal/api/router"
	"github.com/driveline-ai/fleetguard/internal/app/bootstrap"
	"github.com/driveline-ai/fleetguard/internal/bookings"
	appconfig "github.com/driveline-ai/fleetguard/internal/config"
	"github.com/driveline-ai/fleetguard/internal/fleet"
	"github.com/driveline-ai/fleetguard/internal/http/handlers"
	"github.com/driveline-ai/fleetguard/internal/ingest"
	"github.com/driveline-ai/fleetguard/internal/observability/metrics"
	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting fleetguard API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Audit surface: capped stream plus optional Redis and Postgres sinks.
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	archiveDB := bootstrap.OpenArchiveDB(cfg, logger)
	if archiveDB != nil {
		defer func() { _ = archiveDB.Close() }()
	}
	stream, monitor := bootstrap.BuildAuditPipeline(cfg, redisClient, archiveDB, logger)

	// Vehicle state and appointment stores.
	fleetStore := bootstrap.BuildFleetStore(redisClient)
	bookingsStore, closeBookings, err := bootstrap.BuildBookingsStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect bookings store", "error", err)
		os.Exit(1)
	}
	defer closeBookings()

	ports, closePorts, err := bootstrap.BuildCollaborators(ctx, cfg, awsCfg, logger)
	if err != nil {
		logger.Error("failed to build collaborators", "error", err)
		os.Exit(1)
	}
	defer closePorts()

	orchMetrics := metrics.NewOrchestratorMetrics(nil)
	orch, err := orchestrator.New(ports, monitor, logger,
		orchestrator.WithSnapshotWriter(fleet.NewRecorder(fleetStore)),
		orchestrator.WithBookingWriter(bookings.NewRecorder(bookingsStore)),
		orchestrator.WithMetrics(orchMetrics),
		orchestrator.WithCallTimeout(cfg.CollaboratorTimeout),
	)
	if err != nil {
		logger.Error("failed to build orchestrator", "error", err)
		os.Exit(1)
	}

	// Async intake. In memory-queue mode consumption runs in this process.
	ingestion := bootstrap.BuildIngestion(cfg, awsCfg, orch, logger)
	var publisher handlers.JobEnqueuer
	var jobs ingest.JobRecorder
	if ingestion != nil {
		publisher = ingestion.Publisher
		jobs = ingestion.Jobs
		if ingestion.Worker != nil {
			workerCtx, stopWorker := context.WithCancel(ctx)
			defer stopWorker()
			ingestion.Worker.Start(workerCtx)
		}
	}

	routerCfg := &router.Config{
		Logger:          logger,
		Ingest:          handlers.NewIngestHandler(orch, publisher, jobs, stream, logger),
		Fleet:           handlers.NewFleetHandler(fleetStore, bookingsStore, logger),
		Audit:           handlers.NewAuditHandler(stream),
		Demo:            handlers.NewDemoHandler(orch, logger),
		AdminAuthSecret: cfg.AdminJWTSecret,
		MetricsHandler:  promhttp.Handler(),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
