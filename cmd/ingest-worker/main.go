package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/driveline-ai/fleetguard/cmd/mainconfig"
	"github.com/driveline-ai/fleetguard/internal/app/bootstrap"
	"github.com/driveline-ai/fleetguard/internal/bookings"
	appconfig "github.com/driveline-ai/fleetguard/internal/config"
	"github.com/driveline-ai/fleetguard/internal/fleet"
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
	logger.Info("starting fleetguard ingest worker",
		"env", cfg.Env,
		"workers", cfg.WorkerCount,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	archiveDB := bootstrap.OpenArchiveDB(cfg, logger)
	if archiveDB != nil {
		defer func() { _ = archiveDB.Close() }()
	}
	_, monitor := bootstrap.BuildAuditPipeline(cfg, redisClient, archiveDB, logger)

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

	orch, err := orchestrator.New(ports, monitor, logger,
		orchestrator.WithSnapshotWriter(fleet.NewRecorder(fleetStore)),
		orchestrator.WithBookingWriter(bookings.NewRecorder(bookingsStore)),
		orchestrator.WithMetrics(metrics.NewOrchestratorMetrics(nil)),
		orchestrator.WithCallTimeout(cfg.CollaboratorTimeout),
	)
	if err != nil {
		logger.Error("failed to build orchestrator", "error", err)
		os.Exit(1)
	}

	worker, err := bootstrap.BuildQueueWorker(cfg, awsCfg, orch, logger)
	if err != nil {
		logger.Error("failed to build queue worker", "error", err)
		os.Exit(1)
	}

	workerCtx, stopWorker := context.WithCancel(ctx)
	worker.Start(workerCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	stopWorker()
	worker.Wait()
	logger.Info("worker stopped")
}
