package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Runner is the orchestration entrypoint the worker drives for each job.
type Runner interface {
	Run(ctx context.Context, sample telemetry.Sample) (*orchestrator.Ledger, error)
}

const (
	defaultWorkerCount = 2
	defaultWaitSeconds = 2
	defaultBatchSize   = 5
	maxWaitSeconds     = 20
	maxBatchSize       = 10
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the queue long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxBatchSize {
			size = maxBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// Worker consumes telemetry jobs from the queue and runs the orchestrator.
type Worker struct {
	runner Runner
	queue  queueClient
	jobs   JobUpdater
	logger *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

// NewWorker builds a worker pool. The job updater is optional; without it
// run results are only observable through logs and stores.
func NewWorker(runner Runner, queue queueClient, jobs JobUpdater, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if runner == nil {
		panic("ingest: runner cannot be nil")
	}
	if queue == nil {
		panic("ingest: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		runner: runner,
		queue:  queue,
		jobs:   jobs,
		logger: logger.Component("ingest_worker"),
		cfg:    cfg,
	}
}

// Start launches worker goroutines until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("ingest worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("ingest worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive telemetry jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		// Malformed payloads would loop forever; drop them.
		w.logger.Error("failed to decode telemetry job", "error", err)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	w.logger.Info("processing telemetry job",
		"job_id", payload.JobID, "vehicle_id", payload.Sample.VehicleID, "msg_id", msg.ID)

	ledger, err := w.runner.Run(ctx, payload.Sample)
	if err != nil {
		w.logger.Error("telemetry job failed",
			"job_id", payload.JobID, "vehicle_id", payload.Sample.VehicleID, "error", err)
		w.markFailed(ctx, payload.JobID, err)
		w.deleteMessage(msg.ReceiptHandle)
		return
	}

	if w.jobs != nil {
		if err := w.jobs.MarkCompleted(ctx, payload.JobID, ledger); err != nil {
			w.logger.Error("failed to update job status", "error", err, "job_id", payload.JobID)
		}
	}
	w.deleteMessage(msg.ReceiptHandle)
}

func (w *Worker) markFailed(ctx context.Context, jobID string, cause error) {
	if w.jobs == nil {
		return
	}
	if err := w.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		w.logger.Error("failed to update job status", "error", err, "job_id", jobID)
	}
}

func (w *Worker) deleteMessage(receiptHandle string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete queue message", "error", err)
	}
}
