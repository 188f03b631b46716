package ingest

import (
	"context"
	"fmt"

	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Publisher enqueues telemetry samples for asynchronous orchestration.
type Publisher struct {
	queue  queueClient
	jobs   JobRecorder
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher. The job recorder is
// optional; without it callers cannot poll job status.
func NewPublisher(queue queueClient, jobs JobRecorder, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("ingest: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		jobs:   jobs,
		logger: logger.Component("ingest_publisher"),
	}
}

// Enqueue validates the sample, records a pending job, and publishes it.
// The returned job ID can be polled for the run result.
func (p *Publisher) Enqueue(ctx context.Context, sample telemetry.Sample) (string, error) {
	if err := sample.Validate(); err != nil {
		return "", err
	}

	payload, body, err := encodePayload(queuePayload{Sample: sample})
	if err != nil {
		return "", err
	}

	if p.jobs != nil {
		job := &JobRecord{JobID: payload.JobID, VehicleID: sample.VehicleID}
		if err := p.jobs.PutPending(ctx, job); err != nil {
			return "", fmt.Errorf("ingest: failed to record job: %w", err)
		}
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return "", fmt.Errorf("ingest: failed to enqueue job: %w", err)
	}

	p.logger.Debug("telemetry job enqueued",
		"job_id", payload.JobID, "vehicle_id", sample.VehicleID)
	return payload.JobID, nil
}
