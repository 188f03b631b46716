// Package ingest provides the asynchronous telemetry intake path: a
// publisher enqueues samples onto a queue (SQS or in-memory), a worker pool
// consumes them and drives the orchestrator, and job status is persisted to
// DynamoDB for polling.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/driveline-ai/fleetguard/internal/telemetry"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

type queuePayload struct {
	JobID  string           `json:"job_id"`
	Sample telemetry.Sample `json:"sample"`
}

func encodePayload(payload queuePayload) (queuePayload, string, error) {
	if payload.JobID == "" {
		payload.JobID = uuid.NewString()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("ingest: failed to encode payload: %w", err)
	}

	return payload, string(body), nil
}
