package fleet

import (
	"context"
	"time"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
)

// Recorder adapts a Store to the orchestrator's snapshot hook.
type Recorder struct {
	store Store
}

// NewRecorder wraps the store for use as an orchestrator option.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// SaveSnapshot overwrites the vehicle snapshot with the run's results.
func (r *Recorder) SaveSnapshot(ctx context.Context, sample telemetry.Sample, issue *orchestrator.Issue, at time.Time) error {
	return r.store.Put(ctx, Snapshot{
		VehicleID:     sample.VehicleID,
		LastTelemetry: sample,
		LastIssue:     issue,
		Timestamp:     at,
	})
}
