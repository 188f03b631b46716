package bookings

import (
	"context"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
)

// Recorder adapts a Store to the orchestrator's booking hook.
type Recorder struct {
	store Store
}

// NewRecorder wraps the store for use as an orchestrator option.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// SaveBooking upserts the confirmed appointment for its vehicle.
func (r *Recorder) SaveBooking(ctx context.Context, confirmation orchestrator.AppointmentConfirmation) error {
	return r.store.Put(ctx, confirmation)
}
