// Package fleet persists the per-vehicle snapshot left behind by each
// orchestration run: the last telemetry sample, the last predicted issue,
// and the run timestamp. Writes are last-writer-wins by design; concurrent
// runs for the same vehicle race without a sequencing key.
package fleet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
)

// ErrVehicleNotFound indicates no snapshot exists for the vehicle.
var ErrVehicleNotFound = errors.New("fleet: vehicle not found")

// Snapshot is the persisted per-vehicle state, overwritten on every run.
type Snapshot struct {
	VehicleID     string              `json:"vehicle_id"`
	LastTelemetry telemetry.Sample    `json:"last_telemetry"`
	LastIssue     *orchestrator.Issue `json:"last_issue,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

// Store reads and writes vehicle snapshots.
type Store interface {
	Put(ctx context.Context, snap Snapshot) error
	Get(ctx context.Context, vehicleID string) (*Snapshot, error)
}

// MemoryStore is a mutex-guarded in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vehicles: make(map[string]Snapshot)}
}

// Put overwrites the snapshot for the vehicle.
func (s *MemoryStore) Put(_ context.Context, snap Snapshot) error {
	if snap.VehicleID == "" {
		return errors.New("fleet: snapshot vehicle_id required")
	}
	s.mu.Lock()
	s.vehicles[snap.VehicleID] = snap
	s.mu.Unlock()
	return nil
}

// Get returns the current snapshot for the vehicle.
func (s *MemoryStore) Get(_ context.Context, vehicleID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	return &snap, nil
}
