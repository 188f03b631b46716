// Package bookings persists confirmed service appointments per vehicle so
// reporting surfaces can answer "what is this vehicle booked for" after the
// run that created the booking has completed.
package bookings

import (
	"context"
	"errors"
	"sync"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
)

// ErrBookingNotFound indicates no appointment exists for the vehicle.
var ErrBookingNotFound = errors.New("bookings: booking not found")

// Store reads and writes appointment confirmations keyed by vehicle.
type Store interface {
	Put(ctx context.Context, confirmation orchestrator.AppointmentConfirmation) error
	GetByVehicle(ctx context.Context, vehicleID string) (*orchestrator.AppointmentConfirmation, error)
}

// MemoryStore is a mutex-guarded in-process Store.
type MemoryStore struct {
	mu        sync.RWMutex
	byVehicle map[string]orchestrator.AppointmentConfirmation
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byVehicle: make(map[string]orchestrator.AppointmentConfirmation)}
}

// Put stores the confirmation, replacing any previous booking for the vehicle.
func (s *MemoryStore) Put(_ context.Context, confirmation orchestrator.AppointmentConfirmation) error {
	if confirmation.VehicleID == "" {
		return errors.New("bookings: confirmation vehicle_id required")
	}
	s.mu.Lock()
	s.byVehicle[confirmation.VehicleID] = confirmation
	s.mu.Unlock()
	return nil
}

// GetByVehicle returns the vehicle's current booking.
func (s *MemoryStore) GetByVehicle(_ context.Context, vehicleID string) (*orchestrator.AppointmentConfirmation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byVehicle[vehicleID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &c, nil
}
