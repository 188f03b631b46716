package agents

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

const serviceCenter = "AutoCare Service Center - Downtown"

const slotTimeLayout = "2006-01-02 15:04"

// SlotScheduler proposes fixed relative slots and confirms bookings with a
// generated booking identifier. Clock and random source are injectable.
type SlotScheduler struct {
	logger *logging.Logger
	now    func() time.Time
	randN  func(n int) int
}

// SchedulerOption customizes the slot scheduler.
type SchedulerOption func(*SlotScheduler)

// WithSchedulerClock injects the time source used to derive slots.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *SlotScheduler) { s.now = now }
}

// WithSchedulerRand injects the booking-suffix random source.
func WithSchedulerRand(randN func(n int) int) SchedulerOption {
	return func(s *SlotScheduler) { s.randN = randN }
}

func NewSlotScheduler(logger *logging.Logger, opts ...SchedulerOption) *SlotScheduler {
	s := &SlotScheduler{
		logger: logger.Component("scheduler"),
		now:    time.Now,
		randN:  rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Propose returns three candidate slots: tomorrow 09:00, in two days at
// 14:00, and in three days at 10:00.
func (s *SlotScheduler) Propose(_ context.Context, vehicleID string) (*orchestrator.AppointmentProposal, error) {
	base := s.now()
	options := []string{
		slotAt(base, 1, 9),
		slotAt(base, 2, 14),
		slotAt(base, 3, 10),
	}
	s.logger.Info("slots proposed", "vehicle_id", vehicleID, "count", len(options))
	return &orchestrator.AppointmentProposal{
		VehicleID: vehicleID,
		Options:   options,
		Center:    serviceCenter,
	}, nil
}

// Confirm books the slot and returns a confirmation with a BK-prefixed
// booking identifier.
func (s *SlotScheduler) Confirm(_ context.Context, vehicleID, slot string) (*orchestrator.AppointmentConfirmation, error) {
	bookingID := fmt.Sprintf("BK-%s-%d", vehicleID, 1000+s.randN(9000))
	s.logger.Info("appointment confirmed",
		"vehicle_id", vehicleID, "slot", slot, "booking_id", bookingID)
	return &orchestrator.AppointmentConfirmation{
		VehicleID:  vehicleID,
		ChosenSlot: slot,
		Center:     serviceCenter,
		BookingID:  bookingID,
	}, nil
}

func slotAt(base time.Time, daysAhead, hour int) string {
	day := base.AddDate(0, 0, daysAhead)
	slot := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	return slot.Format(slotTimeLayout)
}
