package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
)

var bookingsTracer = otel.Tracer("fleetguard/bookings")

// querier is the subset of pgxpool.Pool the repository touches. Tests
// inject pgxmock through the same interface.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is a Postgres-backed Store using pgx.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by the given pool.
func NewRepository(db querier) *Repository {
	if db == nil {
		panic("bookings: db pool required")
	}
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// Put upserts the vehicle's booking row.
func (r *Repository) Put(ctx context.Context, confirmation orchestrator.AppointmentConfirmation) error {
	if confirmation.VehicleID == "" {
		return errors.New("bookings: confirmation vehicle_id required")
	}
	ctx, span := bookingsTracer.Start(ctx, "bookings.put")
	defer span.End()
	span.SetAttributes(
		attribute.String("vehicle.id", confirmation.VehicleID),
		attribute.String("booking.id", confirmation.BookingID),
	)

	query := `
		INSERT INTO appointments (vehicle_id, booking_id, chosen_slot, center, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (vehicle_id) DO UPDATE
		SET booking_id = EXCLUDED.booking_id,
		    chosen_slot = EXCLUDED.chosen_slot,
		    center = EXCLUDED.center,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		confirmation.VehicleID,
		confirmation.BookingID,
		confirmation.ChosenSlot,
		confirmation.Center,
		time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("bookings: upsert appointment: %w", err)
	}
	return nil
}

// GetByVehicle returns the vehicle's current booking.
func (r *Repository) GetByVehicle(ctx context.Context, vehicleID string) (*orchestrator.AppointmentConfirmation, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.get_by_vehicle")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.id", vehicleID))

	query := `
		SELECT vehicle_id, booking_id, chosen_slot, center
		FROM appointments
		WHERE vehicle_id = $1
	`
	var c orchestrator.AppointmentConfirmation
	err := r.db.QueryRow(ctx, query, vehicleID).Scan(&c.VehicleID, &c.BookingID, &c.ChosenSlot, &c.Center)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("bookings: load appointment: %w", err)
	}
	return &c, nil
}
