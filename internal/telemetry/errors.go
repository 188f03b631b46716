package telemetry

import "errors"

var (
	// ErrMissingVehicleID indicates a sample without a vehicle identifier.
	ErrMissingVehicleID = errors.New("telemetry: vehicle_id is required")
	// ErrNegativeMileage indicates an impossible odometer reading.
	ErrNegativeMileage = errors.New("telemetry: mileage_km cannot be negative")
)
