package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driveline-ai/fleetguard/internal/bookings"
	"github.com/driveline-ai/fleetguard/internal/fleet"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// FleetHandler serves per-vehicle state and appointment lookups.
type FleetHandler struct {
	vehicles fleet.Store
	bookings bookings.Store
	logger   *logging.Logger
}

func NewFleetHandler(vehicles fleet.Store, appts bookings.Store, logger *logging.Logger) *FleetHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &FleetHandler{
		vehicles: vehicles,
		bookings: appts,
		logger:   logger.Component("fleet_handler"),
	}
}

// GetState handles GET /fleet/{vehicleID}/state.
func (h *FleetHandler) GetState(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")

	snap, err := h.vehicles.Get(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, fleet.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		h.logger.Error("vehicle lookup failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "vehicle lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GetAppointment handles GET /fleet/{vehicleID}/appointment.
func (h *FleetHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")

	conf, err := h.bookings.GetByVehicle(r.Context(), vehicleID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "no appointment for vehicle")
			return
		}
		h.logger.Error("appointment lookup failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "appointment lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, conf)
}
