package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/driveline-ai/fleetguard/internal/audit"
	"github.com/driveline-ai/fleetguard/internal/ingest"
	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

const responseAlertTail = 5

// Runner drives one telemetry sample through the workflow.
type Runner interface {
	Run(ctx context.Context, sample telemetry.Sample) (*orchestrator.Ledger, error)
}

// JobEnqueuer publishes a sample for asynchronous processing.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, sample telemetry.Sample) (string, error)
}

// IngestHandler serves synchronous and queued telemetry intake.
type IngestHandler struct {
	runner    Runner
	publisher JobEnqueuer
	jobs      ingest.JobRecorder
	stream    *audit.Stream
	logger    *logging.Logger
}

// NewIngestHandler creates the intake handler. Publisher and job recorder
// are optional; without them the async endpoints return 503.
func NewIngestHandler(runner Runner, publisher JobEnqueuer, jobs ingest.JobRecorder, stream *audit.Stream, logger *logging.Logger) *IngestHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestHandler{
		runner:    runner,
		publisher: publisher,
		jobs:      jobs,
		stream:    stream,
		logger:    logger.Component("ingest_handler"),
	}
}

// IngestResponse is the synchronous ingestion reply: the full run ledger
// plus the most recent audit alerts.
type IngestResponse struct {
	Ledger       *orchestrator.Ledger `json:"ledger"`
	RecentAlerts []audit.Alert        `json:"recent_alerts"`
}

// Ingest handles POST /ingest/telemetry.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	sample, ok := h.decodeSample(w, r)
	if !ok {
		return
	}

	ledger, err := h.runner.Run(r.Context(), sample)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("telemetry run failed", "vehicle_id", sample.VehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "workflow run failed")
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Ledger:       ledger,
		RecentAlerts: h.recentAlerts(),
	})
}

// IngestAsync handles POST /ingest/telemetry/async.
func (h *IngestHandler) IngestAsync(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "async ingestion not configured")
		return
	}
	sample, ok := h.decodeSample(w, r)
	if !ok {
		return
	}

	jobID, err := h.publisher.Enqueue(r.Context(), sample)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to enqueue telemetry", "vehicle_id", sample.VehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID, "status": string(ingest.JobStatusPending)})
}

// GetJob handles GET /ingest/jobs/{jobID}.
func (h *IngestHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "job tracking not configured")
		return
	}
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, ingest.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error("job lookup failed", "job_id", jobID, "error", err)
		writeError(w, http.StatusInternalServerError, "job lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *IngestHandler) decodeSample(w http.ResponseWriter, r *http.Request) (telemetry.Sample, bool) {
	var sample telemetry.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return telemetry.Sample{}, false
	}
	if err := sample.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return telemetry.Sample{}, false
	}
	return sample, true
}

func (h *IngestHandler) recentAlerts() []audit.Alert {
	if h.stream == nil {
		return nil
	}
	return h.stream.Alerts(responseAlertTail)
}

func isValidationError(err error) bool {
	return errors.Is(err, telemetry.ErrMissingVehicleID) ||
		errors.Is(err, telemetry.ErrNegativeMileage) ||
		errors.Is(err, orchestrator.ErrRiskScoreOutOfRange) ||
		errors.Is(err, orchestrator.ErrConfidenceOutOfRange) ||
		errors.Is(err, orchestrator.ErrNegativeHorizon) ||
		errors.Is(err, orchestrator.ErrUnknownComponent)
}
