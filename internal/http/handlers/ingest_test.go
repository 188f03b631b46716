package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline-ai/fleetguard/internal/audit"
	"github.com/driveline-ai/fleetguard/internal/ingest"
	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/risk"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

type stubRunner struct {
	ledger *orchestrator.Ledger
	err    error
}

func (r *stubRunner) Run(_ context.Context, sample telemetry.Sample) (*orchestrator.Ledger, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.ledger != nil {
		return r.ledger, nil
	}
	return &orchestrator.Ledger{
		RunID:     "run-1",
		VehicleID: sample.VehicleID,
		RiskLevel: risk.TierCritical,
	}, nil
}

type stubEnqueuer struct {
	jobID string
	err   error
}

func (e *stubEnqueuer) Enqueue(_ context.Context, _ telemetry.Sample) (string, error) {
	return e.jobID, e.err
}

func TestIngestReturnsLedgerAndAlerts(t *testing.T) {
	stream := audit.NewStream(0)
	for i := 0; i < 7; i++ {
		stream.AppendAlert(audit.Alert{ID: "a", Severity: audit.SeverityMedium})
	}
	h := NewIngestHandler(&stubRunner{}, nil, nil, stream, logging.New("error"))

	body := `{"vehicle_id":"VH-1","engine_temp_c":112.5}`
	req := httptest.NewRequest(http.MethodPost, "/ingest/telemetry", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Ledger)
	assert.Equal(t, "VH-1", resp.Ledger.VehicleID)
	assert.Len(t, resp.RecentAlerts, 5)
}

func TestIngestRejectsBadBody(t *testing.T) {
	h := NewIngestHandler(&stubRunner{}, nil, nil, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/ingest/telemetry", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestRejectsMissingVehicleID(t *testing.T) {
	h := NewIngestHandler(&stubRunner{}, nil, nil, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/ingest/telemetry", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestRunFailure(t *testing.T) {
	h := NewIngestHandler(&stubRunner{err: errors.New("step failed")}, nil, nil, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/ingest/telemetry", strings.NewReader(`{"vehicle_id":"VH-1"}`))
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIngestAsyncAcceptsJob(t *testing.T) {
	h := NewIngestHandler(&stubRunner{}, &stubEnqueuer{jobID: "job-7"}, nil, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/ingest/telemetry/async", strings.NewReader(`{"vehicle_id":"VH-1"}`))
	rec := httptest.NewRecorder()
	h.IngestAsync(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "job-7", resp["job_id"])
	assert.Equal(t, "pending", resp["status"])
}

func TestIngestAsyncWithoutPublisher(t *testing.T) {
	h := NewIngestHandler(&stubRunner{}, nil, nil, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/ingest/telemetry/async", strings.NewReader(`{"vehicle_id":"VH-1"}`))
	rec := httptest.NewRecorder()
	h.IngestAsync(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetJobStatuses(t *testing.T) {
	jobs := ingest.NewMemoryJobStore()
	require.NoError(t, jobs.PutPending(context.Background(), &ingest.JobRecord{JobID: "job-1", VehicleID: "VH-1"}))
	h := NewIngestHandler(&stubRunner{}, nil, jobs, nil, logging.New("error"))

	r := chi.NewRouter()
	r.Get("/ingest/jobs/{jobID}", h.GetJob)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ingest/jobs/job-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var job ingest.JobRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, ingest.JobStatusPending, job.Status)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ingest/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
