package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline-ai/fleetguard/internal/audit"
	"github.com/driveline-ai/fleetguard/internal/bookings"
	"github.com/driveline-ai/fleetguard/internal/fleet"
	"github.com/driveline-ai/fleetguard/internal/http/handlers"
	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

type passthroughRunner struct{}

func (passthroughRunner) Run(_ context.Context, sample telemetry.Sample) (*orchestrator.Ledger, error) {
	return &orchestrator.Ledger{RunID: "run-1", VehicleID: sample.VehicleID}, nil
}

const adminSecret = "router-test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.New("error")
	stream := audit.NewStream(0)
	runner := passthroughRunner{}

	return New(&Config{
		Logger:          logger,
		Ingest:          handlers.NewIngestHandler(runner, nil, nil, stream, logger),
		Fleet:           handlers.NewFleetHandler(fleet.NewMemoryStore(), bookings.NewMemoryStore(), logger),
		Audit:           handlers.NewAuditHandler(stream),
		Demo:            handlers.NewDemoHandler(runner, logger),
		AdminAuthSecret: adminSecret,
	})
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(adminSecret))
	require.NoError(t, err)
	return signed
}

func TestRouterPublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest/telemetry",
		strings.NewReader(`{"vehicle_id":"VH-1"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/demo", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fleet/VH-1/state", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterAuditRequiresJWT(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audit/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/audit/events", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/audit/alerts", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
