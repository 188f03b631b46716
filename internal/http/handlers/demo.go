package handlers

import (
	"net/http"
	"time"

	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// DemoHandler runs the canned critical-engine scenario end to end, for
// demos and smoke checks.
type DemoHandler struct {
	runner Runner
	logger *logging.Logger
}

func NewDemoHandler(runner Runner, logger *logging.Logger) *DemoHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DemoHandler{runner: runner, logger: logger.Component("demo_handler")}
}

// DemoSample is the fixed scenario: overheating engine with degraded oil,
// which classifies CRITICAL and exercises the full workflow.
func DemoSample() telemetry.Sample {
	return telemetry.Sample{
		VehicleID:     "VHC-DEMO",
		VehicleModel:  "Atlas X5",
		Timestamp:     time.Now().UTC(),
		MileageKM:     48210,
		EngineTempC:   112.5,
		RPM:           3100,
		BrakePadMM:    6.1,
		OilQualityPct: 22.0,
	}
}

// Run handles GET /demo.
func (h *DemoHandler) Run(w http.ResponseWriter, r *http.Request) {
	sample := DemoSample()
	ledger, err := h.runner.Run(r.Context(), sample)
	if err != nil {
		h.logger.Error("demo run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "demo run failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sample": sample,
		"ledger": ledger,
	})
}
