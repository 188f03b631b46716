package handlers

import (
	"net/http"
	"strconv"

	"github.com/driveline-ai/fleetguard/internal/audit"
)

// AuditHandler dumps the in-process audit streams.
type AuditHandler struct {
	stream *audit.Stream
}

func NewAuditHandler(stream *audit.Stream) *AuditHandler {
	return &AuditHandler{stream: stream}
}

// Events handles GET /audit/events?limit=N.
func (h *AuditHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	events := h.stream.Events(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// Alerts handles GET /audit/alerts?limit=N.
func (h *AuditHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	alerts := h.stream.Alerts(limit)
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
