// Package audit records every cross-component access made during
// orchestration runs, enforces per-actor resource allow-lists, and flags
// rate anomalies. Findings are observational: they never block the access
// that produced them.
package audit

import (
	"time"
)

// Severity grades an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Event is a single recorded access. Append-only, never mutated.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"ts"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Details   map[string]any `json:"details,omitempty"`
}

// Alert wraps an event with a severity and a reason.
type Alert struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Severity  Severity  `json:"severity"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason"`
	Event     Event     `json:"event"`
}
