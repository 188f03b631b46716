package orchestrator

import (
	"github.com/driveline-ai/fleetguard/internal/risk"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
)

// VoiceOutcome records the customer-engagement side of a run. Accepted is
// nil until a call was actually placed; MEDIUM-tier runs send a passive
// notification and never set it.
type VoiceOutcome struct {
	Script           *VoiceScript `json:"script,omitempty"`
	Accepted         *bool        `json:"accepted,omitempty"`
	Urgency          string       `json:"urgency,omitempty"`
	NotificationSent bool         `json:"notification_sent,omitempty"`
	FollowUpRequired bool         `json:"follow_up_required,omitempty"`
	Reason           string       `json:"reason,omitempty"`
}

// SchedulingOutcome records the proposal and, when slots existed, the
// confirmed booking. AutoScheduled is true when a CRITICAL-tier run booked
// despite the customer declining.
type SchedulingOutcome struct {
	Proposal      *AppointmentProposal     `json:"proposal,omitempty"`
	Confirmation  *AppointmentConfirmation `json:"confirmation,omitempty"`
	Priority      string                   `json:"priority,omitempty"`
	AutoScheduled bool                     `json:"auto_scheduled"`
}

// MonitoringOutcome marks a vehicle left under passive observation.
type MonitoringOutcome struct {
	Status    string `json:"status"`
	NextCheck string `json:"next_check"`
}

// Ledger is the accumulated, typed outcome of one orchestration run. Steps
// only ever fill fields; nothing is removed once set.
type Ledger struct {
	RunID      string                   `json:"run_id"`
	VehicleID  string                   `json:"vehicle_id"`
	Analysis   *telemetry.AnomalyReport `json:"analysis,omitempty"`
	Issue      *Issue                   `json:"issue,omitempty"`
	RiskLevel  risk.Tier                `json:"risk_level"`
	Voice      *VoiceOutcome            `json:"voice,omitempty"`
	Scheduling *SchedulingOutcome       `json:"scheduling,omitempty"`
	Feedback   *FeedbackAck             `json:"feedback,omitempty"`
	RCA        *RCAInsight              `json:"rca,omitempty"`
	Monitoring *MonitoringOutcome       `json:"monitoring,omitempty"`
}

// voice returns the ledger's voice outcome, allocating it on first use so
// steps can add fields without clobbering earlier ones.
func (l *Ledger) voice() *VoiceOutcome {
	if l.Voice == nil {
		l.Voice = &VoiceOutcome{}
	}
	return l.Voice
}
