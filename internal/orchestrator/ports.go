// Package orchestrator sequences the risk-triggered maintenance workflow:
// analysis, failure prediction, customer engagement, scheduling, feedback,
// and root-cause reporting. The concrete collaborators behind each step are
// injected at construction and are out of scope here.
package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/driveline-ai/fleetguard/internal/telemetry"
)

// Component is a predicted failing vehicle component.
type Component string

const (
	ComponentEngine       Component = "engine"
	ComponentBrakes       Component = "brakes"
	ComponentBattery      Component = "battery"
	ComponentInjector     Component = "injector"
	ComponentCoolant      Component = "coolant"
	ComponentOil          Component = "oil"
	ComponentTransmission Component = "transmission"
	ComponentBrakeSystem  Component = "brake_system"
)

var knownComponents = map[Component]struct{}{
	ComponentEngine: {}, ComponentBrakes: {}, ComponentBattery: {},
	ComponentInjector: {}, ComponentCoolant: {}, ComponentOil: {},
	ComponentTransmission: {}, ComponentBrakeSystem: {},
}

// Issue is the prediction collaborator's output: the component expected to
// fail, how risky and how soon, and why. Created once per run, read-only
// thereafter.
type Issue struct {
	VehicleID   string    `json:"vehicle_id"`
	Component   Component `json:"component"`
	RiskScore   float64   `json:"risk_score"`
	HorizonDays int       `json:"horizon_days"`
	Confidence  float64   `json:"confidence"`
	Rationale   string    `json:"rationale"`
}

// Validate rejects issues whose values fall outside their declared ranges.
// Out-of-range scores fail the run rather than being clamped silently.
func (i *Issue) Validate() error {
	if i == nil {
		return ErrNilIssue
	}
	if i.RiskScore < 0 || i.RiskScore > 1 {
		return ErrRiskScoreOutOfRange
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return ErrConfidenceOutOfRange
	}
	if i.HorizonDays < 0 {
		return ErrNegativeHorizon
	}
	if _, ok := knownComponents[Component(strings.ToLower(string(i.Component)))]; !ok {
		return ErrUnknownComponent
	}
	return nil
}

// VoiceScript is the generated customer-facing script with its urgency
// label and estimated speaking duration.
type VoiceScript struct {
	VehicleID            string `json:"vehicle_id"`
	Script               string `json:"script"`
	Urgency              string `json:"urgency"`
	EstimatedDurationSec int    `json:"estimated_duration_sec"`
}

// AppointmentProposal carries candidate service slots for a vehicle.
type AppointmentProposal struct {
	VehicleID string   `json:"vehicle_id"`
	Options   []string `json:"options"`
	Center    string   `json:"center"`
}

// AppointmentConfirmation binds one chosen slot to a booking identifier.
type AppointmentConfirmation struct {
	VehicleID  string `json:"vehicle_id"`
	ChosenSlot string `json:"chosen_slot"`
	Center     string `json:"center"`
	BookingID  string `json:"booking_id"`
}

// FeedbackAck acknowledges a feedback-survey request for a booking.
type FeedbackAck struct {
	BookingID      string    `json:"booking_id"`
	VehicleID      string    `json:"vehicle_id"`
	Status         string    `json:"status"`
	DeliveryMethod string    `json:"delivery_method"`
	Incentive      string    `json:"incentive,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// RCAInsight is the root-cause report submitted to manufacturing quality.
type RCAInsight struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Actions []string `json:"actions"`
}

// Analyzer turns a telemetry sample into an anomaly report.
type Analyzer interface {
	Analyze(ctx context.Context, sample telemetry.Sample) (*telemetry.AnomalyReport, error)
}

// Predictor turns a telemetry sample into a predicted issue.
type Predictor interface {
	Predict(ctx context.Context, sample telemetry.Sample) (*Issue, error)
}

// VoiceAgent crafts customer scripts and places calls.
type VoiceAgent interface {
	CraftScript(ctx context.Context, issue *Issue, sample *telemetry.Sample) (*VoiceScript, error)
	CallOwner(ctx context.Context, vehicleID string, script *VoiceScript) (bool, error)
}

// Scheduler proposes service slots and confirms bookings.
type Scheduler interface {
	Propose(ctx context.Context, vehicleID string) (*AppointmentProposal, error)
	Confirm(ctx context.Context, vehicleID, slot string) (*AppointmentConfirmation, error)
}

// FeedbackAgent requests a post-booking customer survey.
type FeedbackAgent interface {
	RequestFeedback(ctx context.Context, bookingID, vehicleID string) (*FeedbackAck, error)
}

// RCASubmitter delivers root-cause insights to manufacturing.
type RCASubmitter interface {
	SubmitRCA(ctx context.Context, insight *RCAInsight) (bool, error)
}

// Collaborators bundles the injected ports for orchestrator construction.
type Collaborators struct {
	Analyzer  Analyzer
	Predictor Predictor
	Voice     VoiceAgent
	Scheduler Scheduler
	Feedback  FeedbackAgent
	RCA       RCASubmitter
}
