package agents

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/risk"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Acceptance probability per urgency level, used to simulate owner calls.
var acceptanceRates = map[string]float64{
	"critical": 0.90,
	"high":     0.75,
	"medium":   0.60,
}

const defaultAcceptanceRate = 0.45

// speaking rate used for the duration estimate, words per second
const wordsPerSecond = 2.5

// TemplateVoiceAgent builds owner-facing scripts from fixed templates and
// simulates call outcomes. The random source is injectable for tests.
type TemplateVoiceAgent struct {
	logger *logging.Logger
	randFn func() float64
}

// VoiceOption customizes the template voice agent.
type VoiceOption func(*TemplateVoiceAgent)

// WithRand injects the acceptance random source.
func WithRand(fn func() float64) VoiceOption {
	return func(a *TemplateVoiceAgent) { a.randFn = fn }
}

func NewTemplateVoiceAgent(logger *logging.Logger, opts ...VoiceOption) *TemplateVoiceAgent {
	a := &TemplateVoiceAgent{
		logger: logger.Component("voice"),
		randFn: rand.Float64,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *TemplateVoiceAgent) CraftScript(_ context.Context, issue *orchestrator.Issue, sample *telemetry.Sample) (*orchestrator.VoiceScript, error) {
	urgency := risk.Classify(issue.RiskScore).Urgency()
	text := buildScriptText(issue, sample, urgency)

	script := &orchestrator.VoiceScript{
		VehicleID:            issue.VehicleID,
		Script:               text,
		Urgency:              urgency,
		EstimatedDurationSec: estimateDuration(text),
	}
	a.logger.Info("script crafted", "vehicle_id", issue.VehicleID, "urgency", urgency)
	return script, nil
}

// CallOwner simulates placing the call; higher urgency scripts are accepted
// more often.
func (a *TemplateVoiceAgent) CallOwner(_ context.Context, vehicleID string, script *orchestrator.VoiceScript) (bool, error) {
	rate := defaultAcceptanceRate
	if script != nil {
		if r, ok := acceptanceRates[script.Urgency]; ok {
			rate = r
		}
	}
	accepted := a.randFn() < rate
	a.logger.Info("owner call simulated", "vehicle_id", vehicleID, "accepted", accepted)
	return accepted, nil
}

func buildScriptText(issue *orchestrator.Issue, sample *telemetry.Sample, urgency string) string {
	model := "your vehicle"
	if sample != nil && sample.VehicleModel != "" {
		model = sample.VehicleModel
	}

	var b strings.Builder
	switch urgency {
	case "critical":
		fmt.Fprintf(&b, "Hello, this is an urgent message from your %s service team. ", model)
		fmt.Fprintf(&b, "Our diagnostics indicate your %s requires immediate attention within %d days. ",
			issue.Component, issue.HorizonDays)
		b.WriteString("For your safety we strongly recommend scheduling service right away. ")
	case "high":
		fmt.Fprintf(&b, "Hello, this is your %s service team. ", model)
		fmt.Fprintf(&b, "We detected early signs of %s wear that should be serviced within %d days. ",
			issue.Component, issue.HorizonDays)
		b.WriteString("We would like to book a convenient appointment for you. ")
	default:
		fmt.Fprintf(&b, "Hello, this is your %s service team with a maintenance reminder. ", model)
		fmt.Fprintf(&b, "Your %s is showing gradual wear; consider servicing within %d days. ",
			issue.Component, issue.HorizonDays)
	}
	fmt.Fprintf(&b, "Reference: %s.", issue.Rationale)
	return b.String()
}

func estimateDuration(script string) int {
	words := len(strings.Fields(script))
	sec := int(float64(words) / wordsPerSecond)
	if sec < 10 {
		sec = 10
	}
	return sec
}
