package agents

import (
	"context"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// RulePredictor maps telemetry readings to a predicted issue using a fixed
// rule table. Rules are evaluated top to bottom and the first match wins;
// a healthy sample falls through to a low-score engine baseline.
type RulePredictor struct {
	logger *logging.Logger
}

func NewRulePredictor(logger *logging.Logger) *RulePredictor {
	return &RulePredictor{logger: logger.Component("predictor")}
}

func (p *RulePredictor) Predict(_ context.Context, sample telemetry.Sample) (*orchestrator.Issue, error) {
	issue := p.match(sample)
	issue.VehicleID = sample.VehicleID
	p.logger.Info("issue predicted", "vehicle_id", sample.VehicleID,
		"component", string(issue.Component), "risk_score", issue.RiskScore,
		"horizon_days", issue.HorizonDays)
	return issue, nil
}

func (p *RulePredictor) match(sample telemetry.Sample) *orchestrator.Issue {
	switch {
	case sample.EngineTempC > engineTempHighMark,
		sample.OilQualityPct > 0 && sample.OilQualityPct < oilQualityHighMark:
		return &orchestrator.Issue{
			Component:   orchestrator.ComponentEngine,
			RiskScore:   0.85,
			HorizonDays: 7,
			Confidence:  0.92,
			Rationale:   "Engine overheating with degraded oil film",
		}
	case sample.BrakePadMM > 0 && sample.BrakePadMM < brakePadHighMarkMM:
		return &orchestrator.Issue{
			Component:   orchestrator.ComponentBrakeSystem,
			RiskScore:   0.90,
			HorizonDays: 3,
			Confidence:  0.95,
			Rationale:   "Brake pads worn below safety minimum",
		}
	case sample.BrakePadMM > 0 && sample.BrakePadMM < brakePadThresholdMM:
		return &orchestrator.Issue{
			Component:   orchestrator.ComponentBrakeSystem,
			RiskScore:   0.65,
			HorizonDays: 14,
			Confidence:  0.78,
			Rationale:   "Brake pads approaching replacement threshold",
		}
	case sample.OilQualityPct > 0 && sample.OilQualityPct < oilQualityThreshold:
		return &orchestrator.Issue{
			Component:   orchestrator.ComponentOil,
			RiskScore:   0.70,
			HorizonDays: 10,
			Confidence:  0.81,
			Rationale:   "Oil quality degraded past service interval",
		}
	case sample.HasDTC("P0562"):
		return &orchestrator.Issue{
			Component:   orchestrator.ComponentBattery,
			RiskScore:   0.75,
			HorizonDays: 5,
			Confidence:  0.85,
			Rationale:   "System voltage low (DTC P0562)",
		}
	default:
		return &orchestrator.Issue{
			Component:   orchestrator.ComponentEngine,
			RiskScore:   0.30,
			HorizonDays: 60,
			Confidence:  0.50,
			Rationale:   "No acute indicators; routine wear baseline",
		}
	}
}
