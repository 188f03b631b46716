// Package agents provides the built-in collaborator implementations: a
// threshold analyzer, a rule-based failure predictor, voice agents
// (template and Gemini-backed), a slot scheduler, a feedback agent, and a
// manufacturing RCA submitter. Each satisfies one of the orchestrator's
// ports and can be swapped independently.
package agents

import (
	"context"

	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Threshold constants for the rule analyzer.
const (
	engineTempThreshold  = 105.0
	engineTempHighMark   = 110.0
	brakePadThresholdMM  = 3.0
	brakePadHighMarkMM   = 2.0
	oilQualityThreshold  = 30.0
	oilQualityHighMark   = 20.0
	rpmThreshold        = 4000.0
)

// RuleAnalyzer flags out-of-range telemetry readings against fixed
// thresholds. Zero-valued brake pad and oil readings are treated as
// unreported and never flagged.
type RuleAnalyzer struct {
	logger *logging.Logger
}

func NewRuleAnalyzer(logger *logging.Logger) *RuleAnalyzer {
	return &RuleAnalyzer{logger: logger.Component("analyzer")}
}

func (a *RuleAnalyzer) Analyze(_ context.Context, sample telemetry.Sample) (*telemetry.AnomalyReport, error) {
	anomalies := make(map[string]telemetry.Anomaly)

	if sample.EngineTempC > engineTempThreshold {
		sev := "medium"
		if sample.EngineTempC > engineTempHighMark {
			sev = "high"
		}
		anomalies["engine_temp"] = telemetry.Anomaly{
			Value: sample.EngineTempC, Threshold: engineTempThreshold, Severity: sev,
		}
	}
	if sample.BrakePadMM > 0 && sample.BrakePadMM < brakePadThresholdMM {
		sev := "medium"
		if sample.BrakePadMM < brakePadHighMarkMM {
			sev = "high"
		}
		anomalies["brake_pad"] = telemetry.Anomaly{
			Value: sample.BrakePadMM, Threshold: brakePadThresholdMM, Severity: sev,
		}
	}
	if sample.OilQualityPct > 0 && sample.OilQualityPct < oilQualityThreshold {
		sev := "medium"
		if sample.OilQualityPct < oilQualityHighMark {
			sev = "high"
		}
		anomalies["oil_quality"] = telemetry.Anomaly{
			Value: sample.OilQualityPct, Threshold: oilQualityThreshold, Severity: sev,
		}
	}
	if sample.RPM > rpmThreshold {
		anomalies["high_rpm"] = telemetry.Anomaly{
			Value: sample.RPM, Threshold: rpmThreshold, Severity: "medium",
		}
	}

	report := &telemetry.AnomalyReport{
		Status:        "completed",
		Anomalies:     anomalies,
		AnomalyCount:  len(anomalies),
		OverallHealth: overallHealth(anomalies),
	}
	a.logger.Info("analysis completed", "vehicle_id", sample.VehicleID,
		"anomaly_count", report.AnomalyCount, "overall_health", report.OverallHealth)
	return report, nil
}

func overallHealth(anomalies map[string]telemetry.Anomaly) string {
	if len(anomalies) == 0 {
		return "good"
	}
	for _, a := range anomalies {
		if a.Severity == "high" {
			return "critical"
		}
	}
	return "degraded"
}
