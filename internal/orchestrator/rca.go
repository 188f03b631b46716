package orchestrator

import (
	"fmt"
	"strings"

	"github.com/driveline-ai/fleetguard/internal/risk"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
)

// componentActions maps known components to their fixed remediation steps.
// Order inside each list is significant and covered by golden tests.
var componentActions = map[Component][]string{
	ComponentTransmission: {
		"Review transmission fluid supplier quality",
		"Check clutch pack torque specifications",
		"Analyze gear wear patterns across fleet",
	},
	ComponentBrakeSystem: {
		"Inspect brake pad material batch",
		"Review hydraulic pressure calibration",
		"Check ABS sensor correlation",
	},
	ComponentEngine: {
		"Analyze oil quality and intervals",
		"Review ECU software version",
		"Check turbocharger supplier quality",
	},
	ComponentBattery: {
		"Review charging cycle patterns",
		"Check BMS firmware version",
		"Analyze temperature exposure",
	},
}

const (
	urgentBulletinAction  = "URGENT: Issue service bulletin"
	fleetInspectionAction = "Emergency fleet inspection"
	updateModelAction     = "Update predictive model with case"
)

// buildRCAInsight assembles the manufacturing report from the run's issue,
// anomaly set, and tier.
func buildRCAInsight(sample telemetry.Sample, issue *Issue, report *telemetry.AnomalyReport, tier risk.Tier) *RCAInsight {
	anomalyKeys := report.AnomalyKeys()
	anomalyList := "None"
	if len(anomalyKeys) > 0 {
		anomalyList = strings.Join(anomalyKeys, ", ")
	}

	return &RCAInsight{
		Title: fmt.Sprintf("[%s] %s alerts - %s", tier, issue.Component, sample.VehicleModel),
		Summary: fmt.Sprintf(
			"Vehicle %s (%s) shows %s risk %.2f. Anomalies: %s. Days to failure: %d. Mileage: %vkm.",
			sample.VehicleID, sample.VehicleModel, issue.Component, issue.RiskScore,
			anomalyList, issue.HorizonDays, sample.MileageKM,
		),
		Actions: generateRCAActions(issue, tier),
	}
}

// generateRCAActions produces the ordered corrective-action list: component
// actions (or the generic fallback), CRITICAL bulletin wrapping, and the
// trailing model-update action.
func generateRCAActions(issue *Issue, tier risk.Tier) []string {
	var actions []string

	comp := Component(strings.ToLower(string(issue.Component)))
	if fixed, ok := componentActions[comp]; ok {
		actions = append(actions, fixed...)
	} else {
		actions = append(actions,
			fmt.Sprintf("Investigate %s supplier", issue.Component),
			fmt.Sprintf("Review %s assembly procedures", issue.Component),
		)
	}

	if tier == risk.TierCritical {
		actions = append([]string{urgentBulletinAction}, actions...)
		actions = append(actions, fleetInspectionAction)
	}

	actions = append(actions, updateModelAction)
	return actions
}
