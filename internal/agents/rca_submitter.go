package agents

import (
	"context"

	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// LogRCASubmitter delivers root-cause insights by recording them in the
// structured log, standing in for the manufacturing quality intake.
type LogRCASubmitter struct {
	logger *logging.Logger
}

func NewLogRCASubmitter(logger *logging.Logger) *LogRCASubmitter {
	return &LogRCASubmitter{logger: logger.Component("rca")}
}

func (s *LogRCASubmitter) SubmitRCA(_ context.Context, insight *orchestrator.RCAInsight) (bool, error) {
	s.logger.Info("rca insight submitted",
		"title", insight.Title,
		"action_count", len(insight.Actions),
		"summary", insight.Summary)
	return true, nil
}
