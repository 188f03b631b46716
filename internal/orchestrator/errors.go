package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrNilIssue indicates the predictor returned no issue.
	ErrNilIssue = errors.New("orchestrator: predictor returned nil issue")
	// ErrRiskScoreOutOfRange indicates a risk score outside [0,1].
	ErrRiskScoreOutOfRange = errors.New("orchestrator: risk score outside [0,1]")
	// ErrConfidenceOutOfRange indicates a confidence outside [0,1].
	ErrConfidenceOutOfRange = errors.New("orchestrator: confidence outside [0,1]")
	// ErrNegativeHorizon indicates a negative failure horizon.
	ErrNegativeHorizon = errors.New("orchestrator: horizon_days cannot be negative")
	// ErrUnknownComponent indicates a component outside the fixed enumeration.
	ErrUnknownComponent = errors.New("orchestrator: unknown component")
	// ErrMissingCollaborator indicates the orchestrator was constructed
	// without one of its required ports.
	ErrMissingCollaborator = errors.New("orchestrator: missing collaborator")
)

// StepError identifies which workflow step of which run failed, wrapping
// the underlying collaborator error so higher layers can log and retry.
type StepError struct {
	RunID     string
	VehicleID string
	Step      Step
	Err       error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("orchestrator: run %s step %s failed: %v", e.RunID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
