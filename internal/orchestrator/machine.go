package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/driveline-ai/fleetguard/internal/audit"
	"github.com/driveline-ai/fleetguard/internal/observability/metrics"
	"github.com/driveline-ai/fleetguard/internal/risk"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Step identifies one workflow node. Transitions only ever move forward;
// there are no cycles in the graph.
type Step string

const (
	StepAnalyze         Step = "analyze"
	StepPredict         Step = "predict"
	StepCraftScript     Step = "craft_script"
	StepCallOwner       Step = "call_owner"
	StepPropose         Step = "propose_appointment"
	StepConfirm         Step = "confirm_appointment"
	StepRequestFeedback Step = "request_feedback"
	StepSubmitRCA       Step = "submit_rca"
	StepLogLowRisk      Step = "log_low_risk"
	StepEnd             Step = "end"
)

var (
	errNilReport      = errors.New("orchestrator: analyzer returned nil report")
	errNilScript      = errors.New("orchestrator: voice agent returned nil script")
	errNilProposal    = errors.New("orchestrator: scheduler returned nil confirmation")
	errNilFeedbackAck = errors.New("orchestrator: feedback agent returned nil ack")
	errRCANotAccepted = errors.New("orchestrator: rca submission not accepted")
	errUnknownStep    = errors.New("orchestrator: unknown step")
)

// SnapshotWriter persists the post-run per-vehicle summary. Implemented by
// the fleet store; optional, and failures never fail the run.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, sample telemetry.Sample, issue *Issue, at time.Time) error
}

// BookingWriter persists confirmed appointments. Optional, best-effort.
type BookingWriter interface {
	SaveBooking(ctx context.Context, confirmation AppointmentConfirmation) error
}

// Orchestrator drives one telemetry sample through the workflow graph,
// recording every collaborator access with the audit monitor and
// accumulating results in a Ledger.
type Orchestrator struct {
	ports       Collaborators
	monitor     *audit.Monitor
	snapshots   SnapshotWriter
	bookings    BookingWriter
	metrics     *metrics.OrchestratorMetrics
	logger      *logging.Logger
	tracer      trace.Tracer
	callTimeout time.Duration
}

// Option customizes orchestrator construction.
type Option func(*Orchestrator)

// WithCallTimeout bounds each collaborator call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// WithSnapshotWriter persists a vehicle snapshot after every completed run.
func WithSnapshotWriter(w SnapshotWriter) Option {
	return func(o *Orchestrator) { o.snapshots = w }
}

// WithBookingWriter persists confirmed appointments.
func WithBookingWriter(w BookingWriter) Option {
	return func(o *Orchestrator) { o.bookings = w }
}

// WithMetrics attaches run and step metrics.
func WithMetrics(m *metrics.OrchestratorMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New validates that every port is present and builds the orchestrator.
func New(ports Collaborators, monitor *audit.Monitor, logger *logging.Logger, opts ...Option) (*Orchestrator, error) {
	missing := ""
	switch {
	case ports.Analyzer == nil:
		missing = "analyzer"
	case ports.Predictor == nil:
		missing = "predictor"
	case ports.Voice == nil:
		missing = "voice"
	case ports.Scheduler == nil:
		missing = "scheduler"
	case ports.Feedback == nil:
		missing = "feedback"
	case ports.RCA == nil:
		missing = "rca"
	}
	if missing != "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingCollaborator, missing)
	}
	if monitor == nil {
		monitor = audit.NewMonitor(nil, logger)
	}
	o := &Orchestrator{
		ports:   ports,
		monitor: monitor,
		logger:  logger.Component("orchestrator"),
		tracer:  otel.Tracer("fleetguard/orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// runState carries the mutable working set of one run between steps.
type runState struct {
	sample       telemetry.Sample
	tier         risk.Tier
	issue        *Issue
	report       *telemetry.AnomalyReport
	script       *VoiceScript
	accepted     *bool
	proposal     *AppointmentProposal
	confirmation *AppointmentConfirmation
	ledger       Ledger
}

func (s *runState) customerAccepted() bool {
	return s.accepted != nil && *s.accepted
}

// Run executes the full workflow for one sample and returns the ledger.
// On failure the partial ledger is discarded and a StepError identifies
// the failing step.
func (o *Orchestrator) Run(ctx context.Context, sample telemetry.Sample) (*Ledger, error) {
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	sample.Normalize()

	runID := uuid.NewString()
	ctx, span := o.tracer.Start(ctx, "orchestrator.run", trace.WithAttributes(
		attribute.String("vehicle.id", sample.VehicleID),
		attribute.String("run.id", runID),
	))
	defer span.End()

	st := &runState{
		sample: sample,
		ledger: Ledger{RunID: runID, VehicleID: sample.VehicleID},
	}
	o.logger.Info("run started", "run_id", runID, "vehicle_id", sample.VehicleID)

	for step := StepAnalyze; step != StepEnd; {
		started := time.Now()
		next, err := o.exec(ctx, st, step)
		o.metrics.ObserveStepLatency(string(step), time.Since(started).Seconds())
		if err != nil {
			o.metrics.ObserveRun(st.tier.String(), "failed")
			o.logger.Error("run failed", "run_id", runID, "step", string(step), "error", err)
			return nil, &StepError{RunID: runID, VehicleID: sample.VehicleID, Step: step, Err: err}
		}
		step = next
	}

	span.SetAttributes(attribute.String("risk.tier", st.tier.String()))
	o.metrics.ObserveRun(st.tier.String(), "completed")
	o.saveSnapshot(ctx, st)
	o.logger.Info("run completed", "run_id", runID,
		"vehicle_id", sample.VehicleID, "risk_level", st.tier.String())
	return &st.ledger, nil
}

func (o *Orchestrator) exec(ctx context.Context, st *runState, step Step) (Step, error) {
	switch step {
	case StepAnalyze:
		return o.analyze(ctx, st)
	case StepPredict:
		return o.predict(ctx, st)
	case StepCraftScript:
		return o.craftScript(ctx, st)
	case StepCallOwner:
		return o.callOwner(ctx, st)
	case StepPropose:
		return o.propose(ctx, st)
	case StepConfirm:
		return o.confirm(ctx, st)
	case StepRequestFeedback:
		return o.requestFeedback(ctx, st)
	case StepSubmitRCA:
		return o.submitRCA(ctx, st)
	case StepLogLowRisk:
		return o.logLowRisk(st)
	default:
		return StepEnd, fmt.Errorf("%w: %s", errUnknownStep, step)
	}
}

// callCtx bounds a single collaborator call when a timeout is configured.
func (o *Orchestrator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.callTimeout)
}

func (o *Orchestrator) analyze(ctx context.Context, st *runState) (Step, error) {
	o.monitor.Log(ctx, "data", "read", "telemetry:read",
		map[string]any{"vehicle_id": st.sample.VehicleID})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	report, err := o.ports.Analyzer.Analyze(cctx, st.sample)
	if err != nil {
		return StepEnd, err
	}
	if report == nil {
		return StepEnd, errNilReport
	}
	st.report = report
	st.ledger.Analysis = report
	return StepPredict, nil
}

func (o *Orchestrator) predict(ctx context.Context, st *runState) (Step, error) {
	o.monitor.Log(ctx, "diagnosis", "write", "predictions:write",
		map[string]any{"vehicle_id": st.sample.VehicleID})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	issue, err := o.ports.Predictor.Predict(cctx, st.sample)
	if err != nil {
		return StepEnd, err
	}
	if err := issue.Validate(); err != nil {
		return StepEnd, err
	}
	st.issue = issue
	st.tier = risk.Classify(issue.RiskScore)
	st.ledger.Issue = issue
	st.ledger.RiskLevel = st.tier

	switch st.tier {
	case risk.TierCritical:
		o.monitor.Log(ctx, "master", "decision", "critical_path",
			map[string]any{"risk_score": issue.RiskScore})
		return StepCraftScript, nil
	case risk.TierHigh:
		o.monitor.Log(ctx, "master", "decision", "high_risk_path",
			map[string]any{"risk_score": issue.RiskScore})
		return StepCraftScript, nil
	case risk.TierMedium:
		o.monitor.Log(ctx, "master", "decision", "medium_risk_path",
			map[string]any{"risk_score": issue.RiskScore})
		return StepCraftScript, nil
	default:
		return StepLogLowRisk, nil
	}
}

func (o *Orchestrator) craftScript(ctx context.Context, st *runState) (Step, error) {
	o.monitor.Log(ctx, "voice", "read", "issue:read",
		map[string]any{"component": string(st.issue.Component)})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	script, err := o.ports.Voice.CraftScript(cctx, st.issue, &st.sample)
	if err != nil {
		return StepEnd, err
	}
	if script == nil {
		return StepEnd, errNilScript
	}
	st.script = script
	v := st.ledger.voice()
	v.Script = script
	v.Urgency = st.tier.Urgency()

	// MEDIUM tier ends with a passive notification and a 24h monitoring
	// window; the owner is never called.
	if st.tier == risk.TierMedium {
		v.NotificationSent = true
		st.ledger.Monitoring = &MonitoringOutcome{Status: "active", NextCheck: "24_hours"}
		return StepEnd, nil
	}
	return StepCallOwner, nil
}

func (o *Orchestrator) callOwner(ctx context.Context, st *runState) (Step, error) {
	o.monitor.Log(ctx, "voice", "action", "owner:call",
		map[string]any{"vehicle_id": st.sample.VehicleID})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	accepted, err := o.ports.Voice.CallOwner(cctx, st.sample.VehicleID, st.script)
	if err != nil {
		return StepEnd, err
	}
	st.accepted = &accepted
	st.ledger.voice().Accepted = &accepted

	switch {
	case st.tier == risk.TierCritical:
		// CRITICAL schedules regardless of the customer's answer.
		return StepPropose, nil
	case accepted:
		return StepPropose, nil
	default:
		st.ledger.voice().FollowUpRequired = true
		return StepSubmitRCA, nil
	}
}

func (o *Orchestrator) propose(ctx context.Context, st *runState) (Step, error) {
	o.monitor.Log(ctx, "scheduling", "read", "slots:read",
		map[string]any{"vehicle_id": st.sample.VehicleID})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	proposal, err := o.ports.Scheduler.Propose(cctx, st.sample.VehicleID)
	if err != nil {
		return StepEnd, err
	}
	st.proposal = proposal
	return StepConfirm, nil
}

func (o *Orchestrator) confirm(ctx context.Context, st *runState) (Step, error) {
	// No slots means the confirmation step passes through untouched and
	// feedback is skipped downstream.
	if st.proposal == nil || len(st.proposal.Options) == 0 {
		return StepRequestFeedback, nil
	}

	slot := st.proposal.Options[0]
	o.monitor.Log(ctx, "scheduling", "write", "booking:write",
		map[string]any{"vehicle_id": st.sample.VehicleID, "slot": slot})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	confirmation, err := o.ports.Scheduler.Confirm(cctx, st.sample.VehicleID, slot)
	if err != nil {
		return StepEnd, err
	}
	if confirmation == nil {
		return StepEnd, errNilProposal
	}
	st.confirmation = confirmation
	st.ledger.Scheduling = &SchedulingOutcome{
		Proposal:      st.proposal,
		Confirmation:  confirmation,
		Priority:      st.tier.Urgency(),
		AutoScheduled: st.tier == risk.TierCritical && !st.customerAccepted(),
	}

	if o.bookings != nil {
		if err := o.bookings.SaveBooking(ctx, *confirmation); err != nil {
			o.logger.Error("booking persist failed",
				"booking_id", confirmation.BookingID, "error", err)
		}
	}
	return StepRequestFeedback, nil
}

func (o *Orchestrator) requestFeedback(ctx context.Context, st *runState) (Step, error) {
	if st.confirmation == nil {
		return StepSubmitRCA, nil
	}

	o.monitor.Log(ctx, "feedback", "action", "prompt:create", map[string]any{
		"booking_id": st.confirmation.BookingID,
		"vehicle_id": st.sample.VehicleID,
	})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	ack, err := o.ports.Feedback.RequestFeedback(cctx, st.confirmation.BookingID, st.sample.VehicleID)
	if err != nil {
		return StepEnd, err
	}
	if ack == nil {
		return StepEnd, errNilFeedbackAck
	}
	st.ledger.Feedback = ack
	return StepSubmitRCA, nil
}

func (o *Orchestrator) submitRCA(ctx context.Context, st *runState) (Step, error) {
	insight := buildRCAInsight(st.sample, st.issue, st.report, st.tier)
	o.monitor.Log(ctx, "mfg", "write", "rca:write",
		map[string]any{"title": insight.Title})

	cctx, cancel := o.callCtx(ctx)
	defer cancel()
	ok, err := o.ports.RCA.SubmitRCA(cctx, insight)
	if err != nil {
		return StepEnd, err
	}
	if !ok {
		return StepEnd, errRCANotAccepted
	}
	st.ledger.RCA = insight
	return StepEnd, nil
}

func (o *Orchestrator) logLowRisk(st *runState) (Step, error) {
	declined := false
	v := st.ledger.voice()
	v.Accepted = &declined
	v.Reason = "Risk below engagement threshold"
	o.logger.Info("low risk, no engagement",
		"vehicle_id", st.sample.VehicleID, "risk_score", st.issue.RiskScore)
	return StepEnd, nil
}

func (o *Orchestrator) saveSnapshot(ctx context.Context, st *runState) {
	if o.snapshots == nil {
		return
	}
	if err := o.snapshots.SaveSnapshot(ctx, st.sample, st.issue, time.Now().UTC()); err != nil {
		o.logger.Error("vehicle snapshot persist failed",
			"vehicle_id", st.sample.VehicleID, "error", err)
	}
}
