package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline-ai/fleetguard/internal/audit"
	"github.com/driveline-ai/fleetguard/internal/risk"
	"github.com/driveline-ai/fleetguard/internal/telemetry"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// scriptedPorts implements every collaborator with canned answers so tests
// can steer the workflow through any branch.
type scriptedPorts struct {
	mu sync.Mutex

	score   float64
	accept  bool
	options []string

	predictErr error
	confirmErr error

	callCount    int
	feedbackReqs int
	rcaInsights  []*RCAInsight
}

func (p *scriptedPorts) Analyze(_ context.Context, sample telemetry.Sample) (*telemetry.AnomalyReport, error) {
	return &telemetry.AnomalyReport{
		Status: "completed",
		Anomalies: map[string]telemetry.Anomaly{
			"engine_temp": {Value: sample.EngineTempC, Threshold: 105, Severity: "high"},
		},
		AnomalyCount:  1,
		OverallHealth: "degraded",
	}, nil
}

func (p *scriptedPorts) Predict(_ context.Context, sample telemetry.Sample) (*Issue, error) {
	if p.predictErr != nil {
		return nil, p.predictErr
	}
	return &Issue{
		VehicleID:   sample.VehicleID,
		Component:   ComponentEngine,
		RiskScore:   p.score,
		HorizonDays: 7,
		Confidence:  0.8,
		Rationale:   "elevated engine temperature",
	}, nil
}

func (p *scriptedPorts) CraftScript(_ context.Context, issue *Issue, sample *telemetry.Sample) (*VoiceScript, error) {
	return &VoiceScript{
		VehicleID:            sample.VehicleID,
		Script:               "Hello, this is your service center.",
		Urgency:              risk.Classify(issue.RiskScore).Urgency(),
		EstimatedDurationSec: 45,
	}, nil
}

func (p *scriptedPorts) CallOwner(_ context.Context, _ string, _ *VoiceScript) (bool, error) {
	p.mu.Lock()
	p.callCount++
	p.mu.Unlock()
	return p.accept, nil
}

func (p *scriptedPorts) Propose(_ context.Context, vehicleID string) (*AppointmentProposal, error) {
	return &AppointmentProposal{
		VehicleID: vehicleID,
		Options:   p.options,
		Center:    "AutoCare Service Center - Downtown",
	}, nil
}

func (p *scriptedPorts) Confirm(_ context.Context, vehicleID, slot string) (*AppointmentConfirmation, error) {
	if p.confirmErr != nil {
		return nil, p.confirmErr
	}
	return &AppointmentConfirmation{
		VehicleID:  vehicleID,
		ChosenSlot: slot,
		Center:     "AutoCare Service Center - Downtown",
		BookingID:  "BK-" + vehicleID + "-1234",
	}, nil
}

func (p *scriptedPorts) RequestFeedback(_ context.Context, bookingID, vehicleID string) (*FeedbackAck, error) {
	p.mu.Lock()
	p.feedbackReqs++
	p.mu.Unlock()
	return &FeedbackAck{
		BookingID:      bookingID,
		VehicleID:      vehicleID,
		Status:         "requested",
		DeliveryMethod: "sms",
		Incentive:      "10% discount on next service",
		Timestamp:      time.Now().UTC(),
	}, nil
}

func (p *scriptedPorts) SubmitRCA(_ context.Context, insight *RCAInsight) (bool, error) {
	p.mu.Lock()
	p.rcaInsights = append(p.rcaInsights, insight)
	p.mu.Unlock()
	return true, nil
}

func (p *scriptedPorts) collaborators() Collaborators {
	return Collaborators{
		Analyzer:  p,
		Predictor: p,
		Voice:     p,
		Scheduler: p,
		Feedback:  p,
		RCA:       p,
	}
}

func testSample() telemetry.Sample {
	return telemetry.Sample{
		VehicleID:     "VH-1001",
		VehicleModel:  "Atlas X5",
		Timestamp:     time.Now().UTC(),
		MileageKM:     48210,
		EngineTempC:   112.5,
		RPM:           3100,
		BrakePadMM:    6.1,
		OilQualityPct: 22,
	}
}

func newTestOrchestrator(t *testing.T, ports *scriptedPorts, opts ...Option) (*Orchestrator, *audit.Stream) {
	t.Helper()
	stream := audit.NewStream(0)
	monitor := audit.NewMonitor(stream, logging.New("error"))
	o, err := New(ports.collaborators(), monitor, logging.New("error"), opts...)
	require.NoError(t, err)
	return o, stream
}

func TestNewRequiresEveryCollaborator(t *testing.T) {
	ports := &scriptedPorts{}
	c := ports.collaborators()
	c.Voice = nil
	_, err := New(c, nil, logging.New("error"))
	require.ErrorIs(t, err, ErrMissingCollaborator)
	assert.Contains(t, err.Error(), "voice")
}

func TestRunRejectsInvalidSample(t *testing.T) {
	ports := &scriptedPorts{score: 0.5}
	o, _ := newTestOrchestrator(t, ports)

	_, err := o.Run(context.Background(), telemetry.Sample{})
	require.ErrorIs(t, err, telemetry.ErrMissingVehicleID)
}

func TestRunLowRiskRecordsNoEngagement(t *testing.T) {
	ports := &scriptedPorts{score: 0.2}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	assert.Equal(t, risk.TierLow, ledger.RiskLevel)
	require.NotNil(t, ledger.Voice)
	require.NotNil(t, ledger.Voice.Accepted)
	assert.False(t, *ledger.Voice.Accepted)
	assert.Equal(t, "Risk below engagement threshold", ledger.Voice.Reason)
	assert.Nil(t, ledger.Scheduling)
	assert.Nil(t, ledger.RCA)
	assert.Equal(t, 0, ports.callCount)
}

func TestRunMediumNotifiesWithoutCalling(t *testing.T) {
	ports := &scriptedPorts{score: 0.5}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	assert.Equal(t, risk.TierMedium, ledger.RiskLevel)
	require.NotNil(t, ledger.Voice)
	assert.True(t, ledger.Voice.NotificationSent)
	assert.Nil(t, ledger.Voice.Accepted)
	assert.NotNil(t, ledger.Voice.Script)
	require.NotNil(t, ledger.Monitoring)
	assert.Equal(t, "active", ledger.Monitoring.Status)
	assert.Equal(t, "24_hours", ledger.Monitoring.NextCheck)
	assert.Nil(t, ledger.Scheduling)
	assert.Nil(t, ledger.RCA)
	assert.Equal(t, 0, ports.callCount)
}

func TestRunCriticalSchedulesDespiteDecline(t *testing.T) {
	ports := &scriptedPorts{score: 0.85, accept: false, options: []string{"slot-a", "slot-b"}}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	assert.Equal(t, risk.TierCritical, ledger.RiskLevel)
	assert.Equal(t, 1, ports.callCount)
	require.NotNil(t, ledger.Scheduling)
	assert.True(t, ledger.Scheduling.AutoScheduled)
	require.NotNil(t, ledger.Scheduling.Confirmation)
	assert.Equal(t, "slot-a", ledger.Scheduling.Confirmation.ChosenSlot)
	assert.Equal(t, "critical", ledger.Scheduling.Priority)
	require.NotNil(t, ledger.Voice)
	assert.False(t, ledger.Voice.FollowUpRequired)
	assert.NotNil(t, ledger.Feedback)
	assert.NotNil(t, ledger.RCA)
}

func TestRunHighAcceptedBooksWithoutAutoSchedule(t *testing.T) {
	ports := &scriptedPorts{score: 0.65, accept: true, options: []string{"slot-a"}}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	assert.Equal(t, risk.TierHigh, ledger.RiskLevel)
	require.NotNil(t, ledger.Scheduling)
	assert.False(t, ledger.Scheduling.AutoScheduled)
	assert.Equal(t, "high", ledger.Scheduling.Priority)
	assert.Equal(t, 1, ports.feedbackReqs)
	assert.NotNil(t, ledger.RCA)
}

func TestRunHighDeclinedSkipsToRCAWithFollowUp(t *testing.T) {
	ports := &scriptedPorts{score: 0.65, accept: false, options: []string{"slot-a"}}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	require.NotNil(t, ledger.Voice)
	assert.True(t, ledger.Voice.FollowUpRequired)
	assert.Nil(t, ledger.Scheduling)
	assert.Nil(t, ledger.Feedback)
	assert.Equal(t, 0, ports.feedbackReqs)
	require.NotNil(t, ledger.RCA)
	assert.Len(t, ports.rcaInsights, 1)
}

func TestRunConfirmsFirstProposedSlot(t *testing.T) {
	ports := &scriptedPorts{score: 0.9, accept: true, options: []string{"A", "B", "C"}}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	require.NotNil(t, ledger.Scheduling)
	require.NotNil(t, ledger.Scheduling.Confirmation)
	assert.Equal(t, "A", ledger.Scheduling.Confirmation.ChosenSlot)
}

func TestRunEmptyProposalSkipsBookingAndFeedback(t *testing.T) {
	ports := &scriptedPorts{score: 0.9, accept: true, options: nil}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	assert.Nil(t, ledger.Scheduling)
	assert.Nil(t, ledger.Feedback)
	assert.Equal(t, 0, ports.feedbackReqs)
	assert.NotNil(t, ledger.RCA)
}

func TestRunWrapsCollaboratorFailureInStepError(t *testing.T) {
	boom := errors.New("model unavailable")
	ports := &scriptedPorts{predictErr: boom}
	o, _ := newTestOrchestrator(t, ports)

	_, err := o.Run(context.Background(), testSample())
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepPredict, stepErr.Step)
	assert.Equal(t, "VH-1001", stepErr.VehicleID)
	assert.ErrorIs(t, err, boom)
}

func TestRunFailsOnOutOfRangeRiskScore(t *testing.T) {
	ports := &scriptedPorts{score: 1.3}
	o, _ := newTestOrchestrator(t, ports)

	_, err := o.Run(context.Background(), testSample())
	require.ErrorIs(t, err, ErrRiskScoreOutOfRange)
}

func TestRunRecordsAuditTrailWithoutAlerts(t *testing.T) {
	ports := &scriptedPorts{score: 0.85, accept: true, options: []string{"slot-a"}}
	o, stream := newTestOrchestrator(t, ports)

	_, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	events := stream.Events(0)
	resources := make([]string, 0, len(events))
	for _, ev := range events {
		resources = append(resources, ev.Actor+"/"+ev.Resource)
	}
	assert.Contains(t, resources, "data/telemetry:read")
	assert.Contains(t, resources, "diagnosis/predictions:write")
	assert.Contains(t, resources, "master/critical_path")
	assert.Contains(t, resources, "voice/issue:read")
	assert.Contains(t, resources, "voice/owner:call")
	assert.Contains(t, resources, "scheduling/slots:read")
	assert.Contains(t, resources, "scheduling/booking:write")
	assert.Contains(t, resources, "feedback/prompt:create")
	assert.Contains(t, resources, "mfg/rca:write")
	assert.Empty(t, stream.Alerts(0))
}

type capturingSnapshotWriter struct {
	mu    sync.Mutex
	saved []string
}

func (w *capturingSnapshotWriter) SaveSnapshot(_ context.Context, sample telemetry.Sample, _ *Issue, _ time.Time) error {
	w.mu.Lock()
	w.saved = append(w.saved, sample.VehicleID)
	w.mu.Unlock()
	return nil
}

type capturingBookingWriter struct {
	mu    sync.Mutex
	saved []AppointmentConfirmation
}

func (w *capturingBookingWriter) SaveBooking(_ context.Context, c AppointmentConfirmation) error {
	w.mu.Lock()
	w.saved = append(w.saved, c)
	w.mu.Unlock()
	return nil
}

func TestRunPersistsSnapshotAndBooking(t *testing.T) {
	ports := &scriptedPorts{score: 0.85, accept: true, options: []string{"slot-a"}}
	snaps := &capturingSnapshotWriter{}
	books := &capturingBookingWriter{}
	o, _ := newTestOrchestrator(t, ports,
		WithSnapshotWriter(snaps), WithBookingWriter(books))

	_, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	require.Len(t, snaps.saved, 1)
	assert.Equal(t, "VH-1001", snaps.saved[0])
	require.Len(t, books.saved, 1)
	assert.Equal(t, "slot-a", books.saved[0].ChosenSlot)
}

func TestRunEndToEndCriticalLedgerShape(t *testing.T) {
	ports := &scriptedPorts{score: 0.85, accept: false, options: []string{"slot-a", "slot-b", "slot-c"}}
	o, _ := newTestOrchestrator(t, ports)

	ledger, err := o.Run(context.Background(), testSample())
	require.NoError(t, err)

	assert.NotEmpty(t, ledger.RunID)
	assert.Equal(t, "VH-1001", ledger.VehicleID)
	assert.NotNil(t, ledger.Analysis)
	assert.NotNil(t, ledger.Issue)
	assert.Equal(t, risk.TierCritical, ledger.RiskLevel)
	assert.NotNil(t, ledger.Voice)
	assert.NotNil(t, ledger.Scheduling)
	assert.NotNil(t, ledger.Feedback)
	require.NotNil(t, ledger.RCA)
	assert.Equal(t, "URGENT: Issue service bulletin", ledger.RCA.Actions[0])
}
