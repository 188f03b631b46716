package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Sink receives a copy of every event and alert, for durable archival or
// external shipping. Sink failures are logged and never surface to callers.
type Sink interface {
	RecordEvent(ctx context.Context, ev Event) error
	RecordAlert(ctx context.Context, a Alert) error
}

// Spike detection parameters: more than spikeMaxAccesses accesses by one
// (actor, resource) pair inside spikeWindow raises a medium alert. Only the
// last windowKeep timestamps per pair are retained.
const (
	spikeWindow      = 3 * time.Second
	spikeMaxAccesses = 5
	windowKeep       = 10
)

// DefaultAllowList maps each actor to the resources it may touch.
func DefaultAllowList() map[string][]string {
	return map[string][]string{
		"data":       {"telemetry:read"},
		"diagnosis":  {"telemetry:read", "predictions:write"},
		"voice":      {"owner:contact", "owner:call", "issue:read", "summary:read"},
		"scheduling": {"slots:read", "booking:write"},
		"feedback":   {"owner:contact", "feedback:write", "prompt:create"},
		"mfg":        {"rca:write", "history:read"},
		"master": {
			"telemetry:read", "predictions:read", "owner:contact",
			"slots:read", "booking:write", "feedback:write", "rca:write",
			"critical_path", "high_risk_path", "medium_risk_path",
		},
	}
}

// Monitor observes every collaborator access. It appends to the shared
// stream unconditionally, raises a high alert when an actor touches a
// resource outside its allow-list, and a medium alert on access spikes.
type Monitor struct {
	stream *Stream
	allow  map[string][]string
	sinks  []Sink
	logger *logging.Logger
	now    func() time.Time

	mu     sync.Mutex
	window map[string][]time.Time
}

// MonitorOption customizes monitor behavior.
type MonitorOption func(*Monitor)

// WithAllowList replaces the default actor allow-list.
func WithAllowList(allow map[string][]string) MonitorOption {
	return func(m *Monitor) { m.allow = allow }
}

// WithSinks attaches durable sinks that receive every event and alert.
func WithSinks(sinks ...Sink) MonitorOption {
	return func(m *Monitor) { m.sinks = append(m.sinks, sinks...) }
}

// WithClock injects a time source, used by tests to simulate spikes.
func WithClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor creates a monitor writing to the given stream.
func NewMonitor(stream *Stream, logger *logging.Logger, opts ...MonitorOption) *Monitor {
	if stream == nil {
		stream = NewStream(0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	m := &Monitor{
		stream: stream,
		allow:  DefaultAllowList(),
		logger: logger.Component("audit"),
		now:    time.Now,
		window: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Stream returns the underlying stream for reporting surfaces.
func (m *Monitor) Stream() *Stream {
	return m.stream
}

// Log records one access. The access itself is never blocked: the returned
// event is informational and both checks are observation-only.
func (m *Monitor) Log(ctx context.Context, actor, action, resource string, details map[string]any) Event {
	ts := m.now().UTC()
	ev := Event{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Actor:     actor,
		Action:    action,
		Resource:  resource,
		Details:   details,
	}
	m.stream.AppendEvent(ev)
	m.ship(ctx, ev, nil)

	if !m.allowed(actor, resource) {
		alert := Alert{
			ID:        uuid.NewString(),
			Timestamp: ts,
			Severity:  SeverityHigh,
			Actor:     actor,
			Reason:    "Unauthorized resource: " + resource,
			Event:     ev,
		}
		m.stream.AppendAlert(alert)
		m.ship(ctx, Event{}, &alert)
		m.logger.Warn("unauthorized resource access", "actor", actor, "resource", resource)
	}

	if m.spiking(actor, resource, ts) {
		alert := Alert{
			ID:        uuid.NewString(),
			Timestamp: ts,
			Severity:  SeverityMedium,
			Actor:     actor,
			Reason:    "Spike in actions",
			Event:     ev,
		}
		m.stream.AppendAlert(alert)
		m.ship(ctx, Event{}, &alert)
		m.logger.Warn("access spike detected", "actor", actor, "resource", resource)
	}

	return ev
}

func (m *Monitor) allowed(actor, resource string) bool {
	for _, r := range m.allow[actor] {
		if r == resource {
			return true
		}
	}
	return false
}

// spiking appends ts to the (actor, resource) sliding window and reports
// whether more than spikeMaxAccesses of the retained timestamps fall inside
// spikeWindow of ts.
func (m *Monitor) spiking(actor, resource string, ts time.Time) bool {
	key := actor + ":" + resource

	m.mu.Lock()
	defer m.mu.Unlock()

	arr := append(m.window[key], ts)
	if len(arr) > windowKeep {
		arr = arr[len(arr)-windowKeep:]
	}
	m.window[key] = arr

	recent := 0
	for _, t := range arr {
		if ts.Sub(t) <= spikeWindow {
			recent++
		}
	}
	return recent > spikeMaxAccesses
}

func (m *Monitor) ship(ctx context.Context, ev Event, alert *Alert) {
	for _, sink := range m.sinks {
		var err error
		if alert != nil {
			err = sink.RecordAlert(ctx, *alert)
		} else {
			err = sink.RecordEvent(ctx, ev)
		}
		if err != nil {
			m.logger.Error("audit sink write failed", "error", err)
		}
	}
}
