package audit

import "sync"

// Stream holds the two in-process append-only logs: events and alerts.
// Both are capped; once max entries accumulate the oldest are dropped so a
// long-lived process does not grow without bound.
type Stream struct {
	mu     sync.RWMutex
	max    int
	events []Event
	alerts []Alert
}

const defaultStreamMax = 10000

// NewStream creates a stream retaining at most max entries per log.
func NewStream(max int) *Stream {
	if max <= 0 {
		max = defaultStreamMax
	}
	return &Stream{max: max}
}

// AppendEvent adds an event, evicting the oldest entry when full.
func (s *Stream) AppendEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if len(s.events) > s.max {
		s.events = s.events[len(s.events)-s.max:]
	}
}

// AppendAlert adds an alert, evicting the oldest entry when full.
func (s *Stream) AppendAlert(a Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
	if len(s.alerts) > s.max {
		s.alerts = s.alerts[len(s.alerts)-s.max:]
	}
}

// Events returns up to limit of the most recent events, oldest first.
// limit <= 0 returns all retained events.
func (s *Stream) Events(limit int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.events) > limit {
		start = len(s.events) - limit
	}
	out := make([]Event, len(s.events)-start)
	copy(out, s.events[start:])
	return out
}

// Alerts returns up to limit of the most recent alerts, oldest first.
// limit <= 0 returns all retained alerts.
func (s *Stream) Alerts(limit int) []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.alerts) > limit {
		start = len(s.alerts) - limit
	}
	out := make([]Alert, len(s.alerts)-start)
	copy(out, s.alerts[start:])
	return out
}

// EventCount returns the number of retained events.
func (s *Stream) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// AlertCount returns the number of retained alerts.
func (s *Stream) AlertCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}
