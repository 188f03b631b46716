package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrchestratorMetrics exposes counters/histograms for orchestration runs.
type OrchestratorMetrics struct {
	runsTotal   *prometheus.CounterVec
	stepLatency *prometheus.HistogramVec
	alertsTotal *prometheus.CounterVec
}

func NewOrchestratorMetrics(reg prometheus.Registerer) *OrchestratorMetrics {
	m := &OrchestratorMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetguard",
			Subsystem: "orchestrator",
			Name:      "runs_total",
			Help:      "Total orchestration runs by risk tier and outcome",
		}, []string{"tier", "outcome"}),
		stepLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleetguard",
			Subsystem: "orchestrator",
			Name:      "step_latency_seconds",
			Help:      "Latency of individual workflow steps",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetguard",
			Subsystem: "audit",
			Name:      "alerts_total",
			Help:      "Total audit alerts by severity",
		}, []string{"severity"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.runsTotal, m.stepLatency, m.alertsTotal)
	return m
}

func (m *OrchestratorMetrics) ObserveRun(tier, outcome string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(tier, outcome).Inc()
}

func (m *OrchestratorMetrics) ObserveStepLatency(step string, seconds float64) {
	if m == nil {
		return
	}
	m.stepLatency.WithLabelValues(step).Observe(seconds)
}

func (m *OrchestratorMetrics) ObserveAlert(severity string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(severity).Inc()
}
