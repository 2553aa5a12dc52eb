// Package metrics exposes Prometheus instruments for provider calls,
// scans, risk analyses, sessions and background tasks.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "scamguard"

// Metrics holds every scamguard instrument. A nil *Metrics is valid and
// records nothing, so components can be built without metrics in tests.
type Metrics struct {
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	leakRecords      *prometheus.CounterVec
	scanVerdicts     *prometheus.CounterVec
	analysisResults  *prometheus.CounterVec
	activeSessions   *prometheus.GaugeVec
	tasksInFlight    prometheus.Gauge
	events           *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total requests to external providers by outcome",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Latency of external provider requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		leakRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leaks",
			Name:      "records_total",
			Help:      "Leak records returned per provider",
		}, []string{"provider"}),
		scanVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "verdicts_total",
			Help:      "Scan outcomes by artifact kind",
		}, []string{"kind", "outcome"}),
		analysisResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "results_total",
			Help:      "Risk analysis results by status and tier",
		}, []string{"status", "tier"}),
		activeSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Conversation sessions currently collecting",
		}, []string{"scope"}),
		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tasks",
			Name:      "in_flight",
			Help:      "Supervised background tasks currently running",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "events_total",
			Help:      "Inbound events by type",
		}, []string{"type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.providerRequests, m.providerLatency, m.leakRecords, m.scanVerdicts,
		m.analysisResults, m.activeSessions, m.tasksInFlight, m.events,
	)
	return m
}

// ObserveProvider records one provider request.
func (m *Metrics) ObserveProvider(provider, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(seconds)
}

// AddLeakRecords counts records contributed by a provider.
func (m *Metrics) AddLeakRecords(provider string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.leakRecords.WithLabelValues(provider).Add(float64(n))
}

// ObserveScan records a scan outcome ("clean", "dangerous" or "error").
func (m *Metrics) ObserveScan(kind, outcome string) {
	if m == nil {
		return
	}
	m.scanVerdicts.WithLabelValues(kind, outcome).Inc()
}

// ObserveAnalysis records a risk analysis result.
func (m *Metrics) ObserveAnalysis(status, tier string) {
	if m == nil {
		return
	}
	m.analysisResults.WithLabelValues(status, tier).Inc()
}

// SessionStarted increments the active session gauge.
func (m *Metrics) SessionStarted(scope string) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(scope).Inc()
}

// SessionEnded decrements the active session gauge.
func (m *Metrics) SessionEnded(scope string) {
	if m == nil {
		return
	}
	m.activeSessions.WithLabelValues(scope).Dec()
}

// TaskStarted increments the in-flight task gauge.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.tasksInFlight.Inc()
}

// TaskFinished decrements the in-flight task gauge.
func (m *Metrics) TaskFinished() {
	if m == nil {
		return
	}
	m.tasksInFlight.Dec()
}

// ObserveEvent counts an inbound event.
func (m *Metrics) ObserveEvent(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}
