package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	parses        *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	sessions      *prometheus.CounterVec
	bindings      *prometheus.CounterVec
	diagnostics   *prometheus.CounterVec
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: metrics namespace (defaults to "bfdconf" if empty)
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "bfdconf"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.parses = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "parse",
			Name:      "total",
			Help:      "Total configuration parse passes by role.",
		}, []string{"role"})

		p.parseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "parse",
			Name:      "duration_seconds",
			Help:      "Duration of configuration parse passes in seconds by role.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100us .. ~1.6s
		}, []string{"role"})

		p.sessions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "bfd",
			Name:      "sessions_total",
			Help:      "Total bfd_instance blocks by outcome (admitted,rejected).",
		}, []string{"outcome"})

		p.bindings = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "track",
			Name:      "bindings_total",
			Help:      "Total tracking bindings by subsystem and outcome (admitted,rejected,dropped).",
		}, []string{"subsystem", "outcome"})

		p.diagnostics = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "parse",
			Name:      "diagnostics_total",
			Help:      "Total diagnostics raised by severity and code.",
		}, []string{"severity", "code"})

		p.reg.MustRegister(
			p.parses,
			p.parseDuration,
			p.sessions,
			p.bindings,
			p.diagnostics,
		)
	})
}

// RecordParse records one parse pass.
func (p *PrometheusCollector) RecordParse(role string, duration time.Duration) {
	p.ensureRegistered()
	p.parses.WithLabelValues(role).Inc()
	p.parseDuration.WithLabelValues(role).Observe(duration.Seconds())
}

// RecordSession records a session outcome.
func (p *PrometheusCollector) RecordSession(outcome string) {
	p.ensureRegistered()
	p.sessions.WithLabelValues(outcome).Inc()
}

// RecordBinding records a binding outcome.
func (p *PrometheusCollector) RecordBinding(subsystem, outcome string) {
	p.ensureRegistered()
	p.bindings.WithLabelValues(subsystem, outcome).Inc()
}

// RecordDiagnostic records a diagnostic.
func (p *PrometheusCollector) RecordDiagnostic(severity, code string) {
	p.ensureRegistered()
	p.diagnostics.WithLabelValues(severity, code).Inc()
}
