package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.NotPanics(t, func() {
		metrics.RecordParse("bfd", time.Millisecond)
		metrics.RecordSession(OutcomeAdmitted)
		metrics.RecordBinding("vrrp", OutcomeDropped)
		metrics.RecordDiagnostic("field", "OUT_OF_RANGE")
	})
}

// counterValue returns the value of the counter in family name whose labels
// match want exactly.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if len(labels) != len(want) {
				continue
			}
			match := true
			for k, v := range want {
				if labels[k] != v {
					match = false
				}
			}
			if match {
				if m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestPrometheus_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	p.RecordParse("bfd", 2*time.Millisecond)
	p.RecordParse("bfd", 3*time.Millisecond)
	p.RecordSession(OutcomeAdmitted)
	p.RecordSession(OutcomeAdmitted)
	p.RecordSession(OutcomeRejected)
	p.RecordBinding("vrrp", OutcomeDropped)
	p.RecordDiagnostic("block", "BAD_ADDRESS")

	require.InDelta(t, 2, counterValue(t, reg, "bfdconf_parse_total", map[string]string{"role": "bfd"}), 0)
	require.InDelta(t, 2, counterValue(t, reg, "bfdconf_parse_duration_seconds", map[string]string{"role": "bfd"}), 0)
	require.InDelta(t, 2, counterValue(t, reg, "bfdconf_bfd_sessions_total", map[string]string{"outcome": "admitted"}), 0)
	require.InDelta(t, 1, counterValue(t, reg, "bfdconf_bfd_sessions_total", map[string]string{"outcome": "rejected"}), 0)
	require.InDelta(t, 1, counterValue(t, reg, "bfdconf_track_bindings_total",
		map[string]string{"subsystem": "vrrp", "outcome": "dropped"}), 0)
	require.InDelta(t, 1, counterValue(t, reg, "bfdconf_parse_diagnostics_total",
		map[string]string{"severity": "block", "code": "BAD_ADDRESS"}), 0)
}

func TestPrometheus_CustomNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "keepalived")

	p.RecordSession(OutcomeAdmitted)

	require.InDelta(t, 1, counterValue(t, reg, "keepalived_bfd_sessions_total", map[string]string{"outcome": "admitted"}), 0)
}

func TestPrometheus_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	require.NotPanics(t, func() {
		p.RecordSession(OutcomeAdmitted)
		p.RecordSession(OutcomeAdmitted)
		p.RecordDiagnostic("advisory", "ABOVE_SENSIBLE")
	})
}
