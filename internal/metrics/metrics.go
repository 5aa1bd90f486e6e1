// Package metrics records what each configuration parse produced.
//
// Two collectors are provided: Nop, which discards everything and is the
// default, and Prometheus, which exports counters and a parse latency
// histogram for a long-running watch process.
package metrics

import "time"

// Outcomes recorded for sessions and bindings.
const (
	OutcomeAdmitted = "admitted"
	OutcomeRejected = "rejected"
	OutcomeDropped  = "dropped"
)

// Collector receives parse events.
type Collector interface {
	// RecordParse records one completed parse pass for a role.
	RecordParse(role string, duration time.Duration)
	// RecordSession records the fate of one bfd_instance block.
	RecordSession(outcome string)
	// RecordBinding records the fate of one binding owned by subsystem.
	RecordBinding(subsystem, outcome string)
	// RecordDiagnostic records one diagnostic.
	RecordDiagnostic(severity, code string)
}

// NopMetrics discards every event.
type NopMetrics struct{}

var _ Collector = (*NopMetrics)(nil)

// NewNop creates a no-op collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordParse discards the parse metric.
func (n *NopMetrics) RecordParse(_ /* role */ string, _ /* duration */ time.Duration) {
	// No-op
}

// RecordSession discards the session metric.
func (n *NopMetrics) RecordSession(_ /* outcome */ string) {
	// No-op
}

// RecordBinding discards the binding metric.
func (n *NopMetrics) RecordBinding(_ /* subsystem */, _ /* outcome */ string) {
	// No-op
}

// RecordDiagnostic discards the diagnostic metric.
func (n *NopMetrics) RecordDiagnostic(_ /* severity */, _ /* code */ string) {
	// No-op
}
