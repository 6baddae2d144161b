// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/arloliu/assign/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
//
// Example:
//
//	m := metrics.NewNop()
//	assigner, err := assign.NewAssigner(cfg, cloud, assign.WithMetrics(m))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// CounterMetrics implementation

// RecordCounterIncrement discards the counter increment metric.
func (n *NopMetrics) RecordCounterIncrement(_ /* duration */ float64, _ /* success */ bool) {
	// No-op
}

// IncrementCounterConflict discards the counter conflict metric.
func (n *NopMetrics) IncrementCounterConflict() {
	// No-op
}

// AssignMetrics implementation

// RecordAssignDuration discards the assign duration metric.
func (n *NopMetrics) RecordAssignDuration(_ /* strategy */ string, _ /* duration */ float64) {
	// No-op
}

// RecordAssignAttempt discards the assign attempt metric.
func (n *NopMetrics) RecordAssignAttempt(_ /* strategy */ string, _ /* result */ string) {
	// No-op
}

// RecordReplicasPlaced discards the replicas placed metric.
func (n *NopMetrics) RecordReplicasPlaced(_ /* strategy */ string, _ /* count */ int) {
	// No-op
}
