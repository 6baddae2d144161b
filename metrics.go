package assign

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/assign/internal/metrics"
)

// NewPrometheusMetrics returns a MetricsCollector that records counter and
// placement metrics on reg.
//
// Parameters:
//   - reg: Registerer for the metric families (prometheus.DefaultRegisterer if nil)
//   - namespace: Metric namespace ("assign" if empty)
//
// Families are registered on first use, so an unused collector leaves reg
// untouched.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	a, err := assign.NewAssigner(cfg, cloud, assign.WithMetrics(assign.NewPrometheusMetrics(reg, "")))
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}
