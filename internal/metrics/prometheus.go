package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/assign/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metric families are created and registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	counterIncrements *prometheus.CounterVec
	counterConflicts  prometheus.Counter
	counterLatency    prometheus.Histogram
	assignAttempts    *prometheus.CounterVec
	assignLatency     *prometheus.HistogramVec
	replicasPlaced    *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "assign" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "assign"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.counterIncrements = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "counter",
			Name:      "increments_total",
			Help:      "Total distributed counter increments by result (success,failure).",
		}, []string{"result"})

		p.counterConflicts = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "counter",
			Name:      "version_conflicts_total",
			Help:      "Total counter writes rejected because another writer advanced the version.",
		})

		p.counterLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "counter",
			Name:      "increment_latency_seconds",
			Help:      "Latency of counter increments in seconds, including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		})

		p.assignAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "strategy",
			Name:      "assign_attempts_total",
			Help:      "Total assign calls by strategy and result (success,bad_request,assignment,server).",
		}, []string{"strategy", "result"})

		p.assignLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "strategy",
			Name:      "assign_latency_seconds",
			Help:      "Latency of assign calls in seconds by strategy.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"strategy"})

		p.replicasPlaced = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "strategy",
			Name:      "replicas_placed_total",
			Help:      "Total replica positions produced by strategy.",
		}, []string{"strategy"})

		p.reg.MustRegister(p.counterIncrements)
		p.reg.MustRegister(p.counterConflicts)
		p.reg.MustRegister(p.counterLatency)
		p.reg.MustRegister(p.assignAttempts)
		p.reg.MustRegister(p.assignLatency)
		p.reg.MustRegister(p.replicasPlaced)
	})
}

// CounterMetrics implementation

// RecordCounterIncrement records an increment outcome and its latency.
func (p *PrometheusCollector) RecordCounterIncrement(duration float64, success bool) {
	p.ensureRegistered()
	result := "success"
	if !success {
		result = "failure"
	}
	p.counterIncrements.WithLabelValues(result).Inc()
	p.counterLatency.Observe(duration)
}

// IncrementCounterConflict increments the version conflict counter.
func (p *PrometheusCollector) IncrementCounterConflict() {
	p.ensureRegistered()
	p.counterConflicts.Inc()
}

// AssignMetrics implementation

// RecordAssignDuration observes assign latency for the strategy.
func (p *PrometheusCollector) RecordAssignDuration(strategy string, duration float64) {
	p.ensureRegistered()
	p.assignLatency.WithLabelValues(strategy).Observe(duration)
}

// RecordAssignAttempt counts an assign outcome.
func (p *PrometheusCollector) RecordAssignAttempt(strategy string, result string) {
	p.ensureRegistered()
	p.assignAttempts.WithLabelValues(strategy, result).Inc()
}

// RecordReplicasPlaced adds the number of positions produced.
func (p *PrometheusCollector) RecordReplicasPlaced(strategy string, count int) {
	p.ensureRegistered()
	if count <= 0 {
		return
	}
	p.replicasPlaced.WithLabelValues(strategy).Add(float64(count))
}
