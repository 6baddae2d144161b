package assign

import (
	"math/rand"

	"github.com/arloliu/assign/placement"
)

// Option configures an Assigner with optional dependencies.
type Option func(*assignerOptions)

// assignerOptions holds optional Assigner configuration.
type assignerOptions struct {
	logger   Logger
	metrics  MetricsCollector
	rnd      *rand.Rand
	registry *placement.Registry
	factory  PlacementPluginFactory
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewAssigner
//
// Example:
//
//	logger := logging.NewSlogDefault()
//	a, err := assign.NewAssigner(cfg, cloud, assign.WithLogger(logger))
func WithLogger(logger Logger) Option {
	return func(o *assignerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewAssigner
//
// Example:
//
//	m := assign.NewPrometheusMetrics(prometheus.DefaultRegisterer, "assign")
//	a, err := assign.NewAssigner(cfg, cloud, assign.WithMetrics(m))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *assignerOptions) {
		o.metrics = metrics
	}
}

// WithRandom sets the random source used to shuffle candidate nodes.
//
// A fixed seed makes node-set resolution reproducible, which tests rely on.
func WithRandom(rnd *rand.Rand) Option {
	return func(o *assignerOptions) {
		o.rnd = rnd
	}
}

// WithPlacementRegistry resolves Config.PlacementPlugin against reg instead
// of the built-in registry. Use it to register custom placement plugins.
func WithPlacementRegistry(reg *placement.Registry) Option {
	return func(o *assignerOptions) {
		o.registry = reg
	}
}

// WithPlacementPluginFactory bypasses name lookup and uses factory directly.
// Config.PlacementPlugin is then ignored.
func WithPlacementPluginFactory(factory PlacementPluginFactory) Option {
	return func(o *assignerOptions) {
		o.factory = factory
	}
}
