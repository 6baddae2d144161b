package strategy

import "github.com/arloliu/assign/types"

// New returns the strategy for the cluster's placement configuration.
//
// When factory is nil or yields no plugin, the Simple heuristic is used;
// otherwise the plugin is wrapped in a PluginStrategy. Creating a strategy is
// cheap and may happen per request.
//
// Parameters:
//   - factory: Cluster-wide plugin factory, may be nil
//   - opts: Strategy options
//
// Returns:
//   - types.AssignStrategy: Strategy ready for use
//
// Example:
//
//	s := strategy.New(registry.MustFactory("minimizecores"))
//	positions, err := s.Assign(ctx, cloud, req)
func New(factory types.PlacementPluginFactory, opts ...Option) types.AssignStrategy {
	if factory != nil {
		if plugin := factory.CreatePluginInstance(); plugin != nil {
			return NewPluginStrategy(plugin, opts...)
		}
	}

	return NewSimple(opts...)
}

// Name returns the metrics label of s: its Name method when present, "custom" otherwise.
func Name(s types.AssignStrategy) string {
	if named, ok := s.(interface{ Name() string }); ok {
		return named.Name()
	}

	return "custom"
}
