package placement

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/assign/types"
)

// NoPlugin is the configuration value selecting the default heuristic.
const NoPlugin = "simple"

// Constructor builds a plugin instance.
type Constructor func() types.PlacementPlugin

// Registry maps plugin names to constructors and caches one instance per name.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	instances    *xsync.Map[string, types.PlacementPlugin]
}

// NewRegistry returns a registry holding the built-in plugins.
//
// Example:
//
//	reg := placement.NewRegistry()
//	factory, err := reg.Factory(cfg.PlacementPlugin)
func NewRegistry() *Registry {
	r := &Registry{
		constructors: make(map[string]Constructor),
		instances:    xsync.NewMap[string, types.PlacementPlugin](),
	}
	r.Register("minimizecores", func() types.PlacementPlugin { return NewMinimizeCores() })
	r.Register("consistenthash", func() types.PlacementPlugin { return NewConsistentHash() })

	return r
}

// Register adds or replaces a named constructor. Names are case-insensitive.
func (r *Registry) Register(name string, ctor Constructor) {
	name = strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[name] = ctor
	r.instances.Delete(name)
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	slices.Sort(names)

	return names
}

// Factory returns the plugin factory for a configured name.
//
// The empty name and NoPlugin select the default heuristic: the returned
// factory yields nil.
//
// Returns:
//   - types.PlacementPluginFactory: Factory for name
//   - error: ErrUnknownPlacementPlugin if name is not registered
func (r *Registry) Factory(name string) (types.PlacementPluginFactory, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == NoPlugin {
		return types.PlacementPluginFactoryFunc(func() types.PlacementPlugin { return nil }), nil
	}

	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", types.ErrUnknownPlacementPlugin, name, r.Names())
	}

	return types.PlacementPluginFactoryFunc(func() types.PlacementPlugin {
		return r.instance(name, ctor)
	}), nil
}

// MustFactory is like Factory but panics on unknown names.
func (r *Registry) MustFactory(name string) types.PlacementPluginFactory {
	f, err := r.Factory(name)
	if err != nil {
		panic(err)
	}

	return f
}

func (r *Registry) instance(name string, ctor Constructor) types.PlacementPlugin {
	plugin, _ := r.instances.Compute(name, func(old types.PlacementPlugin, loaded bool) (types.PlacementPlugin, xsync.ComputeOp) {
		if loaded {
			return old, xsync.CancelOp
		}

		return ctor(), xsync.UpdateOp
	})

	return plugin
}
