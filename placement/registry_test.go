package placement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/assign/types"
)

type stubPlugin struct{ name string }

func (s *stubPlugin) Name() string { return s.name }

func (s *stubPlugin) ComputePlacements(context.Context, *types.ClusterState, []types.AssignRequest) ([]types.ReplicaPosition, error) {
	return nil, nil
}

func TestRegistry_Defaults(t *testing.T) {
	reg := NewRegistry()
	require.Equal(t, []string{"consistenthash", "minimizecores"}, reg.Names())

	for _, name := range []string{"", "simple", " SIMPLE "} {
		f, err := reg.Factory(name)
		require.NoError(t, err)
		require.Nil(t, f.CreatePluginInstance(), name)
	}

	f, err := reg.Factory("MinimizeCores")
	require.NoError(t, err)
	require.Equal(t, "minimizecores", f.CreatePluginInstance().Name())
}

func TestRegistry_Unknown(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Factory("affinity")
	require.ErrorIs(t, err, types.ErrUnknownPlacementPlugin)

	require.Panics(t, func() { reg.MustFactory("affinity") })
}

func TestRegistry_CachesInstances(t *testing.T) {
	reg := NewRegistry()
	built := 0
	reg.Register("stub", func() types.PlacementPlugin {
		built++
		return &stubPlugin{name: "stub"}
	})

	f := reg.MustFactory("stub")
	a := f.CreatePluginInstance()
	b := reg.MustFactory("stub").CreatePluginInstance()
	require.Same(t, a, b)
	require.Equal(t, 1, built)

	// Re-registering drops the cached instance.
	reg.Register("stub", func() types.PlacementPlugin { return &stubPlugin{name: "stub2"} })
	require.Equal(t, "stub2", reg.MustFactory("stub").CreatePluginInstance().Name())
}
