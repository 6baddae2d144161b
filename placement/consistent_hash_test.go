package placement

import (
	"testing"

	"github.com/stretchr/testify/require"

	assigntest "github.com/arloliu/assign/testing"
	"github.com/arloliu/assign/types"
)

func TestConsistentHash_DistinctNodesPerShard(t *testing.T) {
	state := assigntest.NewClusterState("n1", "n2", "n3", "n4")
	req := request(t, "books", []string{"shard1", "shard2", "shard3"}, types.WithReplicas(types.ReplicaCount{NRT: 2, PULL: 1}))

	positions, err := NewConsistentHash().ComputePlacements(t.Context(), state, []types.AssignRequest{req})
	require.NoError(t, err)
	require.Len(t, positions, 9)

	perShard := make(map[string]map[string]bool)
	for _, p := range positions {
		if perShard[p.Shard] == nil {
			perShard[p.Shard] = make(map[string]bool)
		}
		require.False(t, perShard[p.Shard][p.Node], "shard %s placed twice on %s", p.Shard, p.Node)
		perShard[p.Shard][p.Node] = true
	}
}

func TestConsistentHash_StableAcrossCalls(t *testing.T) {
	state := assigntest.NewClusterState("n1", "n2", "n3")
	req := request(t, "books", []string{"shard1"}, types.WithReplicas(types.ReplicaCount{NRT: 2}))
	plugin := NewConsistentHash(WithHashSeed(42), WithVirtualNodes(64))

	first, err := plugin.ComputePlacements(t.Context(), state, []types.AssignRequest{req})
	require.NoError(t, err)
	second, err := plugin.ComputePlacements(t.Context(), state, []types.AssignRequest{req})
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestConsistentHash_ExtendsExistingHosts(t *testing.T) {
	state := assigntest.NewClusterState("n1", "n2", "n3")
	req := request(t, "books", []string{"shard1"}, types.WithReplicas(types.ReplicaCount{NRT: 1}))

	// Batch dependency: the second request sees the first placement.
	positions, err := NewConsistentHash().ComputePlacements(t.Context(), state, []types.AssignRequest{req, req, req})
	require.NoError(t, err)
	require.Len(t, positions, 3)
	require.ElementsMatch(t, []string{"n1", "n2", "n3"}, []string{positions[0].Node, positions[1].Node, positions[2].Node})
	require.Equal(t, 2, positions[2].Index)
}

func TestConsistentHash_MoreReplicasThanNodes(t *testing.T) {
	state := assigntest.NewClusterState("n1", "n2")
	req := request(t, "books", []string{"shard1"}, types.WithReplicas(types.ReplicaCount{NRT: 4}))

	positions, err := NewConsistentHash().ComputePlacements(t.Context(), state, []types.AssignRequest{req})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, p := range positions {
		counts[p.Node]++
	}
	require.Equal(t, map[string]int{"n1": 2, "n2": 2}, counts)
}

func TestConsistentHash_NoCandidates(t *testing.T) {
	req := request(t, "books", []string{"shard1"}, types.WithReplicas(types.ReplicaCount{NRT: 1}))

	_, err := NewConsistentHash().ComputePlacements(t.Context(), assigntest.NewClusterState(), []types.AssignRequest{req})
	require.ErrorIs(t, err, types.ErrAssignment)
}
