package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAssignRequest(t *testing.T) {
	t.Run("requires collection name", func(t *testing.T) {
		_, err := NewAssignRequest("", []string{"shard1"})
		require.ErrorIs(t, err, ErrCollectionRequired)
	})

	t.Run("rejects negative replica counts", func(t *testing.T) {
		_, err := NewAssignRequest("books", []string{"shard1"}, WithReplicas(ReplicaCount{NRT: -1, TLOG: 1}))
		require.ErrorIs(t, err, ErrInvalidReplicaCount)
		require.ErrorIs(t, err, ErrBadRequest)

		_, err = NewAssignRequest("books", []string{"shard1"}, WithReplicas(ReplicaCount{PULL: -3}))
		require.ErrorIs(t, err, ErrInvalidReplicaCount)
	})

	t.Run("requires shard names", func(t *testing.T) {
		_, err := NewAssignRequest("coll", nil)
		require.ErrorIs(t, err, ErrShardNamesRequired)

		_, err = NewAssignRequest("coll", []string{"shard1", ""})
		require.ErrorIs(t, err, ErrShardNamesRequired)
	})

	t.Run("optional fields default safely", func(t *testing.T) {
		req, err := NewAssignRequest("coll", []string{"shard1"})
		require.NoError(t, err)
		require.Equal(t, "coll", req.CollectionName())
		require.Equal(t, []string{"shard1"}, req.ShardNames())
		require.False(t, req.HasNodes())
		require.Nil(t, req.Nodes())
		require.True(t, req.NumReplicas().IsEmpty())
	})

	t.Run("explicit empty node list is preserved", func(t *testing.T) {
		req, err := NewAssignRequest("coll", []string{"shard1"}, WithNodes([]string{}))
		require.NoError(t, err)
		require.True(t, req.HasNodes())
		require.Empty(t, req.Nodes())
	})

	t.Run("inputs are copied", func(t *testing.T) {
		shards := []string{"shard1"}
		nodes := []string{"n1"}
		req, err := NewAssignRequest("coll", shards,
			WithNodes(nodes),
			WithReplicas(ReplicaCount{NRT: 2}),
		)
		require.NoError(t, err)

		shards[0] = "mutated"
		nodes[0] = "mutated"
		require.Equal(t, []string{"shard1"}, req.ShardNames())
		require.Equal(t, []string{"n1"}, req.Nodes())
		require.Equal(t, 2, req.NumReplicas().NRT)
	})
}
