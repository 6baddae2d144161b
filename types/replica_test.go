package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplicaType(t *testing.T) {
	t.Run("codes are single lowercase characters", func(t *testing.T) {
		require.Equal(t, "n", NRT.Code())
		require.Equal(t, "t", TLOG.Code())
		require.Equal(t, "p", PULL.Code())
	})

	t.Run("parse is case insensitive", func(t *testing.T) {
		for in, want := range map[string]ReplicaType{"nrt": NRT, "TLOG": TLOG, "Pull": PULL} {
			got, err := ParseReplicaType(in)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}

		_, err := ParseReplicaType("leader")
		require.Error(t, err)
	})

	t.Run("json uses names", func(t *testing.T) {
		data, err := json.Marshal(Replica{Name: "core_node1", Type: TLOG})
		require.NoError(t, err)
		require.Contains(t, string(data), `"type":"TLOG"`)

		var r Replica
		require.NoError(t, json.Unmarshal([]byte(`{"name":"core_node2","type":"PULL"}`), &r))
		require.Equal(t, PULL, r.Type)
	})

	t.Run("unknown type string", func(t *testing.T) {
		require.Equal(t, "ReplicaType(7)", ReplicaType(7).String())
	})
}

func TestReplicaCount(t *testing.T) {
	var empty ReplicaCount
	require.True(t, empty.IsEmpty())
	require.Equal(t, 0, empty.Total())

	c := ReplicaCount{NRT: 2, TLOG: 1, PULL: 3}
	require.False(t, c.IsEmpty())
	require.Equal(t, 6, c.Total())
	require.Equal(t, 2, c.Get(NRT))
	require.Equal(t, 1, c.Get(TLOG))
	require.Equal(t, 3, c.Get(PULL))
	require.Equal(t, 0, c.Get(ReplicaType(9)))
	require.Equal(t, []ReplicaType{NRT, TLOG, PULL}, c.Types())
	require.NoError(t, c.Validate())
	require.NoError(t, empty.Validate())

	// Counts that sum to zero are not empty.
	mixed := ReplicaCount{NRT: -1, TLOG: 1}
	require.Zero(t, mixed.Total())
	require.False(t, mixed.IsEmpty())

	err := mixed.Validate()
	require.ErrorIs(t, err, ErrInvalidReplicaCount)
	require.True(t, IsBadRequest(err))
	require.ErrorIs(t, ReplicaCount{PULL: -2}.Validate(), ErrInvalidReplicaCount)
}
