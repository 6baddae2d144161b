package testing

import (
	"context"
	"strconv"

	"github.com/arloliu/assign/types"
)

// CloudManager is a types.CloudManager over a fixed cluster snapshot.
type CloudManager struct {
	State *types.ClusterState
	Store types.DistribStateManager

	// Err, when set, is returned by ClusterState.
	Err error
}

var _ types.CloudManager = (*CloudManager)(nil)

// NewCloudManager returns a CloudManager serving state, backed by a fresh
// MemStateManager.
//
// Example:
//
//	cloud := assigntest.NewCloudManager(assigntest.NewClusterState("n1", "n2"))
//	positions, err := strategy.NewSimple().Assign(ctx, cloud, req)
func NewCloudManager(state *types.ClusterState) *CloudManager {
	return &CloudManager{State: state, Store: NewMemStateManager()}
}

// ClusterState returns the configured snapshot.
func (c *CloudManager) ClusterState(context.Context) (*types.ClusterState, error) {
	if c.Err != nil {
		return nil, c.Err
	}

	return c.State, nil
}

// StateManager returns the backing store.
func (c *CloudManager) StateManager() types.DistribStateManager {
	return c.Store
}

// NewClusterState returns a snapshot with the given live nodes and no collections.
func NewClusterState(liveNodes ...string) *types.ClusterState {
	return &types.ClusterState{
		LiveNodes:   liveNodes,
		Collections: make(map[string]*types.Collection),
	}
}

// AddReplica adds a replica to state, creating the collection and shard as needed.
// The core node name is derived from the replica count of the collection.
func AddReplica(state *types.ClusterState, collection, shard, node string, typ types.ReplicaType) *types.Replica {
	coll, ok := state.Collections[collection]
	if !ok {
		coll = &types.Collection{Name: collection, Slices: make(map[string]*types.Slice)}
		state.Collections[collection] = coll
	}
	slice, ok := coll.Slices[shard]
	if !ok {
		slice = &types.Slice{Name: shard, State: types.SliceStateActive, Replicas: make(map[string]*types.Replica)}
		coll.Slices[shard] = slice
	}

	n := len(coll.Replicas()) + 1
	r := &types.Replica{
		Name:       "core_node" + strconv.Itoa(n),
		CoreName:   collection + "_" + shard + "_replica_" + typ.Code() + strconv.Itoa(n),
		Collection: collection,
		Shard:      shard,
		Node:       node,
		Type:       typ,
		State:      "active",
	}
	slice.Replicas[r.Name] = r

	return r
}
