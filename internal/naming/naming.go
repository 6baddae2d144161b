// Package naming builds coordination-store paths and human-readable identifiers
// for collections, shards and replicas.
package naming

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/arloliu/assign/types"
)

// Well-known coordination-store roots.
const (
	CollectionsPath = "/collections"
	LiveNodesPath   = "/live_nodes"
	NodeRolesPath   = "/node_roles"
)

// SystemCollectionPrefix marks collections created for internal use.
const SystemCollectionPrefix = ".sys."

// CollectionPath returns the coordination-store path of a collection.
func CollectionPath(collection string) string {
	return CollectionsPath + "/" + collection
}

// CounterPath returns the path of the per-collection id counter.
func CounterPath(collection string) string {
	return CollectionPath(collection) + "/counter"
}

// StatePath returns the path of a collection's state document.
func StatePath(collection string) string {
	return CollectionPath(collection) + "/state.json"
}

// LiveNodePath returns the registration path of a live node.
func LiveNodePath(node string) string {
	return LiveNodesPath + "/" + node
}

// CoreNodeName returns the core node name for a counter value.
func CoreNodeName(id int) string {
	return "core_node" + strconv.Itoa(id)
}

// ShardName returns the name of the n-th shard (1-based).
func ShardName(n int) string {
	return "shard" + strconv.Itoa(n)
}

// BuildCoreName builds the core name of a replica.
//
// The result is "<collection>_<shard>_replica_<code><seq>", where code is the
// single-letter replica type. Names are unique as long as seq comes from the
// collection counter and is never reused.
//
// Example:
//
//	naming.BuildCoreName("coll", "shard1", types.NRT, 3) // "coll_shard1_replica_n3"
func BuildCoreName(collection, shard string, replicaType types.ReplicaType, seq int) string {
	return fmt.Sprintf("%s_%s_replica_%s%d", collection, shard, replicaType.Code(), seq)
}

// AssignShard picks the shard a new replica should join.
//
// Rules:
//   - numShards <= 0 is treated as 1
//   - no collection (or no active shards) yields "shard1"
//   - fewer active shards than numShards yields the next sequential shard name
//   - otherwise the active shard with the fewest replicas, ties broken by shard name
//
// Parameters:
//   - collection: Current collection topology, may be nil
//   - numShards: Desired shard count
//
// Returns:
//   - string: Shard name
func AssignShard(collection *types.Collection, numShards int) string {
	if numShards <= 0 {
		numShards = 1
	}

	active := collection.ActiveSlices()
	if len(active) == 0 {
		return ShardName(1)
	}
	if len(active) < numShards {
		return ShardName(len(active) + 1)
	}

	// ActiveSlices is name-ordered, so a stable sort keeps name order among ties.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ReplicaCount() < active[j].ReplicaCount()
	})

	return active[0].Name
}
