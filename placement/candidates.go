package placement

import (
	"fmt"

	"github.com/arloliu/assign/types"
)

// candidates returns the nodes eligible for a request: the live explicit
// nodes in caller order, or every live node in sorted order.
func candidates(state *types.ClusterState, req types.AssignRequest) ([]string, error) {
	var out []string
	if req.HasNodes() {
		for _, n := range types.ExplicitNodeSet(req.Nodes()...).Nodes() {
			if state.IsLive(n) {
				out = append(out, n)
			}
		}
	} else {
		out = state.SortedLiveNodes()
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no live candidate nodes for %s/%v",
			types.ErrAssignment, req.CollectionName(), req.ShardNames())
	}

	return out, nil
}

// shardHosts counts replicas per node for every shard of the snapshot.
func shardHosts(state *types.ClusterState) map[string]map[string]int {
	hosts := make(map[string]map[string]int)
	state.EachReplica(func(coll *types.Collection, slice *types.Slice, r *types.Replica) {
		addHost(hosts, shardID(coll.Name, slice.Name), r.Node)
	})

	return hosts
}

func addHost(hosts map[string]map[string]int, shard, node string) {
	m, ok := hosts[shard]
	if !ok {
		m = make(map[string]int)
		hosts[shard] = m
	}
	m[node]++
}

func shardID(collection, shard string) string {
	return collection + "/" + shard
}
