package strategy

import (
	"fmt"

	"github.com/arloliu/assign/types"
)

// shardKey identifies a shard across collections.
type shardKey struct {
	collection string
	shard      string
}

// load is a mutable working copy of replica counts derived from a snapshot.
//
// Strategies record their own placements here so later requests of a batch
// observe earlier ones without touching the snapshot.
type load struct {
	perShard map[shardKey]map[string]int
	next     map[shardKey]int
}

func newLoad(state *types.ClusterState) *load {
	l := &load{
		perShard: make(map[shardKey]map[string]int),
		next:     make(map[shardKey]int),
	}
	state.EachReplica(func(coll *types.Collection, slice *types.Slice, r *types.Replica) {
		l.add(shardKey{coll.Name, slice.Name}, r.Node)
	})

	return l
}

func (l *load) add(key shardKey, node string) {
	counts, ok := l.perShard[key]
	if !ok {
		counts = make(map[string]int)
		l.perShard[key] = counts
	}
	counts[node]++
}

func (l *load) shardCount(key shardKey, node string) int {
	return l.perShard[key][node]
}

// place records a placement and returns its batch index within the shard.
func (l *load) place(key shardKey, node string) int {
	l.add(key, node)
	idx := l.next[key]
	l.next[key]++

	return idx
}

// candidatesFor returns the candidate nodes of a request in tie-break order.
//
// Explicit nodes keep the caller's order and must all be live. Otherwise the
// eligible nodes are used as given.
func candidatesFor(req types.AssignRequest, state *types.ClusterState, eligible []string) ([]string, error) {
	if !req.HasNodes() {
		return eligible, nil
	}

	nodes := types.ExplicitNodeSet(req.Nodes()...).Nodes()
	var notLive []string
	for _, n := range nodes {
		if !state.IsLive(n) {
			notLive = append(notLive, n)
		}
	}
	if len(notLive) > 0 {
		return nil, fmt.Errorf("%w: nodes %v are not live in %v", types.ErrAssignment, notLive, state.SortedLiveNodes())
	}

	return nodes, nil
}
