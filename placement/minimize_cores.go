package placement

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/assign/internal/naming"
	"github.com/arloliu/assign/types"
)

// WithCollectionKey is the collection property naming a collection that must
// outlive it (for example a system collection holding shared data).
const WithCollectionKey = "withCollection"

// MinimizeCores places replicas on the nodes hosting the fewest cores.
//
// Ordering for each replica: fewest total cores, then fewest replicas of the
// same shard, then node name.
type MinimizeCores struct{}

var (
	_ types.PlacementPlugin = MinimizeCores{}
	_ types.ReplicaBalancer = MinimizeCores{}
	_ types.DeleteVerifier  = MinimizeCores{}
)

// NewMinimizeCores creates the plugin.
func NewMinimizeCores() MinimizeCores {
	return MinimizeCores{}
}

// Name returns "minimizecores".
func (MinimizeCores) Name() string {
	return "minimizecores"
}

// ComputePlacements places every replica of every request in order.
func (MinimizeCores) ComputePlacements(ctx context.Context, state *types.ClusterState, requests []types.AssignRequest) ([]types.ReplicaPosition, error) {
	cores := state.ReplicasOnNode()
	hosts := shardHosts(state)
	next := make(map[string]int)

	var positions []types.ReplicaPosition
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		count := req.NumReplicas()
		if count.IsEmpty() {
			continue
		}
		nodes, err := candidates(state, req)
		if err != nil {
			return nil, err
		}

		for _, shard := range req.ShardNames() {
			id := shardID(req.CollectionName(), shard)
			for _, typ := range count.Types() {
				for range count.Get(typ) {
					node := slices.MinFunc(nodes, func(a, b string) int {
						return cmp.Or(
							cmp.Compare(cores[a], cores[b]),
							cmp.Compare(hosts[id][a], hosts[id][b]),
							strings.Compare(a, b),
						)
					})
					cores[node]++
					addHost(hosts, id, node)

					positions = append(positions, types.ReplicaPosition{
						Collection: req.CollectionName(),
						Shard:      shard,
						Index:      next[id],
						Type:       typ,
						Node:       node,
					})
					next[id]++
				}
			}
		}
	}

	return positions, nil
}

// ComputeBalancing moves replicas from the most to the least loaded node until
// the core count spread is at most maxSkew.
//
// A replica is never moved onto a node that already hosts its shard. Replicas
// are considered in collection, shard, core node name order so the result is
// deterministic. maxSkew below 1 is treated as 1.
//
// Parameters:
//   - state: Cluster snapshot
//   - nodes: Nodes to balance across; empty means every live node
//   - maxSkew: Tolerated difference between the most and least loaded node
//
// Returns:
//   - map[string]string: Replica core name to destination node
func (MinimizeCores) ComputeBalancing(ctx context.Context, state *types.ClusterState, nodes []string, maxSkew int) (map[string]string, error) {
	moves := map[string]string{}
	maxSkew = max(maxSkew, 1)
	if len(nodes) == 0 {
		nodes = state.SortedLiveNodes()
	} else {
		nodes = slices.Sorted(slices.Values(nodes))
		nodes = slices.Compact(nodes)
	}
	if len(nodes) < 2 {
		return moves, nil
	}

	inScope := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inScope[n] = true
	}

	// Working model: node -> replicas, plus shard -> hosting nodes.
	byNode := make(map[string][]*types.Replica, len(nodes))
	location := make(map[*types.Replica]string)
	hosts := make(map[string]map[string]int)
	if state != nil {
		for _, coll := range sortedCollections(state) {
			for _, r := range coll.Replicas() {
				addHost(hosts, shardID(r.Collection, r.Shard), r.Node)
				if inScope[r.Node] {
					byNode[r.Node] = append(byNode[r.Node], r)
					location[r] = r.Node
				}
			}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		most := slices.MaxFunc(nodes, func(a, b string) int {
			return cmp.Or(cmp.Compare(len(byNode[a]), len(byNode[b])), strings.Compare(b, a))
		})
		least := slices.MinFunc(nodes, func(a, b string) int {
			return cmp.Or(cmp.Compare(len(byNode[a]), len(byNode[b])), strings.Compare(a, b))
		})
		if len(byNode[most])-len(byNode[least]) <= maxSkew {
			return moves, nil
		}

		idx := slices.IndexFunc(byNode[most], func(r *types.Replica) bool {
			return hosts[shardID(r.Collection, r.Shard)][least] == 0
		})
		if idx < 0 {
			// Every replica on the busiest node would collide with its shard.
			return moves, nil
		}

		r := byNode[most][idx]
		byNode[most] = slices.Delete(byNode[most], idx, idx+1)
		byNode[least] = append(byNode[least], r)
		id := shardID(r.Collection, r.Shard)
		hosts[id][location[r]]--
		addHost(hosts, id, least)
		location[r] = least
		moves[replicaKey(r)] = least
	}
}

// VerifyDeleteCollection refuses to delete a collection that another
// collection references through its WithCollectionKey property.
func (MinimizeCores) VerifyDeleteCollection(_ context.Context, state *types.ClusterState, collection *types.Collection) error {
	if collection == nil || state == nil {
		return nil
	}

	var referrers []string
	for _, other := range state.Collections {
		if other != nil && other.Name != collection.Name && other.Config[WithCollectionKey] == collection.Name {
			referrers = append(referrers, other.Name)
		}
	}
	if len(referrers) == 0 {
		return nil
	}
	slices.Sort(referrers)

	kind := "collection"
	if strings.HasPrefix(collection.Name, naming.SystemCollectionPrefix) {
		kind = "system collection"
	}

	return fmt.Errorf("%w: %s %s is still referenced by %v",
		types.ErrAssignment, kind, collection.Name, referrers)
}

// VerifyDeleteReplicas refuses to delete every remaining replica of a shard.
func (MinimizeCores) VerifyDeleteReplicas(_ context.Context, _ *types.ClusterState, collection *types.Collection, shard string, replicas []*types.Replica) error {
	slice := collection.Slice(shard)
	if slice == nil {
		return fmt.Errorf("%w: shard %s not found in collection %s", types.ErrBadRequest, shard, collection.Name)
	}

	deleting := make(map[string]bool, len(replicas))
	for _, r := range replicas {
		deleting[r.Name] = true
	}
	for name := range slice.Replicas {
		if !deleting[name] {
			return nil
		}
	}
	if slice.ReplicaCount() == 0 {
		return nil
	}

	return fmt.Errorf("%w: deleting %d replica(s) would leave shard %s/%s without replicas",
		types.ErrAssignment, len(replicas), collection.Name, shard)
}

func sortedCollections(state *types.ClusterState) []*types.Collection {
	out := make([]*types.Collection, 0, len(state.Collections))
	for _, c := range state.Collections {
		if c != nil {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b *types.Collection) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out
}

func replicaKey(r *types.Replica) string {
	if r.CoreName != "" {
		return r.CoreName
	}

	return r.Name
}
