package placement

import (
	"context"

	"github.com/arloliu/assign/internal/hash"
	"github.com/arloliu/assign/types"
)

const defaultVirtualNodes = 150

// ConsistentHash places the replicas of a shard on the nodes following the
// shard's position on an xxh3 hash ring.
//
// Replicas of the same shard land on distinct nodes while enough candidates
// exist; beyond that the ring order is reused. Nodes already hosting the
// shard are skipped until every candidate hosts it, so added replicas extend
// the existing set instead of stacking on it.
type ConsistentHash struct {
	virtualNodes int
	seed         uint64
}

var _ types.PlacementPlugin = (*ConsistentHash)(nil)

// ConsistentHashOption configures a ConsistentHash plugin.
type ConsistentHashOption func(*ConsistentHash)

// WithVirtualNodes sets virtual nodes per node on the ring (default: 150).
func WithVirtualNodes(n int) ConsistentHashOption {
	return func(c *ConsistentHash) {
		if n > 0 {
			c.virtualNodes = n
		}
	}
}

// WithHashSeed sets the ring hash seed (default: 0, unseeded).
func WithHashSeed(seed uint64) ConsistentHashOption {
	return func(c *ConsistentHash) {
		c.seed = seed
	}
}

// NewConsistentHash creates the plugin.
//
// Example:
//
//	plugin := placement.NewConsistentHash(placement.WithVirtualNodes(300))
func NewConsistentHash(opts ...ConsistentHashOption) *ConsistentHash {
	c := &ConsistentHash{virtualNodes: defaultVirtualNodes}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns "consistenthash".
func (c *ConsistentHash) Name() string {
	return "consistenthash"
}

// ComputePlacements places every replica of every request in order.
func (c *ConsistentHash) ComputePlacements(ctx context.Context, state *types.ClusterState, requests []types.AssignRequest) ([]types.ReplicaPosition, error) {
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
		ring := hash.NewRing(nodes, c.virtualNodes, c.seed)

		for _, shard := range req.ShardNames() {
			id := shardID(req.CollectionName(), shard)
			order := ring.Successors(id, len(nodes))

			for _, typ := range count.Types() {
				for range count.Get(typ) {
					node := pick(order, hosts[id])
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

// pick returns the first node in ring order hosting the fewest replicas of the shard.
func pick(order []string, hosted map[string]int) string {
	best := order[0]
	for _, n := range order[1:] {
		if hosted[n] < hosted[best] {
			best = n
		}
	}

	return best
}
