package strategy

import (
	"context"
	"fmt"

	"github.com/arloliu/assign/internal/logger"
	"github.com/arloliu/assign/internal/noderoles"
	"github.com/arloliu/assign/types"
)

// Simple is the default placement heuristic.
//
// Each new replica goes to the candidate node currently hosting the fewest
// replicas of the replica's shard. Ties go to the earliest candidate: the
// caller's order for explicit node lists, sorted order for live nodes.
type Simple struct {
	Base

	logger types.Logger
}

var _ types.AssignStrategy = (*Simple)(nil)

// Option configures a strategy.
type Option func(*options)

type options struct {
	logger types.Logger
}

// WithLogger sets the strategy logger. Defaults to a no-op logger.
func WithLogger(l types.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// NewSimple creates the default least-loaded strategy.
//
// Example:
//
//	s := strategy.NewSimple()
//	positions, err := s.Assign(ctx, cloud, req)
func NewSimple(opts ...Option) *Simple {
	o := buildOptions(opts)

	return &Simple{logger: o.logger}
}

// Name returns "simple".
func (s *Simple) Name() string {
	return "simple"
}

// Assign places every requested replica.
//
// The algorithm:
//  1. Snapshot the cluster and derive per-shard replica counts
//  2. For each request in order, resolve candidates (explicit nodes, or live
//     nodes whose data role is not off)
//  3. For each shard and replica type, pick the candidate with the fewest
//     replicas of that shard and record the placement
//
// Parameters:
//   - ctx: Context for state and role reads
//   - mgr: Cluster state and coordination store
//   - requests: Requests processed in order
//
// Returns:
//   - []types.ReplicaPosition: One position per requested replica
//   - error: ErrAssignment if a request has no candidates or names non-live
//     nodes, ErrServer on state or role read failure
func (s *Simple) Assign(ctx context.Context, mgr types.CloudManager, requests ...types.AssignRequest) ([]types.ReplicaPosition, error) {
	state, err := mgr.ClusterState(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read cluster state: %w", types.ErrServer, err)
	}

	var eligible []string
	if needsLiveNodes(requests) {
		eligible, err = noderoles.FilterNonDataNodes(ctx, mgr.StateManager(), state.SortedLiveNodes())
		if err != nil {
			return nil, err
		}
	}

	working := newLoad(state)
	var positions []types.ReplicaPosition
	for _, req := range requests {
		if req.CollectionName() == "" {
			return nil, fmt.Errorf("%w: %w", types.ErrBadRequest, types.ErrCollectionRequired)
		}

		count := req.NumReplicas()
		if err := count.Validate(); err != nil {
			return nil, err
		}
		if count.IsEmpty() {
			continue
		}

		candidates, err := candidatesFor(req, state, eligible)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: %w for collection %s shards %v",
				types.ErrAssignment, ErrNoEligibleNodes, req.CollectionName(), req.ShardNames())
		}

		for _, shard := range req.ShardNames() {
			key := shardKey{req.CollectionName(), shard}
			for _, typ := range count.Types() {
				for range count.Get(typ) {
					node := leastLoaded(working, key, candidates)
					positions = append(positions, types.ReplicaPosition{
						Collection: key.collection,
						Shard:      key.shard,
						Index:      working.place(key, node),
						Type:       typ,
						Node:       node,
					})
				}
			}
		}
	}

	s.logger.Debug("simple placement computed", "requests", len(requests), "positions", len(positions))

	return positions, nil
}

func leastLoaded(working *load, key shardKey, candidates []string) string {
	best := candidates[0]
	bestCount := working.shardCount(key, best)
	for _, n := range candidates[1:] {
		if c := working.shardCount(key, n); c < bestCount {
			best, bestCount = n, c
		}
	}

	return best
}

func needsLiveNodes(requests []types.AssignRequest) bool {
	for _, r := range requests {
		if !r.HasNodes() && !r.NumReplicas().IsEmpty() {
			return true
		}
	}

	return false
}
