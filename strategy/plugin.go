package strategy

import (
	"context"
	"fmt"
	"slices"

	"github.com/arloliu/assign/internal/noderoles"
	"github.com/arloliu/assign/types"
)

// PluginStrategy delegates placement to a cluster-configured PlacementPlugin.
//
// Plugins receive a derived snapshot whose live nodes exclude nodes with the
// data role off, unless a request names such a node explicitly. The plugin
// output is checked for completeness: exactly the requested number of
// replicas per shard and type, on live nodes, and within the explicit node
// list when one was given.
type PluginStrategy struct {
	plugin types.PlacementPlugin
	logger types.Logger
}

var _ types.AssignStrategy = (*PluginStrategy)(nil)

// NewPluginStrategy wraps plugin as an AssignStrategy.
func NewPluginStrategy(plugin types.PlacementPlugin, opts ...Option) *PluginStrategy {
	o := buildOptions(opts)

	return &PluginStrategy{plugin: plugin, logger: o.logger}
}

// Name returns the plugin name.
func (p *PluginStrategy) Name() string {
	return p.plugin.Name()
}

// Plugin returns the wrapped plugin.
func (p *PluginStrategy) Plugin() types.PlacementPlugin {
	return p.plugin
}

// Assign computes placements with the plugin.
//
// Returns:
//   - []types.ReplicaPosition: Complete placement for every request
//   - error: ErrAssignment if the plugin fails or returns an incomplete or
//     invalid placement, ErrServer on state or role read failure
func (p *PluginStrategy) Assign(ctx context.Context, mgr types.CloudManager, requests ...types.AssignRequest) ([]types.ReplicaPosition, error) {
	state, err := mgr.ClusterState(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read cluster state: %w", types.ErrServer, err)
	}
	for _, req := range requests {
		if req.CollectionName() == "" {
			return nil, fmt.Errorf("%w: %w", types.ErrBadRequest, types.ErrCollectionRequired)
		}
		if err := req.NumReplicas().Validate(); err != nil {
			return nil, err
		}
	}

	view, err := pluginView(ctx, mgr, state, requests)
	if err != nil {
		return nil, err
	}

	positions, err := p.plugin.ComputePlacements(ctx, view, requests)
	if err != nil {
		p.logger.Warn("placement plugin failed", "plugin", p.plugin.Name(), "error", err)
		return nil, assignmentError(fmt.Errorf("plugin %s: %w", p.plugin.Name(), err))
	}

	if err := verifyComplete(state, requests, positions); err != nil {
		p.logger.Error("placement plugin returned invalid placement", "plugin", p.plugin.Name(), "error", err)
		return nil, fmt.Errorf("%w: plugin %s: %w", types.ErrAssignment, p.plugin.Name(), err)
	}

	return positions, nil
}

// ComputeReplicaBalancing forwards to the plugin when it is a ReplicaBalancer.
func (p *PluginStrategy) ComputeReplicaBalancing(ctx context.Context, mgr types.CloudManager, nodes []string, maxSkew int) (map[string]string, error) {
	balancer, ok := p.plugin.(types.ReplicaBalancer)
	if !ok {
		return map[string]string{}, nil
	}

	state, err := mgr.ClusterState(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read cluster state: %w", types.ErrServer, err)
	}

	moves, err := balancer.ComputeBalancing(ctx, state, nodes, maxSkew)
	if err != nil {
		return nil, assignmentError(err)
	}
	if moves == nil {
		moves = map[string]string{}
	}

	return moves, nil
}

// VerifyDeleteCollection forwards to the plugin when it is a DeleteVerifier.
func (p *PluginStrategy) VerifyDeleteCollection(ctx context.Context, mgr types.CloudManager, collection *types.Collection) error {
	verifier, ok := p.plugin.(types.DeleteVerifier)
	if !ok {
		return nil
	}

	state, err := mgr.ClusterState(ctx)
	if err != nil {
		return fmt.Errorf("%w: read cluster state: %w", types.ErrServer, err)
	}
	if err := verifier.VerifyDeleteCollection(ctx, state, collection); err != nil {
		return assignmentError(err)
	}

	return nil
}

// VerifyDeleteReplicas forwards to the plugin when it is a DeleteVerifier.
func (p *PluginStrategy) VerifyDeleteReplicas(ctx context.Context, mgr types.CloudManager, collection *types.Collection, shard string, replicas []*types.Replica) error {
	verifier, ok := p.plugin.(types.DeleteVerifier)
	if !ok {
		return nil
	}

	state, err := mgr.ClusterState(ctx)
	if err != nil {
		return fmt.Errorf("%w: read cluster state: %w", types.ErrServer, err)
	}
	if err := verifier.VerifyDeleteReplicas(ctx, state, collection, shard, replicas); err != nil {
		return assignmentError(err)
	}

	return nil
}

// pluginView returns a shallow copy of state whose live nodes exclude data-off
// nodes that no request names explicitly.
func pluginView(ctx context.Context, mgr types.CloudManager, state *types.ClusterState, requests []types.AssignRequest) (*types.ClusterState, error) {
	live, err := noderoles.FilterNonDataNodes(ctx, mgr.StateManager(), state.SortedLiveNodes())
	if err != nil {
		return nil, err
	}
	for _, req := range requests {
		for _, n := range req.Nodes() {
			if state.IsLive(n) && !slices.Contains(live, n) {
				live = append(live, n)
			}
		}
	}
	slices.Sort(live)

	return &types.ClusterState{LiveNodes: live, Collections: state.Collections}, nil
}

// verifyComplete checks that positions satisfy every request exactly.
func verifyComplete(state *types.ClusterState, requests []types.AssignRequest, positions []types.ReplicaPosition) error {
	type slot struct {
		key shardKey
		typ types.ReplicaType
	}

	want := make(map[slot]int)
	allowed := make(map[shardKey][]string)
	for _, req := range requests {
		for _, shard := range req.ShardNames() {
			key := shardKey{req.CollectionName(), shard}
			for _, typ := range req.NumReplicas().Types() {
				want[slot{key, typ}] += req.NumReplicas().Get(typ)
			}
			if req.HasNodes() {
				allowed[key] = append(allowed[key], req.Nodes()...)
			}
		}
	}

	for _, pos := range positions {
		s := slot{shardKey{pos.Collection, pos.Shard}, pos.Type}
		if want[s] <= 0 {
			return fmt.Errorf("unexpected position %s", pos)
		}
		want[s]--

		if !state.IsLive(pos.Node) {
			return fmt.Errorf("position %s targets a node that is not live", pos)
		}
		if nodes, ok := allowed[s.key]; ok && !slices.Contains(nodes, pos.Node) {
			return fmt.Errorf("position %s is outside the requested nodes %v", pos, nodes)
		}
	}

	for s, missing := range want {
		if missing > 0 {
			return fmt.Errorf("missing %d %s replica(s) for %s/%s", missing, s.typ, s.key.collection, s.key.shard)
		}
	}

	return nil
}
