package assign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/assign/internal/counter"
	"github.com/arloliu/assign/internal/logger"
	"github.com/arloliu/assign/internal/metrics"
	"github.com/arloliu/assign/internal/naming"
	"github.com/arloliu/assign/internal/nodeset"
	"github.com/arloliu/assign/placement"
	"github.com/arloliu/assign/strategy"
	"github.com/arloliu/assign/types"
)

// Metric result labels for assignment attempts.
const (
	resultSuccess    = "success"
	resultBadRequest = "bad_request"
	resultAssignment = "assignment"
	resultServer     = "server"
)

// SystemCollectionPrefix marks collections created for internal use.
const SystemCollectionPrefix = naming.SystemCollectionPrefix

// ReplicaRequest asks for nodes to host new replicas of one shard.
type ReplicaRequest struct {
	// Collection and Shard identify the target shard.
	Collection string
	Shard      string

	// Replicas is the number of new replicas per type.
	Replicas ReplicaCount

	// NodeSet optionally restricts candidates. Every explicit node must be live.
	NodeSet NodeSet
}

// Assigner computes replica placements and mints replica identifiers.
//
// Assigner holds no per-call state and is safe for concurrent use. Uniqueness
// of minted ids across processes comes from the coordination store.
type Assigner struct {
	cfg      Config
	cloud    CloudManager
	counter  *counter.Counter
	resolver *nodeset.Resolver
	factory  PlacementPluginFactory
	logger   Logger
	metrics  MetricsCollector
}

// NewAssigner creates an Assigner.
//
// Parameters:
//   - cfg: Configuration; missing values are defaulted
//   - cloud: Cluster state and coordination store (required)
//   - opts: Optional logger, metrics, random source and placement registry
//
// Returns:
//   - *Assigner: Ready assigner
//   - error: ErrCloudManagerRequired, or ErrInvalidConfig for a bad config or
//     unknown placement plugin
//
// Example:
//
//	cloud, _ := assign.NewCloudManager(nil, store)
//	a, err := assign.NewAssigner(assign.DefaultConfig(), cloud)
//	positions, err := a.GetNodesForNewReplicas(ctx, assign.ReplicaRequest{
//	    Collection: "books",
//	    Shard:      "shard1",
//	    Replicas:   assign.ReplicaCount{NRT: 2},
//	})
func NewAssigner(cfg Config, cloud CloudManager, opts ...Option) (*Assigner, error) {
	if cloud == nil {
		return nil, ErrCloudManagerRequired
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := assignerOptions{
		logger:  logger.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.OrNop(o.logger)
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	factory := o.factory
	if factory == nil {
		reg := o.registry
		if reg == nil {
			reg = placement.NewRegistry()
		}
		f, err := reg.Factory(cfg.PlacementPlugin)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		factory = f
	}

	store := cloud.StateManager()
	c, err := counter.New(store,
		counter.WithLogger(o.logger),
		counter.WithMetrics(o.metrics),
		counter.WithMaxRetries(cfg.Counter.MaxRetries),
		counter.WithRetryBackoff(cfg.Counter.RetryBackoff),
	)
	if err != nil {
		return nil, err
	}

	return &Assigner{
		cfg:      cfg,
		cloud:    cloud,
		counter:  c,
		resolver: nodeset.NewResolver(store, o.rnd),
		factory:  factory,
		logger:   o.logger,
		metrics:  o.metrics,
	}, nil
}

// Config returns the effective configuration.
func (a *Assigner) Config() Config {
	return a.cfg
}

// IncAndGetID increments the collection counter and returns the new value.
// The first id of a collection is 1.
func (a *Assigner) IncAndGetID(ctx context.Context, collection string) (int, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.counter.IncrementAndGet(ctx, collection)
}

// AssignCoreNodeName mints a collection-unique core node name ("core_node<N>").
func (a *Assigner) AssignCoreNodeName(ctx context.Context, collection string) (string, error) {
	id, err := a.IncAndGetID(ctx, collection)
	if err != nil {
		return "", err
	}

	return naming.CoreNodeName(id), nil
}

// BuildCoreName mints a cluster-unique core name for a new replica, drawing
// the sequence number from the collection counter.
//
// Example:
//
//	name, err := a.BuildCoreName(ctx, "books", "shard1", assign.NRT)
//	// name == "books_shard1_replica_n1" on a fresh collection
func (a *Assigner) BuildCoreName(ctx context.Context, collection, shard string, replicaType ReplicaType) (string, error) {
	id, err := a.IncAndGetID(ctx, collection)
	if err != nil {
		return "", err
	}

	return BuildCoreName(collection, shard, replicaType, id), nil
}

// BuildCoreName formats a core name: "<collection>_<shard>_replica_<t><seq>".
func BuildCoreName(collection, shard string, replicaType ReplicaType, seq int) string {
	return naming.BuildCoreName(collection, shard, replicaType, seq)
}

// CounterNodePath returns the coordination-store path of a collection counter.
func CounterNodePath(collection string) string {
	return naming.CounterPath(collection)
}

// BuildShardID picks the shard for a new replica of coll; see AssignShard.
func BuildShardID(coll *Collection, numShards int) string {
	return naming.AssignShard(coll, numShards)
}

// AssignShard picks the shard a new replica of collection should join.
//
// numShards <= 0 means 1. While the collection has fewer active shards than
// numShards the next sequential shard name is returned; otherwise the active
// shard with the fewest replicas, ties broken by shard name.
func (a *Assigner) AssignShard(ctx context.Context, collection string, numShards int) (string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	state, err := a.clusterState(ctx)
	if err != nil {
		return "", err
	}

	return BuildShardID(state.Collection(collection), numShards), nil
}

// ResolveNodeSet returns the candidate nodes for new replicas, shuffling an
// explicit node set according to Config.NodeSetShuffle.
//
// Explicit nodes that are not live are dropped silently; use
// GetNodesForNewReplicas for strict validation.
func (a *Assigner) ResolveNodeSet(ctx context.Context, nodeSet NodeSet) ([]string, error) {
	return a.ResolveNodeSetShuffled(ctx, nodeSet, a.cfg.ShuffleNodeSet())
}

// ResolveNodeSetShuffled is ResolveNodeSet with an explicit shuffle flag.
//
// The flag only affects explicit node sets; nodes resolved from the live set
// are always shuffled and never include nodes whose data role is off.
func (a *Assigner) ResolveNodeSetShuffled(ctx context.Context, nodeSet NodeSet, shuffle bool) ([]string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	state, err := a.clusterState(ctx)
	if err != nil {
		return nil, err
	}

	return a.resolver.Resolve(ctx, state.LiveNodes, nodeSet, shuffle)
}

// GetNodesForNewReplicas places new replicas of one shard.
//
// When an explicit node set is given every node in it must be live, otherwise
// the call fails with ErrBadRequest naming the offending nodes and the live
// set; no placement is attempted.
//
// Returns:
//   - []ReplicaPosition: One position per requested replica
//   - error: ErrBadRequest, ErrAssignment or ErrServer
func (a *Assigner) GetNodesForNewReplicas(ctx context.Context, r ReplicaRequest) ([]ReplicaPosition, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	opts := []types.AssignRequestOption{types.WithReplicas(r.Replicas)}
	if r.NodeSet.IsExplicit() {
		state, err := a.clusterState(ctx)
		if err != nil {
			return nil, err
		}

		nodes := r.NodeSet.Nodes()
		if err := checkLive(nodes, state); err != nil {
			a.metrics.RecordAssignAttempt(a.strategyName(), resultBadRequest)
			a.logger.Warn("rejecting replica request", "collection", r.Collection, "shard", r.Shard, "error", err)

			return nil, err
		}
		opts = append(opts, types.WithNodes(nodes))
	}

	req, err := types.NewAssignRequest(r.Collection, []string{r.Shard}, opts...)
	if err != nil {
		if IsBadRequest(err) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	return a.assign(ctx, req)
}

// Assign runs a batch of requests through the configured strategy.
//
// Requests are processed in order and later requests see the placements of
// earlier ones. The result is complete or the call fails.
func (a *Assigner) Assign(ctx context.Context, requests ...AssignRequest) ([]ReplicaPosition, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.assign(ctx, requests...)
}

func (a *Assigner) assign(ctx context.Context, requests ...AssignRequest) ([]ReplicaPosition, error) {
	s := a.CreateStrategy()
	name := strategy.Name(s)

	start := time.Now()
	positions, err := s.Assign(ctx, a.cloud, requests...)
	a.metrics.RecordAssignDuration(name, time.Since(start).Seconds())

	result := resultOf(err)
	a.metrics.RecordAssignAttempt(name, result)
	switch result {
	case resultSuccess:
		a.metrics.RecordReplicasPlaced(name, len(positions))
		a.logger.Debug("replicas placed", "strategy", name, "requests", len(requests), "positions", len(positions))

		return positions, nil
	case resultServer:
		a.logger.Error("assignment failed", "strategy", name, "error", err)
	default:
		a.logger.Info("assignment rejected", "strategy", name, "result", result, "error", err)
	}

	return nil, err
}

// CreateStrategy returns the strategy for the configured placement plugin.
// Strategies are cheap and created per call.
func (a *Assigner) CreateStrategy() AssignStrategy {
	return strategy.New(a.factory, strategy.WithLogger(a.logger))
}

// VerifyDeleteCollection asks the strategy whether collection may be deleted.
//
// Returns:
//   - error: ErrBadRequest for an unknown collection, ErrAssignment on veto
func (a *Assigner) VerifyDeleteCollection(ctx context.Context, collection string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	state, err := a.clusterState(ctx)
	if err != nil {
		return err
	}
	coll := state.Collection(collection)
	if coll == nil {
		return fmt.Errorf("%w: collection %s does not exist", ErrBadRequest, collection)
	}

	return a.CreateStrategy().VerifyDeleteCollection(ctx, a.cloud, coll)
}

// VerifyDeleteReplicas asks the strategy whether the named replicas
// (core node names) of a shard may be deleted.
func (a *Assigner) VerifyDeleteReplicas(ctx context.Context, collection, shard string, replicaNames []string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	state, err := a.clusterState(ctx)
	if err != nil {
		return err
	}
	coll := state.Collection(collection)
	if coll == nil {
		return fmt.Errorf("%w: collection %s does not exist", ErrBadRequest, collection)
	}
	slice := coll.Slice(shard)
	if slice == nil {
		return fmt.Errorf("%w: shard %s does not exist in collection %s", ErrBadRequest, shard, collection)
	}

	replicas := make([]*Replica, 0, len(replicaNames))
	for _, name := range replicaNames {
		r, ok := slice.Replicas[name]
		if !ok || r == nil {
			return fmt.Errorf("%w: replica %s does not exist in %s/%s", ErrBadRequest, name, collection, shard)
		}
		replicas = append(replicas, r)
	}

	return a.CreateStrategy().VerifyDeleteReplicas(ctx, a.cloud, coll, shard, replicas)
}

// ComputeReplicaBalancing proposes replica moves (core name to destination
// node). Strategies without balancing support return an empty map.
func (a *Assigner) ComputeReplicaBalancing(ctx context.Context, nodes []string, maxSkew int) (map[string]string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	moves, err := a.CreateStrategy().ComputeReplicaBalancing(ctx, a.cloud, nodes, maxSkew)
	if err != nil {
		return nil, err
	}
	if moves == nil {
		moves = map[string]string{}
	}

	return moves, nil
}

func (a *Assigner) clusterState(ctx context.Context) (*ClusterState, error) {
	state, err := a.cloud.ClusterState(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read cluster state: %w", ErrServer, err)
	}

	return state, nil
}

func (a *Assigner) strategyName() string {
	return strategy.Name(a.CreateStrategy())
}

// withTimeout applies OperationTimeout, which SetDefaults keeps positive.
func (a *Assigner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.OperationTimeout)
}

// checkLive fails with ErrBadRequest unless every node is live.
func checkLive(nodes []string, state *ClusterState) error {
	var down []string
	for _, n := range nodes {
		if !state.IsLive(n) {
			down = append(down, n)
		}
	}
	if len(down) == 0 {
		return nil
	}

	return fmt.Errorf("%w: at least one of the node(s) specified %v are not currently active in %v, no action taken",
		ErrBadRequest, down, state.LiveNodes)
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, ErrBadRequest):
		return resultBadRequest
	case errors.Is(err, ErrAssignment):
		return resultAssignment
	default:
		return resultServer
	}
}
