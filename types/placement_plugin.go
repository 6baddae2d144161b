package types

import "context"

// PlacementPlugin is a cluster-configured placement policy.
//
// A plugin only needs to compute placements; balancing and delete verification
// are optional capabilities discovered through ReplicaBalancer and DeleteVerifier.
type PlacementPlugin interface {
	// Name identifies the plugin in logs and metrics.
	Name() string

	// ComputePlacements places every replica of every request.
	//
	// Requests are processed in order and each request must see the placements
	// of the previous ones. The state must not be mutated.
	ComputePlacements(ctx context.Context, state *ClusterState, requests []AssignRequest) ([]ReplicaPosition, error)
}

// ReplicaBalancer is implemented by plugins that can rebalance replicas.
type ReplicaBalancer interface {
	// ComputeBalancing returns replica core name to destination node moves.
	ComputeBalancing(ctx context.Context, state *ClusterState, nodes []string, maxSkew int) (map[string]string, error)
}

// DeleteVerifier is implemented by plugins that constrain deletions.
type DeleteVerifier interface {
	// VerifyDeleteCollection returns an error if the collection must not be deleted.
	VerifyDeleteCollection(ctx context.Context, state *ClusterState, collection *Collection) error

	// VerifyDeleteReplicas returns an error if the replicas must not be deleted.
	VerifyDeleteReplicas(ctx context.Context, state *ClusterState, collection *Collection, shard string, replicas []*Replica) error
}

// PlacementPluginFactory produces the cluster-wide placement plugin.
//
// CreatePluginInstance returns nil when no plugin is configured, in which case
// the default placement heuristic is used.
type PlacementPluginFactory interface {
	CreatePluginInstance() PlacementPlugin
}

// PlacementPluginFactoryFunc adapts a function to PlacementPluginFactory.
type PlacementPluginFactoryFunc func() PlacementPlugin

// CreatePluginInstance calls f.
func (f PlacementPluginFactoryFunc) CreatePluginInstance() PlacementPlugin {
	return f()
}
