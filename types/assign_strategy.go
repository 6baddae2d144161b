package types

import "context"

// AssignStrategy maps assign requests to concrete replica placements.
//
// Strategies are created per assignment call by the strategy factory and hold
// no persistent state of their own beyond what a placement plugin holds.
//
// Implementations must:
//   - Return a complete placement for every requested replica, or an error
//     wrapping ErrAssignment. Partial results are never returned.
//   - Process batched requests sequentially: placements made for an earlier
//     request count as applied cluster state for later requests, so request
//     order affects the result.
//   - Never mutate the ClusterState obtained from the CloudManager.
type AssignStrategy interface {
	// Assign computes placements for the given requests.
	//
	// Parameters:
	//   - ctx: Context for cancellation of coordination-store reads
	//   - mgr: Source of cluster state and coordination store
	//   - requests: Requests processed in order
	//
	// Returns:
	//   - []ReplicaPosition: Placements for every requested replica
	//   - error: ErrAssignment when no valid placement exists, ErrServer on I/O failure
	Assign(ctx context.Context, mgr CloudManager, requests ...AssignRequest) ([]ReplicaPosition, error)

	// ComputeReplicaBalancing proposes replica moves across nodes.
	//
	// Strategies without balancing support return an empty, non-nil map.
	//
	// Parameters:
	//   - nodes: Nodes to balance across
	//   - maxSkew: Maximum tolerated difference in replica count between nodes
	//
	// Returns:
	//   - map[string]string: Replica core name to destination node
	//   - error: ErrAssignment when no valid balancing exists
	ComputeReplicaBalancing(ctx context.Context, mgr CloudManager, nodes []string, maxSkew int) (map[string]string, error)

	// VerifyDeleteCollection vetoes a collection deletion by returning an error
	// wrapping ErrAssignment. Strategies without constraints return nil.
	VerifyDeleteCollection(ctx context.Context, mgr CloudManager, collection *Collection) error

	// VerifyDeleteReplicas vetoes deleting the given replicas of a shard.
	VerifyDeleteReplicas(ctx context.Context, mgr CloudManager, collection *Collection, shard string, replicas []*Replica) error
}
