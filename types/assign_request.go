package types

import "fmt"

// AssignRequest asks a strategy to place new replicas for one or more shards
// of a collection.
//
// Requests are immutable once built; construct them with NewAssignRequest.
type AssignRequest struct {
	collectionName string
	shardNames     []string
	nodes          []string
	numReplicas    ReplicaCount
}

// AssignRequestOption configures optional AssignRequest fields.
type AssignRequestOption func(*AssignRequest)

// WithNodes restricts candidate nodes to the given list.
//
// A nil list (the default) means the strategy resolves candidates from the
// cluster state. A non-nil empty list means no node is eligible.
func WithNodes(nodes []string) AssignRequestOption {
	return func(r *AssignRequest) {
		if nodes == nil {
			r.nodes = nil
			return
		}
		r.nodes = append([]string{}, nodes...)
	}
}

// WithReplicas sets the number of replicas to place per shard.
//
// Defaults to an empty ReplicaCount.
func WithReplicas(count ReplicaCount) AssignRequestOption {
	return func(r *AssignRequest) {
		r.numReplicas = count
	}
}

// NewAssignRequest builds a validated AssignRequest.
//
// Parameters:
//   - collectionName: Target collection (required)
//   - shardNames: Ordered shard names to place replicas for (required, non-empty)
//   - opts: Optional WithNodes / WithReplicas
//
// Returns:
//   - AssignRequest: Immutable request
//   - error: ErrCollectionRequired, ErrShardNamesRequired, or ErrBadRequest
//     wrapping ErrInvalidReplicaCount when a count is negative
//
// Example:
//
//	req, err := types.NewAssignRequest("books", []string{"shard1"},
//	    types.WithReplicas(types.ReplicaCount{NRT: 2}),
//	)
func NewAssignRequest(collectionName string, shardNames []string, opts ...AssignRequestOption) (AssignRequest, error) {
	if collectionName == "" {
		return AssignRequest{}, ErrCollectionRequired
	}
	if len(shardNames) == 0 {
		return AssignRequest{}, ErrShardNamesRequired
	}
	for i, s := range shardNames {
		if s == "" {
			return AssignRequest{}, fmt.Errorf("%w: shard name at index %d is empty", ErrShardNamesRequired, i)
		}
	}

	r := AssignRequest{
		collectionName: collectionName,
		shardNames:     append([]string{}, shardNames...),
	}
	for _, opt := range opts {
		opt(&r)
	}
	if err := r.numReplicas.Validate(); err != nil {
		return AssignRequest{}, err
	}

	return r, nil
}

// CollectionName returns the target collection.
func (r AssignRequest) CollectionName() string {
	return r.collectionName
}

// ShardNames returns a copy of the shard names.
func (r AssignRequest) ShardNames() []string {
	return append([]string{}, r.shardNames...)
}

// Nodes returns a copy of the explicit candidate nodes, or nil when none were given.
func (r AssignRequest) Nodes() []string {
	if r.nodes == nil {
		return nil
	}

	return append([]string{}, r.nodes...)
}

// HasNodes reports whether an explicit candidate list was given.
func (r AssignRequest) HasNodes() bool {
	return r.nodes != nil
}

// NumReplicas returns the requested replica counts.
func (r AssignRequest) NumReplicas() ReplicaCount {
	return r.numReplicas
}

// String implements fmt.Stringer.
func (r AssignRequest) String() string {
	return fmt.Sprintf("AssignRequest{collection=%s, shards=%v, nodes=%v, %s}",
		r.collectionName, r.shardNames, r.nodes, r.numReplicas)
}
