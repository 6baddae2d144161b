package assign

import "github.com/arloliu/assign/types"

// Re-export types from the types package.
//
// The aliases give users a single import for the common API while internal
// packages depend on types directly, which avoids import cycles with the
// root package.
type (
	ReplicaType     = types.ReplicaType
	ReplicaCount    = types.ReplicaCount
	Replica         = types.Replica
	Slice           = types.Slice
	Collection      = types.Collection
	ClusterState    = types.ClusterState
	ReplicaPosition = types.ReplicaPosition
	AssignRequest   = types.AssignRequest
	NodeSet         = types.NodeSet
	VersionedData   = types.VersionedData
	CreateMode      = types.CreateMode
)

// Re-export interfaces from the types package for convenience.
type (
	AssignStrategy         = types.AssignStrategy
	PlacementPlugin        = types.PlacementPlugin
	PlacementPluginFactory = types.PlacementPluginFactory
	DistribStateManager    = types.DistribStateManager
	ClusterStateProvider   = types.ClusterStateProvider
	CloudManager           = types.CloudManager
	MetricsCollector       = types.MetricsCollector
	Logger                 = types.Logger
)

// Re-export constants from the types package.
const (
	NRT  = types.NRT
	TLOG = types.TLOG
	PULL = types.PULL

	Persistent = types.Persistent
	Ephemeral  = types.Ephemeral

	AnyVersion   = types.AnyVersion
	NodeSetEmpty = types.NodeSetEmpty
)

// ParseNodeSet parses a comma-separated node list; see types.ParseNodeSet.
func ParseNodeSet(spec string) NodeSet {
	return types.ParseNodeSet(spec)
}

// ExplicitNodeSet builds an explicit node set from a list; see types.ExplicitNodeSet.
func ExplicitNodeSet(nodes ...string) NodeSet {
	return types.ExplicitNodeSet(nodes...)
}

// AssignRequestOption configures an AssignRequest.
type AssignRequestOption = types.AssignRequestOption

// NewAssignRequest builds a validated placement request; see types.NewAssignRequest.
func NewAssignRequest(collection string, shards []string, opts ...AssignRequestOption) (AssignRequest, error) {
	return types.NewAssignRequest(collection, shards, opts...)
}

// WithReplicas sets the replica counts of a request.
func WithReplicas(count ReplicaCount) AssignRequestOption {
	return types.WithReplicas(count)
}

// WithNodes restricts a request to the given nodes.
func WithNodes(nodes []string) AssignRequestOption {
	return types.WithNodes(nodes)
}
