// Package types provides core type definitions and interfaces for the assign library.
//
// This package contains shared types that are used across multiple packages in the
// library. By keeping these types in a separate package, we avoid import cycles
// between the root assign package and its strategy, placement and state implementations.
//
// Key types:
//   - ClusterState: Read-only snapshot of live nodes and collection topology
//   - AssignRequest: Validated request for new replica placements
//   - ReplicaPosition: A single placement decision (shard, type, node, index)
//   - AssignStrategy: Pluggable placement strategy contract
//   - PlacementPlugin: Cluster-configured placement policy
//   - DistribStateManager: Versioned hierarchical coordination store
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
