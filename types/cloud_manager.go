package types

import "context"

// ClusterStateProvider returns the current cluster state snapshot.
type ClusterStateProvider interface {
	// ClusterState returns a snapshot that the caller must treat as immutable.
	ClusterState(ctx context.Context) (*ClusterState, error)
}

// CloudManager bundles the collaborators a strategy needs: the cluster
// snapshot and the coordination store.
type CloudManager interface {
	ClusterStateProvider

	// StateManager returns the coordination store.
	StateManager() DistribStateManager
}
