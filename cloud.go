package assign

import (
	"github.com/arloliu/assign/source"
	"github.com/arloliu/assign/types"
)

type cloudManager struct {
	types.ClusterStateProvider
	store types.DistribStateManager
}

// NewCloudManager pairs a cluster-state source with the coordination store.
//
// A nil provider reads the cluster state from store itself.
//
// Parameters:
//   - provider: Source of cluster snapshots, or nil
//   - store: Coordination store (required)
//
// Returns:
//   - CloudManager: Combined collaborator handed to strategies
//   - error: ErrStateManagerRequired if store is nil
//
// Example:
//
//	store, _ := kvstate.Open(ctx, js, cfg.KVBucket)
//	cloud, _ := assign.NewCloudManager(nil, store)
func NewCloudManager(provider ClusterStateProvider, store DistribStateManager) (CloudManager, error) {
	if store == nil {
		return nil, ErrStateManagerRequired
	}
	if provider == nil {
		provider = source.NewStateManager(store)
	}

	return &cloudManager{ClusterStateProvider: provider, store: store}, nil
}

func (c *cloudManager) StateManager() types.DistribStateManager {
	return c.store
}

var _ types.CloudManager = (*cloudManager)(nil)
