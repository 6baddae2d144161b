package source

import (
	"context"
	"sync"

	"github.com/arloliu/assign/types"
)

// Static serves a fixed cluster snapshot.
type Static struct {
	mu    sync.RWMutex
	state *types.ClusterState
}

var _ types.ClusterStateProvider = (*Static)(nil)

// NewStatic creates a source serving state.
//
// Useful for tests and for callers that already hold a snapshot.
//
// Parameters:
//   - state: Snapshot to serve; nil serves an empty cluster
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic(&types.ClusterState{LiveNodes: []string{"n1", "n2"}})
//	cloud := assign.NewCloudManager(src, stateMgr)
func NewStatic(state *types.ClusterState) *Static {
	return &Static{state: orEmpty(state)}
}

// ClusterState returns the current snapshot. It never fails.
func (s *Static) ClusterState(_ context.Context) (*types.ClusterState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state, nil
}

// Update replaces the snapshot.
//
// Snapshots already handed out are unaffected, which keeps them immutable
// for the callers holding them.
func (s *Static) Update(state *types.ClusterState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = orEmpty(state)
}

func orEmpty(state *types.ClusterState) *types.ClusterState {
	if state != nil {
		return state
	}

	return &types.ClusterState{LiveNodes: []string{}, Collections: map[string]*types.Collection{}}
}
