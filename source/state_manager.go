package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arloliu/assign/internal/naming"
	"github.com/arloliu/assign/types"
)

// StateManager reads cluster snapshots from a coordination store.
//
// Each call to ClusterState reads the store afresh; there is no caching.
type StateManager struct {
	mgr types.DistribStateManager
}

var _ types.ClusterStateProvider = (*StateManager)(nil)

// NewStateManager creates a source reading from mgr.
func NewStateManager(mgr types.DistribStateManager) *StateManager {
	return &StateManager{mgr: mgr}
}

// ClusterState reads live nodes and every collection state document.
//
// Collections without a state document (for example ones that only hold a
// counter so far) are omitted.
func (s *StateManager) ClusterState(ctx context.Context) (*types.ClusterState, error) {
	live, err := listOrEmpty(ctx, s.mgr, naming.LiveNodesPath)
	if err != nil {
		return nil, fmt.Errorf("list live nodes: %w", err)
	}

	names, err := listOrEmpty(ctx, s.mgr, naming.CollectionsPath)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	state := &types.ClusterState{
		LiveNodes:   live,
		Collections: make(map[string]*types.Collection, len(names)),
	}
	for _, name := range names {
		coll, err := ReadCollection(ctx, s.mgr, name)
		if errors.Is(err, types.ErrNoNode) {
			continue
		}
		if err != nil {
			return nil, err
		}
		state.Collections[name] = coll
	}

	return state, nil
}

// ReadCollection decodes the state document of a collection.
//
// Map keys are authoritative: slice names, replica names and their
// collection/shard fields are filled in from the document structure.
// Null slice and replica entries are dropped.
//
// Returns:
//   - *types.Collection: Decoded collection
//   - error: ErrNoNode if the collection has no state document
func ReadCollection(ctx context.Context, mgr types.DistribStateManager, name string) (*types.Collection, error) {
	data, err := mgr.GetData(ctx, naming.StatePath(name))
	if err != nil {
		return nil, err
	}

	var coll types.Collection
	if err := json.Unmarshal(data.Data, &coll); err != nil {
		return nil, fmt.Errorf("decode state of collection %s: %w", name, err)
	}

	coll.Name = name
	if coll.Slices == nil {
		coll.Slices = make(map[string]*types.Slice)
	}
	for shard, slice := range coll.Slices {
		if slice == nil {
			delete(coll.Slices, shard)
			continue
		}
		slice.Name = shard
		if slice.Replicas == nil {
			slice.Replicas = make(map[string]*types.Replica)
		}
		for rn, r := range slice.Replicas {
			if r == nil {
				delete(slice.Replicas, rn)
				continue
			}
			r.Name = rn
			r.Collection = name
			r.Shard = shard
		}
	}

	return &coll, nil
}

// WriteCollection stores the state document of a collection, creating the
// collection path when missing.
func WriteCollection(ctx context.Context, mgr types.DistribStateManager, coll *types.Collection) error {
	data, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("encode state of collection %s: %w", coll.Name, err)
	}

	dir := naming.CollectionPath(coll.Name)
	if err := mgr.MakePath(ctx, dir); err != nil && !errors.Is(err, types.ErrAlreadyExists) {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	path := naming.StatePath(coll.Name)
	err = mgr.CreateData(ctx, path, data, types.Persistent)
	if errors.Is(err, types.ErrAlreadyExists) {
		err = mgr.SetData(ctx, path, data, types.AnyVersion)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// RegisterLiveNode marks node as live. Registering twice is not an error.
func RegisterLiveNode(ctx context.Context, mgr types.DistribStateManager, node string) error {
	if err := mgr.MakePath(ctx, naming.LiveNodesPath); err != nil && !errors.Is(err, types.ErrAlreadyExists) {
		return fmt.Errorf("create %s: %w", naming.LiveNodesPath, err)
	}

	err := mgr.CreateData(ctx, naming.LiveNodePath(node), nil, types.Persistent)
	if err != nil && !errors.Is(err, types.ErrAlreadyExists) {
		return fmt.Errorf("register live node %s: %w", node, err)
	}

	return nil
}

// UnregisterLiveNode removes node from the live set. Removing an unknown node is not an error.
func UnregisterLiveNode(ctx context.Context, mgr types.DistribStateManager, node string) error {
	err := mgr.RemoveData(ctx, naming.LiveNodePath(node), types.AnyVersion)
	if err != nil && !errors.Is(err, types.ErrNoNode) {
		return fmt.Errorf("unregister live node %s: %w", node, err)
	}

	return nil
}

func listOrEmpty(ctx context.Context, mgr types.DistribStateManager, path string) ([]string, error) {
	children, err := mgr.ListData(ctx, path)
	if errors.Is(err, types.ErrNoNode) {
		return []string{}, nil
	}

	return children, err
}
