package testing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/assign/types"
)

// Op names a DistribStateManager operation for fault injection.
type Op string

// Operations that can be failed with FailNext.
const (
	OpHasData    Op = "hasData"
	OpMakePath   Op = "makePath"
	OpCreateData Op = "createData"
	OpGetData    Op = "getData"
	OpSetData    Op = "setData"
	OpListData   Op = "listData"
	OpRemoveData Op = "removeData"
)

type memNode struct {
	data    []byte
	version int64
}

// MemStateManager is an in-memory types.DistribStateManager.
//
// Versions follow ZooKeeper: a created node has version 0 and every write
// increments it. Per-path atomicity comes from xsync.Map.Compute, so version
// checks behave like the real store under concurrent callers.
type MemStateManager struct {
	nodes *xsync.Map[string, memNode]

	mu        sync.Mutex
	failures  map[Op][]error
	beforeSet func(path string)
}

var _ types.DistribStateManager = (*MemStateManager)(nil)

// NewMemStateManager creates an empty in-memory coordination store.
//
// Returns:
//   - *MemStateManager: Store containing only the root path
func NewMemStateManager() *MemStateManager {
	return &MemStateManager{
		nodes:    xsync.NewMap[string, memNode](),
		failures: make(map[Op][]error),
	}
}

// FailNext makes the next call of op return err. Calls queue up in order.
func (m *MemStateManager) FailNext(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failures[op] = append(m.failures[op], err)
}

// BeforeSetData installs a hook invoked before every SetData version check.
//
// Tests use it to simulate a concurrent writer winning the race.
func (m *MemStateManager) BeforeSetData(fn func(path string)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.beforeSet = fn
}

// Put writes data at path unconditionally, creating missing ancestors.
func (m *MemStateManager) Put(path string, data []byte) {
	for _, p := range ancestors(path) {
		m.nodes.LoadOrStore(p, memNode{})
	}
	m.nodes.Compute(path, func(old memNode, loaded bool) (memNode, xsync.ComputeOp) {
		if !loaded {
			return memNode{data: cloneBytes(data)}, xsync.UpdateOp
		}

		return memNode{data: cloneBytes(data), version: old.version + 1}, xsync.UpdateOp
	})
}

// Size returns the number of stored paths.
func (m *MemStateManager) Size() int {
	return m.nodes.Size()
}

// HasData reports whether path exists.
func (m *MemStateManager) HasData(ctx context.Context, path string) (bool, error) {
	if err := m.precheck(ctx, OpHasData, path); err != nil {
		return false, err
	}

	if path == "/" {
		return true, nil
	}
	_, ok := m.nodes.Load(path)

	return ok, nil
}

// MakePath creates path and every missing ancestor.
func (m *MemStateManager) MakePath(ctx context.Context, path string) error {
	if err := m.precheck(ctx, OpMakePath, path); err != nil {
		return err
	}

	for _, p := range ancestors(path) {
		m.nodes.LoadOrStore(p, memNode{})
	}
	if _, loaded := m.nodes.LoadOrStore(path, memNode{}); loaded {
		return fmt.Errorf("%w: %s", types.ErrAlreadyExists, path)
	}

	return nil
}

// CreateData creates path with data; the parent must exist.
func (m *MemStateManager) CreateData(ctx context.Context, path string, data []byte, _ types.CreateMode) error {
	if err := m.precheck(ctx, OpCreateData, path); err != nil {
		return err
	}

	if parent := parentOf(path); parent != "/" {
		if _, ok := m.nodes.Load(parent); !ok {
			return fmt.Errorf("%w: parent of %s", types.ErrNoNode, path)
		}
	}
	if _, loaded := m.nodes.LoadOrStore(path, memNode{data: cloneBytes(data)}); loaded {
		return fmt.Errorf("%w: %s", types.ErrAlreadyExists, path)
	}

	return nil
}

// GetData returns the data and version at path.
func (m *MemStateManager) GetData(ctx context.Context, path string) (*types.VersionedData, error) {
	if err := m.precheck(ctx, OpGetData, path); err != nil {
		return nil, err
	}

	n, ok := m.nodes.Load(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNoNode, path)
	}

	return &types.VersionedData{Data: cloneBytes(n.data), Version: n.version}, nil
}

// SetData replaces the data at path when the version matches.
func (m *MemStateManager) SetData(ctx context.Context, path string, data []byte, expectedVersion int64) error {
	if err := m.precheck(ctx, OpSetData, path); err != nil {
		return err
	}

	m.mu.Lock()
	hook := m.beforeSet
	m.mu.Unlock()
	if hook != nil {
		hook(path)
	}

	var opErr error
	m.nodes.Compute(path, func(old memNode, loaded bool) (memNode, xsync.ComputeOp) {
		switch {
		case !loaded:
			opErr = fmt.Errorf("%w: %s", types.ErrNoNode, path)
			return old, xsync.CancelOp
		case expectedVersion != types.AnyVersion && expectedVersion != old.version:
			opErr = fmt.Errorf("%w: %s expected %d, current %d", types.ErrBadVersion, path, expectedVersion, old.version)
			return old, xsync.CancelOp
		}

		return memNode{data: cloneBytes(data), version: old.version + 1}, xsync.UpdateOp
	})

	return opErr
}

// ListData returns the sorted names of the direct children of path.
func (m *MemStateManager) ListData(ctx context.Context, path string) ([]string, error) {
	if err := m.precheck(ctx, OpListData, path); err != nil {
		return nil, err
	}

	if path != "/" {
		if _, ok := m.nodes.Load(path); !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrNoNode, path)
		}
	}

	prefix := strings.TrimSuffix(path, "/") + "/"
	children := []string{}
	m.nodes.Range(func(key string, _ memNode) bool {
		if rest, ok := strings.CutPrefix(key, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			children = append(children, rest)
		}

		return true
	})
	sort.Strings(children)

	return children, nil
}

// RemoveData deletes path when the version matches and it has no children.
func (m *MemStateManager) RemoveData(ctx context.Context, path string, version int64) error {
	children, err := m.ListData(ctx, path)
	if err != nil {
		return err
	}
	if err := m.precheck(ctx, OpRemoveData, path); err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("cannot remove %s: node has %d children", path, len(children))
	}

	var opErr error
	m.nodes.Compute(path, func(old memNode, loaded bool) (memNode, xsync.ComputeOp) {
		switch {
		case !loaded:
			opErr = fmt.Errorf("%w: %s", types.ErrNoNode, path)
			return old, xsync.CancelOp
		case version != types.AnyVersion && version != old.version:
			opErr = fmt.Errorf("%w: %s expected %d, current %d", types.ErrBadVersion, path, version, old.version)
			return old, xsync.CancelOp
		}

		return old, xsync.DeleteOp
	})

	return opErr
}

func (m *MemStateManager) precheck(ctx context.Context, op Op, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/") || (len(path) > 1 && strings.HasSuffix(path, "/")) {
		return fmt.Errorf("invalid path %q", path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if queued := m.failures[op]; len(queued) > 0 {
		m.failures[op] = queued[1:]
		return queued[0]
	}

	return nil
}

// ancestors returns the proper ancestors of path, excluding the root, outermost first.
func ancestors(path string) []string {
	var out []string
	for i := 1; i < len(path); i++ {
		if path[i] == '/' {
			out = append(out, path[:i])
		}
	}

	return out
}

func parentOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/"
	}

	return path[:i]
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	return append([]byte{}, b...)
}
