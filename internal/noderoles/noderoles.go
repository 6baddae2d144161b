// Package noderoles reads and records node roles in the coordination store.
//
// A node holding role R in mode M is registered as an empty node at
// /node_roles/<R>/<M>/<node>.
package noderoles

import (
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/assign/internal/naming"
	"github.com/arloliu/assign/types"
)

// Well-known roles and modes.
const (
	RoleData = "data"

	ModeOn  = "on"
	ModeOff = "off"
)

// Path returns the registration directory for role and mode.
func Path(role, mode string) string {
	return naming.NodeRolesPath + "/" + role + "/" + mode
}

// NodesByRole lists the nodes registered with role in mode.
//
// A missing registration directory means no node has that role and yields an
// empty list.
//
// Parameters:
//   - ctx: Context for the store call
//   - mgr: Coordination store
//   - role: Role name, e.g. RoleData
//   - mode: Role mode, e.g. ModeOff
//
// Returns:
//   - []string: Sorted node names (never nil on success)
//   - error: Store failure
func NodesByRole(ctx context.Context, mgr types.DistribStateManager, role, mode string) ([]string, error) {
	nodes, err := mgr.ListData(ctx, Path(role, mode))
	if errors.Is(err, types.ErrNoNode) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list nodes with role %s=%s: %w", role, mode, err)
	}
	if nodes == nil {
		nodes = []string{}
	}

	return nodes, nil
}

// SetNodeRole registers node with role in mode, removing any registration of
// the same role in another mode.
func SetNodeRole(ctx context.Context, mgr types.DistribStateManager, node, role, mode string) error {
	for _, other := range []string{ModeOn, ModeOff} {
		if other == mode {
			continue
		}
		err := mgr.RemoveData(ctx, Path(role, other)+"/"+node, types.AnyVersion)
		if err != nil && !errors.Is(err, types.ErrNoNode) {
			return fmt.Errorf("clear role %s=%s for %s: %w", role, other, node, err)
		}
	}

	dir := Path(role, mode)
	if err := mgr.MakePath(ctx, dir); err != nil && !errors.Is(err, types.ErrAlreadyExists) {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	err := mgr.CreateData(ctx, dir+"/"+node, nil, types.Persistent)
	if err != nil && !errors.Is(err, types.ErrAlreadyExists) {
		return fmt.Errorf("register role %s=%s for %s: %w", role, mode, node, err)
	}

	return nil
}

// FilterNonDataNodes removes nodes whose data role is off.
//
// Input order is preserved. Any failure to read roles is returned wrapped in
// ErrServer; this function never silently falls back to the unfiltered list.
func FilterNonDataNodes(ctx context.Context, mgr types.DistribStateManager, nodes []string) ([]string, error) {
	noData, err := NodesByRole(ctx, mgr, RoleData, ModeOff)
	if err != nil {
		return nil, fmt.Errorf("%w: error fetching roles: %w", types.ErrServer, err)
	}
	if len(noData) == 0 {
		return append([]string{}, nodes...), nil
	}

	excluded := make(map[string]struct{}, len(noData))
	for _, n := range noData {
		excluded[n] = struct{}{}
	}

	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := excluded[n]; !ok {
			out = append(out, n)
		}
	}

	return out, nil
}
