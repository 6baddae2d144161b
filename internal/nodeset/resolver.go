// Package nodeset resolves the candidate node list for new replicas.
package nodeset

import (
	"context"
	"math/rand"
	"slices"
	"sync"

	"github.com/arloliu/assign/internal/noderoles"
	"github.com/arloliu/assign/types"
)

// Resolver turns an optional explicit node set into a candidate list.
//
// Resolver is safe for concurrent use; the shared random source is guarded by
// a mutex.
type Resolver struct {
	mgr types.DistribStateManager

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewResolver creates a Resolver reading node roles from mgr and shuffling with rnd.
//
// A nil rnd uses a time-seeded source.
func NewResolver(mgr types.DistribStateManager, rnd *rand.Rand) *Resolver {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // placement spread, not security
	}

	return &Resolver{mgr: mgr, rnd: rnd}
}

// Resolve returns the candidate nodes for new replicas.
//
// With an explicit node set the result is the explicit nodes that are live, in
// the order given, shuffled only when shuffle is true. Without one the result
// is every live node except those whose data role is off, always shuffled.
//
// Parameters:
//   - ctx: Context for the role query
//   - liveNodes: Currently live nodes
//   - nodeSet: Caller's node preference
//   - shuffle: Whether to shuffle an explicit node list
//
// Returns:
//   - []string: Candidate nodes, possibly empty
//   - error: ErrServer if node roles cannot be read
func (r *Resolver) Resolve(ctx context.Context, liveNodes []string, nodeSet types.NodeSet, shuffle bool) ([]string, error) {
	if nodeSet.IsExplicit() {
		out := make([]string, 0)
		for _, n := range nodeSet.Nodes() {
			if slices.Contains(liveNodes, n) {
				out = append(out, n)
			}
		}
		if shuffle {
			r.shuffle(out)
		}

		return out, nil
	}

	// Sort first so the result depends only on the random source, not on
	// the order the store listed live nodes in.
	sorted := slices.Clone(liveNodes)
	slices.Sort(sorted)
	out, err := noderoles.FilterNonDataNodes(ctx, r.mgr, slices.Compact(sorted))
	if err != nil {
		return nil, err
	}
	r.shuffle(out)

	return out, nil
}

func (r *Resolver) shuffle(nodes []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rnd.Shuffle(len(nodes), func(i, j int) {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	})
}
