// Package hash provides an xxh3 consistent hash ring over node names.
package hash

import (
	"cmp"
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"
)

// Ring maps keys to nodes with consistent hashing and virtual nodes.
//
// Adding or removing a node only moves the keys adjacent to its virtual
// nodes, so shard affinity survives cluster membership changes.
type Ring struct {
	// points are the virtual nodes, sorted by hash
	points []point

	// nodes holds the unique node names in insertion order
	nodes []string

	seed uint64
}

type point struct {
	hash    uint64
	nodeIdx int
}

// NewRing creates a consistent hash ring.
//
// Parameters:
//   - nodes: Node names to place on the ring; duplicates are ignored
//   - virtualNodes: Virtual nodes per node (higher = better distribution)
//   - seed: Hash seed (0 for the unseeded hash)
//
// Returns:
//   - *Ring: Initialized hash ring
//
// Example:
//
//	ring := hash.NewRing([]string{"node1:8983_solr", "node2:8983_solr"}, 150, 0)
//	owner := ring.Get("books/shard1")
func NewRing(nodes []string, virtualNodes int, seed uint64) *Ring {
	r := &Ring{seed: seed}

	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		r.nodes = append(r.nodes, n)
	}

	r.points = make([]point, 0, len(r.nodes)*virtualNodes)
	for idx, n := range r.nodes {
		base := r.hash(n)
		var ib [8]byte
		for i := range virtualNodes {
			binary.LittleEndian.PutUint64(ib[:], uint64(i)) //nolint:gosec
			r.points = append(r.points, point{hash: xxh3.HashSeed(ib[:], base), nodeIdx: idx})
		}
	}
	slices.SortFunc(r.points, func(a, b point) int {
		return cmp.Compare(a.hash, b.hash)
	})

	return r
}

// Get returns the node owning key, or "" for an empty ring.
func (r *Ring) Get(key string) string {
	if len(r.points) == 0 {
		return ""
	}

	return r.nodes[r.points[r.search(r.hash(key))].nodeIdx]
}

// Successors returns up to n distinct nodes in ring order starting at the
// owner of key. The first element equals Get(key).
func (r *Ring) Successors(key string, n int) []string {
	if len(r.points) == 0 || n <= 0 {
		return nil
	}
	n = min(n, len(r.nodes))

	out := make([]string, 0, n)
	taken := make([]bool, len(r.nodes))
	start := r.search(r.hash(key))
	for i := 0; i < len(r.points) && len(out) < n; i++ {
		p := r.points[(start+i)%len(r.points)]
		if taken[p.nodeIdx] {
			continue
		}
		taken[p.nodeIdx] = true
		out = append(out, r.nodes[p.nodeIdx])
	}

	return out
}

// Nodes returns a copy of the unique nodes on the ring.
func (r *Ring) Nodes() []string {
	return append([]string(nil), r.nodes...)
}

// Size returns the total number of virtual nodes on the ring.
func (r *Ring) Size() int {
	return len(r.points)
}

// search returns the index of the first point with hash >= target, wrapping to 0.
func (r *Ring) search(target uint64) int {
	idx, _ := slices.BinarySearchFunc(r.points, target, func(p point, t uint64) int {
		return cmp.Compare(p.hash, t)
	})
	if idx >= len(r.points) {
		idx = 0
	}

	return idx
}

func (r *Ring) hash(key string) uint64 {
	if r.seed != 0 {
		return xxh3.HashStringSeed(key, r.seed)
	}

	return xxh3.HashString(key)
}
