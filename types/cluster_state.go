package types

import (
	"slices"
	"sort"
)

// Slice states.
const (
	SliceStateActive       = "active"
	SliceStateInactive     = "inactive"
	SliceStateConstruction = "construction"
	SliceStateRecovery     = "recovery"
)

// Slice is a horizontal partition of a collection, hosted by one or more replicas.
type Slice struct {
	Name string `json:"name"`

	// State is one of the SliceState constants. Empty means active.
	State string `json:"state,omitempty"`

	// Replicas maps core node name to replica.
	Replicas map[string]*Replica `json:"replicas"`
}

// IsActive reports whether the slice accepts new replicas.
func (s *Slice) IsActive() bool {
	return s != nil && (s.State == "" || s.State == SliceStateActive)
}

// ReplicaCount returns the number of replicas of the slice.
func (s *Slice) ReplicaCount() int {
	if s == nil {
		return 0
	}

	return len(s.Replicas)
}

// SortedReplicas returns the non-nil replicas ordered by core node name.
func (s *Slice) SortedReplicas() []*Replica {
	if s == nil {
		return nil
	}

	out := make([]*Replica, 0, len(s.Replicas))
	for _, r := range s.Replicas {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Collection is a logical dataset partitioned into slices.
type Collection struct {
	Name string `json:"name"`

	// Slices maps shard name to slice.
	Slices map[string]*Slice `json:"shards"`

	// Config holds free-form collection properties (e.g. "withCollection").
	Config map[string]string `json:"config,omitempty"`
}

// Slice returns the named slice, or nil.
func (c *Collection) Slice(name string) *Slice {
	if c == nil {
		return nil
	}

	return c.Slices[name]
}

// ActiveSlices returns the active slices ordered by name.
func (c *Collection) ActiveSlices() []*Slice {
	if c == nil {
		return nil
	}

	out := make([]*Slice, 0, len(c.Slices))
	for _, s := range c.Slices {
		if s != nil && s.IsActive() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Replicas returns every replica of the collection, ordered by shard then core node name.
func (c *Collection) Replicas() []*Replica {
	if c == nil {
		return nil
	}

	names := make([]string, 0, len(c.Slices))
	for name := range c.Slices {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []*Replica
	for _, name := range names {
		out = append(out, c.Slices[name].SortedReplicas()...)
	}

	return out
}

// ClusterState is a read-only snapshot of the cluster.
//
// Consumers must treat a snapshot as immutable; strategies keep their own
// working counts instead of mutating it.
type ClusterState struct {
	// LiveNodes is the set of nodes that were live when the snapshot was taken.
	LiveNodes []string `json:"live_nodes"`

	// Collections maps collection name to topology.
	Collections map[string]*Collection `json:"collections"`
}

// IsLive reports whether node was live at snapshot time.
func (cs *ClusterState) IsLive(node string) bool {
	if cs == nil {
		return false
	}

	return slices.Contains(cs.LiveNodes, node)
}

// LiveNodeSet returns the live nodes as a set.
func (cs *ClusterState) LiveNodeSet() map[string]struct{} {
	set := make(map[string]struct{})
	if cs == nil {
		return set
	}
	for _, n := range cs.LiveNodes {
		set[n] = struct{}{}
	}

	return set
}

// SortedLiveNodes returns a sorted copy of the live nodes.
func (cs *ClusterState) SortedLiveNodes() []string {
	if cs == nil {
		return nil
	}

	out := slices.Clone(cs.LiveNodes)
	slices.Sort(out)

	return slices.Compact(out)
}

// Collection returns the named collection, or nil.
func (cs *ClusterState) Collection(name string) *Collection {
	if cs == nil {
		return nil
	}

	return cs.Collections[name]
}

// ReplicasOnNode counts replicas hosted by each node across all collections.
func (cs *ClusterState) ReplicasOnNode() map[string]int {
	counts := make(map[string]int)
	cs.EachReplica(func(_ *Collection, _ *Slice, r *Replica) {
		counts[r.Node]++
	})

	return counts
}

// EachReplica calls fn for every replica of the snapshot.
//
// Nil collections, slices and replicas, which a malformed state document can
// produce, are skipped. Iteration order is unspecified.
func (cs *ClusterState) EachReplica(fn func(coll *Collection, slice *Slice, r *Replica)) {
	if cs == nil {
		return
	}
	for _, coll := range cs.Collections {
		if coll == nil {
			continue
		}
		for _, s := range coll.Slices {
			if s == nil {
				continue
			}
			for _, r := range s.Replicas {
				if r != nil {
					fn(coll, s, r)
				}
			}
		}
	}
}
