package types

import "strings"

// NodeSetEmpty is the sentinel node-set value meaning "an explicit empty list",
// as opposed to an absent node set which means "no preference".
const NodeSetEmpty = "EMPTY"

// NodeSet is an optional explicit list of candidate nodes.
//
// The zero value means no preference: candidates come from the live nodes.
// An explicit NodeSet may be empty, in which case no node is eligible.
type NodeSet struct {
	nodes    []string
	explicit bool
}

// ParseNodeSet parses a comma-separated node list.
//
// Entries are trimmed, empty entries dropped and duplicates removed keeping the
// first occurrence. The NodeSetEmpty sentinel yields an explicit empty set.
// An empty string yields the zero (no preference) value.
//
// Parameters:
//   - spec: Comma-separated node names, NodeSetEmpty, or ""
//
// Returns:
//   - NodeSet: Parsed node set
//
// Example:
//
//	ns := types.ParseNodeSet("node1:8983_solr, node2:8983_solr,node1:8983_solr")
//	// ns.Nodes() == []string{"node1:8983_solr", "node2:8983_solr"}
func ParseNodeSet(spec string) NodeSet {
	if spec == "" {
		return NodeSet{}
	}
	if spec == NodeSetEmpty {
		return NodeSet{nodes: []string{}, explicit: true}
	}

	return ExplicitNodeSet(strings.Split(spec, ",")...)
}

// ExplicitNodeSet builds an explicit node set from a list, deduplicating while
// preserving insertion order. Calling it with no nodes yields an explicit empty set.
func ExplicitNodeSet(nodes ...string) NodeSet {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	return NodeSet{nodes: out, explicit: true}
}

// IsExplicit reports whether the caller supplied a node list (possibly empty).
func (ns NodeSet) IsExplicit() bool {
	return ns.explicit
}

// Nodes returns a copy of the explicit nodes, or nil when no preference was given.
func (ns NodeSet) Nodes() []string {
	if !ns.explicit {
		return nil
	}

	return append([]string{}, ns.nodes...)
}

// String implements fmt.Stringer.
func (ns NodeSet) String() string {
	if !ns.explicit {
		return "<any>"
	}
	if len(ns.nodes) == 0 {
		return NodeSetEmpty
	}

	return strings.Join(ns.nodes, ",")
}
