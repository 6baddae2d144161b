package types

import (
	"fmt"
	"strings"
)

// ReplicaType identifies how a replica maintains its copy of the shard.
type ReplicaType int

const (
	// NRT replicas index every update locally (near-real-time).
	NRT ReplicaType = iota
	// TLOG replicas keep a transaction log and replicate the index from the leader.
	TLOG
	// PULL replicas only replicate the index and never become leader.
	PULL
)

var replicaTypeNames = [...]string{"NRT", "TLOG", "PULL"}

// String returns the upper-case replica type name.
func (t ReplicaType) String() string {
	if t < NRT || t > PULL {
		return fmt.Sprintf("ReplicaType(%d)", int(t))
	}

	return replicaTypeNames[t]
}

// Code returns the single lowercase character used in core names ("n", "t", "p").
func (t ReplicaType) Code() string {
	return strings.ToLower(t.String()[:1])
}

// ParseReplicaType parses a replica type name, case-insensitively.
//
// Parameters:
//   - s: Replica type name ("nrt", "TLOG", "pull")
//
// Returns:
//   - ReplicaType: Parsed type
//   - error: Non-nil if s is not a known type
func ParseReplicaType(s string) (ReplicaType, error) {
	for i, name := range replicaTypeNames {
		if strings.EqualFold(s, name) {
			return ReplicaType(i), nil
		}
	}

	return NRT, fmt.Errorf("unknown replica type %q", s)
}

// MarshalText encodes the type by name so state documents stay readable.
func (t ReplicaType) MarshalText() ([]byte, error) {
	if t < NRT || t > PULL {
		return nil, fmt.Errorf("unknown replica type %d", int(t))
	}

	return []byte(t.String()), nil
}

// UnmarshalText decodes a replica type name.
func (t *ReplicaType) UnmarshalText(text []byte) error {
	parsed, err := ParseReplicaType(string(text))
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}

// ReplicaCount holds the number of replicas requested per replica type.
//
// The zero value is an empty count.
type ReplicaCount struct {
	NRT  int `json:"nrt" yaml:"nrt"`
	TLOG int `json:"tlog" yaml:"tlog"`
	PULL int `json:"pull" yaml:"pull"`
}

// Get returns the count for the given replica type.
func (c ReplicaCount) Get(t ReplicaType) int {
	switch t {
	case NRT:
		return c.NRT
	case TLOG:
		return c.TLOG
	case PULL:
		return c.PULL
	default:
		return 0
	}
}

// Total returns the number of replicas across all types.
func (c ReplicaCount) Total() int {
	return c.NRT + c.TLOG + c.PULL
}

// IsEmpty reports whether every count is zero.
func (c ReplicaCount) IsEmpty() bool {
	return c.NRT == 0 && c.TLOG == 0 && c.PULL == 0
}

// Validate rejects negative counts.
func (c ReplicaCount) Validate() error {
	if c.NRT < 0 || c.TLOG < 0 || c.PULL < 0 {
		return fmt.Errorf("%w: %w: %s", ErrBadRequest, ErrInvalidReplicaCount, c)
	}

	return nil
}

// Types returns every replica type in placement order (NRT, TLOG, PULL).
func (c ReplicaCount) Types() []ReplicaType {
	return []ReplicaType{NRT, TLOG, PULL}
}

// String implements fmt.Stringer.
func (c ReplicaCount) String() string {
	return fmt.Sprintf("ReplicaCount{NRT=%d, TLOG=%d, PULL=%d}", c.NRT, c.TLOG, c.PULL)
}

// Replica is a single copy of a shard hosted on one node.
type Replica struct {
	// Name is the core node name, unique within the collection (e.g. "core_node3").
	Name string `json:"name"`

	// CoreName is the cluster-wide unique core name (e.g. "coll_shard1_replica_n3").
	CoreName string `json:"core"`

	// Collection and Shard locate the replica in the topology.
	Collection string `json:"collection"`
	Shard      string `json:"shard"`

	// Node is the node hosting the replica.
	Node string `json:"node_name"`

	Type  ReplicaType `json:"type"`
	State string      `json:"state,omitempty"`
}

// ReplicaPosition is a placement decision produced by an AssignStrategy.
//
// Positions are never mutated after creation.
type ReplicaPosition struct {
	Collection string
	Shard      string

	// Index is the sequence of the replica within its shard for the assignment batch.
	Index int

	Type ReplicaType
	Node string
}

// String implements fmt.Stringer.
func (p ReplicaPosition) String() string {
	return fmt.Sprintf("%s/%s[%d] %s -> %s", p.Collection, p.Shard, p.Index, p.Type, p.Node)
}
