package types

import "context"

// CreateMode controls the lifetime of a created path.
type CreateMode int

const (
	// Persistent paths survive the session that created them.
	Persistent CreateMode = iota
	// Ephemeral paths are removed when the creating session ends.
	Ephemeral
)

// String implements fmt.Stringer.
func (m CreateMode) String() string {
	if m == Ephemeral {
		return "EPHEMERAL"
	}

	return "PERSISTENT"
}

// AnyVersion disables the version check of SetData and RemoveData.
const AnyVersion int64 = -1

// VersionedData is the payload of a path together with its version.
type VersionedData struct {
	Data    []byte
	Version int64
}

// DistribStateManager is a hierarchical, versioned coordination store
// (ZooKeeper-like). Paths are slash-separated and absolute ("/collections/c1/counter").
//
// All calls block until the store answers. Implementations must be safe for
// concurrent use and must report the distinct signals below so callers can
// tell contention from failure:
//   - ErrAlreadyExists: CreateData/MakePath target already exists
//   - ErrBadVersion: SetData/RemoveData expected version is stale
//   - ErrNoNode: path (or, for CreateData, its parent) does not exist
//
// Any other error is an I/O or coordination failure.
type DistribStateManager interface {
	// HasData reports whether path exists.
	HasData(ctx context.Context, path string) (bool, error)

	// MakePath creates path and every missing ancestor with empty data.
	// Returns ErrAlreadyExists if path itself already existed.
	MakePath(ctx context.Context, path string) error

	// CreateData creates path with data. The parent must exist.
	CreateData(ctx context.Context, path string, data []byte, mode CreateMode) error

	// GetData returns the data and version stored at path.
	GetData(ctx context.Context, path string) (*VersionedData, error)

	// SetData replaces the data at path if its version equals expectedVersion
	// (or unconditionally with AnyVersion).
	SetData(ctx context.Context, path string, data []byte, expectedVersion int64) error

	// ListData returns the names of the direct children of path, sorted.
	ListData(ctx context.Context, path string) ([]string, error)

	// RemoveData deletes path if its version equals version (or with AnyVersion).
	RemoveData(ctx context.Context, path string, version int64) error
}
