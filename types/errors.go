package types

import "errors"

// Sentinel errors for the assign library.
//
// These errors provide type-safe error checking using errors.Is().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by kind (request, assignment, coordination, construction)
//   - Use consistent messages across similar error types

// Request and assignment errors - surfaced to callers of the placement API.
var (
	// ErrBadRequest is returned when the caller supplied input that can never succeed
	// as given, e.g. an explicit node set containing nodes that are not live.
	// Callers must change the input before retrying.
	ErrBadRequest = errors.New("bad request")

	// ErrAssignment is returned when a strategy cannot compute a valid placement
	// for every requested replica. Callers may retry after cluster state or
	// input changes, but should not blindly retry unchanged.
	ErrAssignment = errors.New("assignment failed")

	// ErrServer wraps infrastructure failures: coordination store I/O, role
	// queries, cancellation. Never retried by this library.
	ErrServer = errors.New("server error")
)

// Coordination store errors - signals returned by DistribStateManager implementations.
var (
	// ErrAlreadyExists is returned when creating a path that already exists.
	ErrAlreadyExists = errors.New("node already exists")

	// ErrBadVersion is returned when a version-checked write observes a newer version.
	ErrBadVersion = errors.New("bad version")

	// ErrNoNode is returned when a path does not exist.
	ErrNoNode = errors.New("node does not exist")

	// ErrUnsupported is returned for operations the backing store cannot provide.
	ErrUnsupported = errors.New("operation not supported")
)

// Construction errors - returned while building requests, strategies or the assigner.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCollectionRequired is returned when an assign request has no collection name.
	ErrCollectionRequired = errors.New("the collection name cannot be empty")

	// ErrShardNamesRequired is returned when an assign request has no shard names.
	ErrShardNamesRequired = errors.New("the shard names cannot be empty")

	// ErrInvalidReplicaCount is returned when a replica count is negative.
	// It is always wrapped together with ErrBadRequest.
	ErrInvalidReplicaCount = errors.New("replica counts cannot be negative")

	// ErrStateManagerRequired is returned when no coordination store was provided.
	ErrStateManagerRequired = errors.New("distributed state manager is required")

	// ErrCloudManagerRequired is returned when no cloud manager was provided.
	ErrCloudManagerRequired = errors.New("cloud manager is required")

	// ErrUnknownPlacementPlugin is returned when the configured plugin name is not registered.
	ErrUnknownPlacementPlugin = errors.New("unknown placement plugin")

	// ErrCounterRetriesExhausted is returned only when a retry bound is configured
	// for the distributed counter and every attempt lost the version race.
	ErrCounterRetriesExhausted = errors.New("counter retries exhausted")
)

// IsAssignmentError reports whether err signals that no valid placement could be computed.
func IsAssignmentError(err error) bool {
	return errors.Is(err, ErrAssignment)
}

// IsBadRequest reports whether err was caused by invalid caller input.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsServerError reports whether err is an infrastructure failure.
func IsServerError(err error) bool {
	return errors.Is(err, ErrServer)
}
