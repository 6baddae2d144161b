package assign

import "github.com/arloliu/assign/types"

// Sentinel errors, re-exported from the types package so callers can match
// them with errors.Is without importing types.
var (
	ErrBadRequest = types.ErrBadRequest
	ErrAssignment = types.ErrAssignment
	ErrServer     = types.ErrServer

	ErrAlreadyExists = types.ErrAlreadyExists
	ErrBadVersion    = types.ErrBadVersion
	ErrNoNode        = types.ErrNoNode
	ErrUnsupported   = types.ErrUnsupported

	ErrInvalidConfig           = types.ErrInvalidConfig
	ErrCollectionRequired      = types.ErrCollectionRequired
	ErrShardNamesRequired      = types.ErrShardNamesRequired
	ErrInvalidReplicaCount     = types.ErrInvalidReplicaCount
	ErrStateManagerRequired    = types.ErrStateManagerRequired
	ErrCloudManagerRequired    = types.ErrCloudManagerRequired
	ErrUnknownPlacementPlugin  = types.ErrUnknownPlacementPlugin
	ErrCounterRetriesExhausted = types.ErrCounterRetriesExhausted
)

// IsAssignmentError reports whether err signals that no valid placement could be computed.
func IsAssignmentError(err error) bool {
	return types.IsAssignmentError(err)
}

// IsBadRequest reports whether err was caused by invalid caller input.
func IsBadRequest(err error) bool {
	return types.IsBadRequest(err)
}

// IsServerError reports whether err is an infrastructure failure.
func IsServerError(err error) bool {
	return types.IsServerError(err)
}
