package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			ErrBadRequest,
			ErrAssignment,
			ErrServer,
			ErrAlreadyExists,
			ErrBadVersion,
			ErrNoNode,
			ErrUnsupported,
			ErrInvalidConfig,
			ErrCollectionRequired,
			ErrShardNamesRequired,
			ErrInvalidReplicaCount,
			ErrStateManagerRequired,
			ErrCloudManagerRequired,
			ErrUnknownPlacementPlugin,
			ErrCounterRetriesExhausted,
		}

		for i, a := range allErrors {
			for j, b := range allErrors {
				if i == j {
					continue
				}
				require.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	})

	t.Run("classification survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("place shard1: %w", fmt.Errorf("%w: not enough nodes", ErrAssignment))
		require.True(t, IsAssignmentError(err))
		require.False(t, IsBadRequest(err))
		require.False(t, IsServerError(err))

		err = fmt.Errorf("%w: read counter: %w", ErrServer, errors.New("i/o timeout"))
		require.True(t, IsServerError(err))
		require.False(t, IsAssignmentError(err))

		require.True(t, IsBadRequest(fmt.Errorf("%w: node down", ErrBadRequest)))
	})
}
