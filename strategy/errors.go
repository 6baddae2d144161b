package strategy

import (
	"errors"
	"fmt"

	"github.com/arloliu/assign/types"
)

// ErrNoEligibleNodes indicates that a request had no node to place replicas on.
var ErrNoEligibleNodes = errors.New("no eligible nodes")

// assignmentError wraps err as an assignment failure unless it already carries a kind.
func assignmentError(err error) error {
	if errors.Is(err, types.ErrAssignment) || errors.Is(err, types.ErrServer) || errors.Is(err, types.ErrBadRequest) {
		return err
	}

	return fmt.Errorf("%w: %w", types.ErrAssignment, err)
}
