package strategy

import (
	"context"

	"github.com/arloliu/assign/types"
)

// Base provides the default implementations of the optional AssignStrategy
// methods: no balancing and no deletion constraints.
//
// Embed Base in a custom strategy and implement Assign.
type Base struct{}

// ComputeReplicaBalancing returns an empty, non-nil mapping.
func (Base) ComputeReplicaBalancing(context.Context, types.CloudManager, []string, int) (map[string]string, error) {
	return map[string]string{}, nil
}

// VerifyDeleteCollection permits every deletion.
func (Base) VerifyDeleteCollection(context.Context, types.CloudManager, *types.Collection) error {
	return nil
}

// VerifyDeleteReplicas permits every deletion.
func (Base) VerifyDeleteReplicas(context.Context, types.CloudManager, *types.Collection, string, []*types.Replica) error {
	return nil
}
