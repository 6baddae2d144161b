// Package strategy provides the AssignStrategy implementations.
//
// Two strategies exist:
//
//   - Simple: the default heuristic. Each new replica goes to the eligible
//     node hosting the fewest replicas of its shard, ties broken by candidate
//     order. Deterministic for identical inputs.
//   - PluginStrategy: delegates placement to a cluster-configured
//     types.PlacementPlugin and verifies that the plugin returned a complete
//     placement. Balancing and delete verification are forwarded when the
//     plugin implements types.ReplicaBalancer or types.DeleteVerifier.
//
// New picks between them from a types.PlacementPluginFactory. Both strategies
// process batched requests in order: placements made for earlier requests
// count as cluster state for later ones.
//
// Custom strategies can embed Base to inherit the no-op optional methods.
package strategy
