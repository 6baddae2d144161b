// Package placement provides cluster-configurable placement plugins.
//
// A plugin implements types.PlacementPlugin and may additionally implement
// types.ReplicaBalancer and types.DeleteVerifier. Plugins are immutable and
// shared by every assignment in the cluster, so a Registry caches one instance
// per name.
//
// Built-in plugins:
//
//   - MinimizeCores ("minimizecores"): spread cores evenly across nodes,
//     rebalance on demand, and guard deletions that would orphan data.
//   - ConsistentHash ("consistenthash"): keep each shard on a stable set of
//     nodes chosen from an xxh3 hash ring, so placements survive cluster
//     membership changes.
package placement
