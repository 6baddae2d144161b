// Package source provides ClusterStateProvider implementations.
//
// The package includes:
//
//   - Static: a fixed, replaceable snapshot
//   - StateManager: a snapshot read from the coordination store, where live
//     nodes are the children of /live_nodes and each collection's topology is
//     the JSON document at /collections/<name>/state.json
//
// Custom sources can be implemented by satisfying the types.ClusterStateProvider interface.
package source
