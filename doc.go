// Package assign places new replicas of sharded collections onto cluster
// nodes and mints the identifiers those replicas are created under.
//
// The library coordinates through a hierarchical, versioned store
// (DistribStateManager). Identifiers come from a per-collection counter
// updated with optimistic version checks, so any number of processes can
// create replicas concurrently without local locking. The kvstate package
// provides a store on a NATS JetStream KV bucket.
//
// # Quick Start
//
//	nc, _ := nats.Connect(nats.DefaultURL)
//	js, _ := jetstream.New(nc)
//
//	cfg := assign.DefaultConfig()
//	store, err := kvstate.Open(ctx, js, cfg.KVBucket)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cloud, _ := assign.NewCloudManager(nil, store)
//	a, err := assign.NewAssigner(cfg, cloud)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	positions, err := a.GetNodesForNewReplicas(ctx, assign.ReplicaRequest{
//	    Collection: "books",
//	    Shard:      "shard1",
//	    Replicas:   assign.ReplicaCount{NRT: 2, PULL: 1},
//	})
//	for _, p := range positions {
//	    name, _ := a.BuildCoreName(ctx, p.Collection, p.Shard, p.Type)
//	    fmt.Println(name, "->", p.Node)
//	}
//
// # Placement
//
// Without a configured placement plugin each replica goes to the candidate
// node hosting the fewest replicas of its shard, ties broken by candidate
// order. Config.PlacementPlugin selects a policy from the placement package
// instead ("minimizecores", "consistenthash"), and WithPlacementRegistry adds
// custom ones.
//
// # Errors
//
// Errors are classified with errors.Is:
//
//   - ErrBadRequest: the input can never succeed as given (e.g. a non-live node)
//   - ErrAssignment: no valid placement exists for the current cluster
//   - ErrServer: coordination-store or cluster-state failure
//
// Version conflicts on the counter are retried internally and never surface
// unless a retry bound is configured.
package assign
