package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/arloliu/assign"
	"github.com/arloliu/assign/internal/noderoles"
	"github.com/arloliu/assign/source"
	"github.com/arloliu/assign/types"
)

func (a *app) nextIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id [collection]",
		Short: "Increment the collection counter and print the new value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.assigner.IncAndGetID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("%d\n", id)

			return nil
		},
	}
}

func (a *app) coreNameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "core-name [collection] [shard]",
		Short: "Mint a core name for a new replica",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typeName, _ := cmd.Flags().GetString("type")
			typ, err := types.ParseReplicaType(typeName)
			if err != nil {
				return err
			}

			name, err := a.assigner.BuildCoreName(cmd.Context(), args[0], args[1], typ)
			if err != nil {
				return err
			}
			a.printf("%s\n", name)

			return nil
		},
	}
	cmd.Flags().String("type", "nrt", "replica type: nrt, tlog or pull")

	return cmd
}

func (a *app) coreNodeNameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "core-node-name [collection]",
		Short: "Mint a core node name for a new replica",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.assigner.AssignCoreNodeName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", name)

			return nil
		},
	}
}

func (a *app) liveCmd() *cobra.Command {
	live := &cobra.Command{
		Use:   "live",
		Short: "Manage the live node set",
	}

	live.AddCommand(
		&cobra.Command{
			Use:   "add [node...]",
			Short: "Register nodes as live",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, node := range args {
					if err := source.RegisterLiveNode(cmd.Context(), a.store, node); err != nil {
						return err
					}
				}
				a.printf("registered %d node(s)\n", len(args))

				return nil
			},
		},
		&cobra.Command{
			Use:   "remove [node...]",
			Short: "Remove nodes from the live set",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, node := range args {
					if err := source.UnregisterLiveNode(cmd.Context(), a.store, node); err != nil {
						return err
					}
				}
				a.printf("removed %d node(s)\n", len(args))

				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List live nodes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				state, err := source.NewStateManager(a.store).ClusterState(cmd.Context())
				if err != nil {
					return err
				}
				for _, node := range state.LiveNodes {
					a.printf("%s\n", node)
				}

				return nil
			},
		},
	)

	return live
}

func (a *app) roleCmd() *cobra.Command {
	role := &cobra.Command{
		Use:   "role",
		Short: "Manage node roles",
	}

	role.AddCommand(&cobra.Command{
		Use:   "set [node] [role] [mode]",
		Short: "Set a node role mode, e.g. 'role set n1 data off'",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := noderoles.SetNodeRole(cmd.Context(), a.store, args[0], args[1], args[2]); err != nil {
				return err
			}
			a.printf("%s: %s=%s\n", args[0], args[1], args[2])

			return nil
		},
	})

	return role
}

func (a *app) nodesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Resolve the candidate nodes for new replicas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, _ := cmd.Flags().GetString("node-set")
			ns := assign.ParseNodeSet(spec)

			var (
				nodes []string
				err   error
			)
			if cmd.Flags().Changed("shuffle") {
				shuffle, _ := cmd.Flags().GetBool("shuffle")
				nodes, err = a.assigner.ResolveNodeSetShuffled(cmd.Context(), ns, shuffle)
			} else {
				nodes, err = a.assigner.ResolveNodeSet(cmd.Context(), ns)
			}
			if err != nil {
				return err
			}
			for _, n := range nodes {
				a.printf("%s\n", n)
			}

			return nil
		},
	}
	cmd.Flags().String("node-set", "", "comma-separated node list, or EMPTY")
	cmd.Flags().Bool("shuffle", true, "shuffle an explicit node list (default from config)")

	return cmd
}

func (a *app) placeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place [collection] [shard]",
		Short: "Compute nodes for new replicas of a shard",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var count types.ReplicaCount
			count.NRT, _ = cmd.Flags().GetInt("nrt")
			count.TLOG, _ = cmd.Flags().GetInt("tlog")
			count.PULL, _ = cmd.Flags().GetInt("pull")
			spec, _ := cmd.Flags().GetString("nodes")
			withNames, _ := cmd.Flags().GetBool("names")

			positions, err := a.assigner.GetNodesForNewReplicas(cmd.Context(), assign.ReplicaRequest{
				Collection: args[0],
				Shard:      args[1],
				Replicas:   count,
				NodeSet:    assign.ParseNodeSet(spec),
			})
			if err != nil {
				return err
			}

			for _, p := range positions {
				if !withNames {
					a.printf("%s\n", p)
					continue
				}
				name, err := a.assigner.BuildCoreName(cmd.Context(), p.Collection, p.Shard, p.Type)
				if err != nil {
					return err
				}
				a.printf("%s %s\n", p, name)
			}

			return nil
		},
	}
	cmd.Flags().Int("nrt", 1, "NRT replicas")
	cmd.Flags().Int("tlog", 0, "TLOG replicas")
	cmd.Flags().Int("pull", 0, "PULL replicas")
	cmd.Flags().String("nodes", "", "comma-separated node list; every node must be live")
	cmd.Flags().Bool("names", false, "also mint a core name for every placement")

	return cmd
}

func (a *app) shardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shard [collection]",
		Short: "Pick the shard a new replica should join",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numShards, _ := cmd.Flags().GetInt("num-shards")
			shard, err := a.assigner.AssignShard(cmd.Context(), args[0], numShards)
			if err != nil {
				return err
			}
			a.printf("%s\n", shard)

			return nil
		},
	}
	cmd.Flags().Int("num-shards", 1, "desired number of shards")

	return cmd
}

func (a *app) balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Propose replica moves (core name to destination node)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			maxSkew, _ := cmd.Flags().GetInt("max-skew")
			spec, _ := cmd.Flags().GetString("nodes")

			moves, err := a.assigner.ComputeReplicaBalancing(cmd.Context(), assign.ParseNodeSet(spec).Nodes(), maxSkew)
			if err != nil {
				return err
			}

			cores := make([]string, 0, len(moves))
			for core := range moves {
				cores = append(cores, core)
			}
			slices.Sort(cores)
			for _, core := range cores {
				a.printf("%s -> %s\n", core, moves[core])
			}

			return nil
		},
	}
	cmd.Flags().Int("max-skew", 1, "tolerated replica count difference between nodes")
	cmd.Flags().String("nodes", "", "comma-separated nodes to balance across (default: live nodes)")

	return cmd
}

func (a *app) collectionCmd() *cobra.Command {
	coll := &cobra.Command{
		Use:   "collection",
		Short: "Read and write collection state documents",
	}

	coll.AddCommand(
		&cobra.Command{
			Use:   "put [state.json]",
			Short: "Store a collection state document",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				var c types.Collection
				if err := json.Unmarshal(data, &c); err != nil {
					return fmt.Errorf("decode %s: %w", args[0], err)
				}
				if c.Name == "" {
					return fmt.Errorf("%s: collection name is required", args[0])
				}
				if err := source.WriteCollection(cmd.Context(), a.store, &c); err != nil {
					return err
				}
				a.printf("stored collection %s\n", c.Name)

				return nil
			},
		},
		&cobra.Command{
			Use:   "show [collection]",
			Short: "Print a collection state document",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := source.ReadCollection(cmd.Context(), a.store, args[0])
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(c, "", "  ")
				if err != nil {
					return err
				}
				a.printf("%s\n", data)

				return nil
			},
		},
		&cobra.Command{
			Use:   "can-delete [collection] [shard] [core-node-name...]",
			Short: "Check whether a collection, or replicas of a shard, may be deleted",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var err error
				if len(args) == 1 {
					err = a.assigner.VerifyDeleteCollection(cmd.Context(), args[0])
				} else {
					err = a.assigner.VerifyDeleteReplicas(cmd.Context(), args[0], args[1], args[2:])
				}
				if err != nil {
					return err
				}
				a.printf("ok\n")

				return nil
			},
		},
	)

	return coll
}
