package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arloliu/assign"
	"github.com/arloliu/assign/internal/logging"
	"github.com/arloliu/assign/kvstate"
)

// app holds the per-invocation state shared by every command.
type app struct {
	v   *viper.Viper
	out io.Writer
	log *log.Logger

	nc       *nats.Conn
	store    *kvstate.Manager
	assigner *assign.Assigner
	registry *prometheus.Registry
}

// newRootCmd builds the command tree writing results to out.
func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, log: log.New()}

	root := &cobra.Command{
		Use:           "assignctl",
		Short:         "Replica assignment operator tool",
		Long:          "Mint replica identifiers, register nodes and compute replica placements against a NATS-backed coordination store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			defer a.close()

			return a.writeMetrics()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String("nats-url", nats.DefaultURL, "NATS server URL")
	flags.String("bucket", "", "KV bucket holding the coordination state (overrides config)")
	flags.String("storage", "", "KV bucket storage, file or memory (overrides config)")
	flags.String("placement-plugin", "", "placement plugin (overrides config)")
	flags.String("log-level", "warn", "log level: trace, debug, info, warn, error")
	flags.String("metrics-file", "", "write Prometheus metrics of the command to this file (textfile collector format)")

	for _, name := range []string{"config", "nats-url", "bucket", "storage", "placement-plugin", "log-level", "metrics-file"} {
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
	a.v.SetEnvPrefix("ASSIGNCTL")
	a.v.AutomaticEnv()

	root.AddCommand(
		a.nextIDCmd(),
		a.coreNameCmd(),
		a.coreNodeNameCmd(),
		a.liveCmd(),
		a.roleCmd(),
		a.nodesCmd(),
		a.placeCmd(),
		a.shardCmd(),
		a.balanceCmd(),
		a.collectionCmd(),
	)

	return root
}

// config resolves the assigner configuration from file, env and flags.
func (a *app) config() (assign.Config, error) {
	cfg := assign.DefaultConfig()
	if path := a.v.GetString("config"); path != "" {
		loaded, err := assign.LoadConfig(path)
		if err != nil {
			return assign.Config{}, err
		}
		cfg = loaded
	}

	if b := a.v.GetString("bucket"); b != "" {
		cfg.KVBucket.Bucket = b
	}
	if s := a.v.GetString("storage"); s != "" {
		cfg.KVBucket.Storage = s
	}
	if p := a.v.GetString("placement_plugin"); p != "" {
		cfg.PlacementPlugin = p
	}

	return cfg, cfg.Validate()
}

// setup connects to NATS and builds the assigner. On failure the NATS
// connection is closed here, since cobra skips the post-run hook.
func (a *app) setup(ctx context.Context) error {
	if err := a.connect(ctx); err != nil {
		a.close()
		return err
	}

	return nil
}

func (a *app) connect(ctx context.Context) error {
	level, err := log.ParseLevel(a.v.GetString("log_level"))
	if err != nil {
		return err
	}
	a.log.SetLevel(level)
	a.log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger := logging.NewLogrus(a.log)

	cfg, err := a.config()
	if err != nil {
		return err
	}

	nc, err := nats.Connect(a.v.GetString("nats_url"), nats.Timeout(5*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	a.nc = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	store, err := kvstate.Open(ctx, js, cfg.KVBucket, kvstate.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("open state bucket %s: %w", cfg.KVBucket.Bucket, err)
	}
	a.store = store

	cloud, err := assign.NewCloudManager(nil, store)
	if err != nil {
		return err
	}
	opts := []assign.Option{assign.WithLogger(logger)}
	if a.v.GetString("metrics_file") != "" {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, assign.WithMetrics(assign.NewPrometheusMetrics(a.registry, "")))
	}
	a.assigner, err = assign.NewAssigner(cfg, cloud, opts...)
	if err != nil {
		return err
	}
	logger.Debug("assignctl ready", "bucket", cfg.KVBucket.Bucket, "plugin", cfg.PlacementPlugin)

	return nil
}

// writeMetrics dumps the registry for node_exporter's textfile collector.
func (a *app) writeMetrics() error {
	if a.registry == nil {
		return nil
	}
	path := a.v.GetString("metrics_file")
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}

	return nil
}

func (a *app) close() {
	if a.nc != nil {
		a.nc.Close()
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
