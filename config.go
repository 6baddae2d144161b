package assign

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/assign/kvstate"
)

// CounterConfig controls the distributed id counter.
type CounterConfig struct {
	// MaxRetries bounds the version conflicts tolerated per increment.
	//
	// Default: 0 (retry until the write succeeds)
	MaxRetries int `yaml:"maxRetries"`

	// RetryBackoff is the pause between conflicting attempts.
	// Zero retries immediately.
	RetryBackoff time.Duration `yaml:"retryBackoff"`
}

// Config is the configuration for the Assigner.
//
// All duration fields accept standard Go duration strings like "500ms", "10s".
type Config struct {
	// PlacementPlugin names the cluster-wide placement policy.
	// Empty or "simple" uses the default least-loaded heuristic.
	PlacementPlugin string `yaml:"placementPlugin"`

	// NodeSetShuffle shuffles explicit node sets before placement.
	// Node sets resolved from live nodes are always shuffled.
	//
	// Default: true
	NodeSetShuffle *bool `yaml:"nodeSetShuffle"`

	// OperationTimeout bounds every public Assigner call, including its
	// coordination-store round trips. Zero selects the default; a caller
	// deadline that expires sooner still wins.
	//
	// Default: 10 seconds
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// Counter controls the distributed id counter.
	Counter CounterConfig `yaml:"counter"`

	// KVBucket configures the JetStream KV bucket backing the coordination store.
	KVBucket kvstate.Config `yaml:"kvBucket"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	shuffle := true

	return Config{
		PlacementPlugin:  "",
		NodeSetShuffle:   &shuffle,
		OperationTimeout: 10 * time.Second,
		Counter: CounterConfig{
			MaxRetries:   0, // unbounded: contention is transient
			RetryBackoff: 0,
		},
		KVBucket: kvstate.DefaultConfig(),
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.NodeSetShuffle == nil {
		cfg.NodeSetShuffle = defaults.NodeSetShuffle
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.KVBucket.Bucket == "" {
		cfg.KVBucket.Bucket = defaults.KVBucket.Bucket
	}
	if cfg.KVBucket.Replicas == 0 {
		cfg.KVBucket.Replicas = defaults.KVBucket.Replicas
	}
	if cfg.KVBucket.Storage == "" {
		cfg.KVBucket.Storage = defaults.KVBucket.Storage
	}
	if cfg.KVBucket.CreateRetries == 0 {
		cfg.KVBucket.CreateRetries = defaults.KVBucket.CreateRetries
	}
	// Counter zero values are meaningful (unbounded retries, no backoff).
}

// Validate checks configuration constraints.
//
// Returns:
//   - error: Error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.OperationTimeout < 0 {
		return fmt.Errorf("%w: operationTimeout must be >= 0, got %v", ErrInvalidConfig, cfg.OperationTimeout)
	}
	if cfg.Counter.MaxRetries < 0 {
		return fmt.Errorf("%w: counter.maxRetries must be >= 0, got %d", ErrInvalidConfig, cfg.Counter.MaxRetries)
	}
	if cfg.Counter.RetryBackoff < 0 {
		return fmt.Errorf("%w: counter.retryBackoff must be >= 0, got %v", ErrInvalidConfig, cfg.Counter.RetryBackoff)
	}
	if err := cfg.KVBucket.Validate(); err != nil {
		return fmt.Errorf("%w: kvBucket: %w", ErrInvalidConfig, err)
	}

	return nil
}

// ShuffleNodeSet reports whether explicit node sets are shuffled.
func (cfg *Config) ShuffleNodeSet() bool {
	return cfg.NodeSetShuffle == nil || *cfg.NodeSetShuffle
}

// ParseConfig decodes a YAML document, applies defaults and validates the result.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: Decoded configuration
//   - error: Decode or validation error
//
// Example:
//
//	cfg, err := assign.ParseConfig([]byte("placementPlugin: minimizecores\n"))
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

// TestConfig returns a configuration for fast test execution: memory-backed
// KV storage and a short operation timeout.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.OperationTimeout = 2 * time.Second
	cfg.KVBucket.Storage = "memory"
	cfg.KVBucket.CreateRetries = 2

	return cfg
}
