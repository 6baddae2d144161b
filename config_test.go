package assign

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Empty(t, cfg.PlacementPlugin)
	require.True(t, cfg.ShuffleNodeSet())
	require.Equal(t, 10*time.Second, cfg.OperationTimeout)
	require.Zero(t, cfg.Counter.MaxRetries)
	require.Zero(t, cfg.Counter.RetryBackoff)
	require.Equal(t, "assign-state", cfg.KVBucket.Bucket)
	require.Equal(t, 1, cfg.KVBucket.Replicas)
	require.Equal(t, "file", cfg.KVBucket.Storage)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.NotNil(t, cfg.NodeSetShuffle)
		require.True(t, *cfg.NodeSetShuffle)
		require.Equal(t, 10*time.Second, cfg.OperationTimeout)
		require.Equal(t, "assign-state", cfg.KVBucket.Bucket)
		require.Equal(t, 5, cfg.KVBucket.CreateRetries)
		require.NoError(t, cfg.Validate())
	})

	t.Run("preserves custom values", func(t *testing.T) {
		shuffle := false
		cfg := Config{
			PlacementPlugin:  "minimizecores",
			NodeSetShuffle:   &shuffle,
			OperationTimeout: 3 * time.Second,
			Counter: CounterConfig{
				MaxRetries:   50,
				RetryBackoff: 5 * time.Millisecond,
			},
		}
		cfg.KVBucket.Bucket = "custom"
		SetDefaults(&cfg)

		require.Equal(t, "minimizecores", cfg.PlacementPlugin)
		require.False(t, cfg.ShuffleNodeSet())
		require.Equal(t, 3*time.Second, cfg.OperationTimeout)
		require.Equal(t, 50, cfg.Counter.MaxRetries)
		require.Equal(t, 5*time.Millisecond, cfg.Counter.RetryBackoff)
		require.Equal(t, "custom", cfg.KVBucket.Bucket)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative timeout", func(c *Config) { c.OperationTimeout = -time.Second }},
		{"negative retries", func(c *Config) { c.Counter.MaxRetries = -1 }},
		{"negative backoff", func(c *Config) { c.Counter.RetryBackoff = -time.Millisecond }},
		{"bad storage", func(c *Config) { c.KVBucket.Storage = "tape" }},
		{"too many replicas", func(c *Config) { c.KVBucket.Replicas = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_YAML(t *testing.T) {
	yamlConfig := `
placementPlugin: consistenthash
nodeSetShuffle: false
operationTimeout: 5s
counter:
  maxRetries: 100
  retryBackoff: 2ms
kvBucket:
  bucket: solr-state
  replicas: 3
  storage: memory
`

	t.Run("raw unmarshal", func(t *testing.T) {
		var cfg Config
		require.NoError(t, yaml.Unmarshal([]byte(yamlConfig), &cfg))
		require.Equal(t, 5*time.Second, cfg.OperationTimeout)
		require.Equal(t, 2*time.Millisecond, cfg.Counter.RetryBackoff)
		require.Equal(t, 3, cfg.KVBucket.Replicas)
	})

	t.Run("parse applies defaults", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(yamlConfig))
		require.NoError(t, err)
		require.Equal(t, "consistenthash", cfg.PlacementPlugin)
		require.False(t, cfg.ShuffleNodeSet())
		require.Equal(t, 100, cfg.Counter.MaxRetries)
		require.Equal(t, "solr-state", cfg.KVBucket.Bucket)
		require.Equal(t, 5, cfg.KVBucket.CreateRetries)
	})

	t.Run("partial document", func(t *testing.T) {
		cfg, err := ParseConfig([]byte("placementPlugin: minimizecores\n"))
		require.NoError(t, err)
		require.True(t, cfg.ShuffleNodeSet())
		require.Equal(t, DefaultConfig().KVBucket, cfg.KVBucket)
	})

	t.Run("invalid documents", func(t *testing.T) {
		_, err := ParseConfig([]byte("operationTimeout: [1, 2]\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)

		_, err = ParseConfig([]byte("counter:\n  maxRetries: -3\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assign.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operationTimeout: 1s\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, time.Second, cfg.OperationTimeout)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	require.Equal(t, "memory", cfg.KVBucket.Storage)
	require.Less(t, cfg.OperationTimeout, DefaultConfig().OperationTimeout)
	require.NoError(t, cfg.Validate())
}
