// Package kvstate implements types.DistribStateManager on a NATS JetStream
// KeyValue bucket.
//
// Hierarchical paths are flattened into KV keys: every path segment is escaped
// and the segments are joined with ".", so "/collections/books/counter"
// becomes "collections.books.counter". Characters outside [-_a-zA-Z0-9] are
// written as "=XX" (upper-case hex of each byte), which keeps every segment a
// single KV token and makes child listing a "<parent>.*" key filter.
//
// Versions are KV revisions. They are opaque, increase on every write and are
// not contiguous per key; callers must only compare them for equality.
package kvstate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/assign/internal/kvutil"
	"github.com/arloliu/assign/internal/logger"
	"github.com/arloliu/assign/internal/natsutil"
	"github.com/arloliu/assign/types"
)

// Config describes the KV bucket backing the state manager.
type Config struct {
	// Bucket is the KV bucket name.
	Bucket string `yaml:"bucket"`

	// Replicas is the JetStream replication factor of the bucket.
	Replicas int `yaml:"replicas"`

	// Storage is "file" or "memory".
	Storage string `yaml:"storage"`

	// CreateRetries bounds bucket create/open attempts when racing other processes.
	CreateRetries int `yaml:"createRetries"`
}

// DefaultConfig returns the default bucket configuration.
func DefaultConfig() Config {
	return Config{
		Bucket:        "assign-state",
		Replicas:      1,
		Storage:       "file",
		CreateRetries: 5,
	}
}

// Validate checks the bucket configuration.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket name is required")
	}
	if c.Replicas < 1 || c.Replicas > 5 {
		return fmt.Errorf("replicas must be between 1 and 5, got %d", c.Replicas)
	}
	if _, err := storageType(c.Storage); err != nil {
		return err
	}

	return nil
}

func storageType(s string) (jetstream.StorageType, error) {
	switch strings.ToLower(s) {
	case "", "file":
		return jetstream.FileStorage, nil
	case "memory":
		return jetstream.MemoryStorage, nil
	default:
		return jetstream.FileStorage, fmt.Errorf("unknown storage type %q", s)
	}
}

// Manager is a DistribStateManager backed by a JetStream KV bucket.
type Manager struct {
	kv     jetstream.KeyValue
	logger types.Logger
}

var _ types.DistribStateManager = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l types.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Open creates or opens the configured bucket and returns a Manager on it.
//
// Concurrent processes may call Open for the same bucket; creation races are
// resolved by opening the existing bucket.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - cfg: Bucket configuration
//   - opts: Optional settings
//
// Returns:
//   - *Manager: Manager bound to the bucket
//   - error: Invalid configuration or JetStream failure
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	mgr, err := kvstate.Open(ctx, js, kvstate.DefaultConfig())
//	if err != nil {
//	    return err
//	}
func Open(ctx context.Context, js jetstream.JetStream, cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrInvalidConfig, err)
	}
	storage, _ := storageType(cfg.Storage)

	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "replica assignment coordination state",
		History:     1,
		Storage:     storage,
		Replicas:    cfg.Replicas,
	}, cfg.CreateRetries)
	if err != nil {
		return nil, err
	}

	return New(kv, opts...), nil
}

// New returns a Manager on an existing KV bucket.
func New(kv jetstream.KeyValue, opts ...Option) *Manager {
	m := &Manager{kv: kv, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// HasData reports whether path exists.
func (m *Manager) HasData(ctx context.Context, path string) (bool, error) {
	key, err := Key(path)
	if err != nil {
		return false, err
	}
	if key == "" {
		return true, nil
	}

	_, err = m.kv.Get(ctx, key)
	if natsutil.IsKeyNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, m.ioError("get", path, err)
	}

	return true, nil
}

// MakePath creates path and every missing ancestor.
func (m *Manager) MakePath(ctx context.Context, path string) error {
	key, err := Key(path)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: /", types.ErrAlreadyExists)
	}

	tokens := strings.Split(key, ".")
	for i := 1; i < len(tokens); i++ {
		if _, err := m.kv.Create(ctx, strings.Join(tokens[:i], "."), nil); err != nil && !errors.Is(err, jetstream.ErrKeyExists) {
			return m.ioError("create", path, err)
		}
	}

	_, err = m.kv.Create(ctx, key, nil)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return fmt.Errorf("%w: %s", types.ErrAlreadyExists, path)
	}
	if err != nil {
		return m.ioError("create", path, err)
	}

	return nil
}

// CreateData creates path with data. The parent must exist.
//
// Ephemeral nodes have no KV equivalent and return ErrUnsupported.
func (m *Manager) CreateData(ctx context.Context, path string, data []byte, mode types.CreateMode) error {
	if mode == types.Ephemeral {
		return fmt.Errorf("%w: ephemeral node %s", types.ErrUnsupported, path)
	}

	key, err := Key(path)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: /", types.ErrAlreadyExists)
	}

	if i := strings.LastIndexByte(key, '.'); i > 0 {
		_, err := m.kv.Get(ctx, key[:i])
		if natsutil.IsKeyNotFound(err) {
			return fmt.Errorf("%w: parent of %s", types.ErrNoNode, path)
		}
		if err != nil {
			return m.ioError("get", path, err)
		}
	}

	_, err = m.kv.Create(ctx, key, data)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return fmt.Errorf("%w: %s", types.ErrAlreadyExists, path)
	}
	if err != nil {
		return m.ioError("create", path, err)
	}

	return nil
}

// GetData returns the data at path with its revision as version.
func (m *Manager) GetData(ctx context.Context, path string) (*types.VersionedData, error) {
	key, err := Key(path)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return &types.VersionedData{}, nil
	}

	entry, err := m.kv.Get(ctx, key)
	if natsutil.IsKeyNotFound(err) {
		return nil, fmt.Errorf("%w: %s", types.ErrNoNode, path)
	}
	if err != nil {
		return nil, m.ioError("get", path, err)
	}

	return &types.VersionedData{
		Data:    entry.Value(),
		Version: int64(entry.Revision()), //nolint:gosec // revisions stay far below MaxInt64
	}, nil
}

// SetData writes data at path if its revision equals expectedVersion.
func (m *Manager) SetData(ctx context.Context, path string, data []byte, expectedVersion int64) error {
	key, err := Key(path)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: cannot write root", types.ErrUnsupported)
	}

	if expectedVersion == types.AnyVersion {
		if _, err := m.GetData(ctx, path); err != nil {
			return err
		}
		if _, err := m.kv.Put(ctx, key, data); err != nil {
			return m.ioError("put", path, err)
		}

		return nil
	}

	_, err = m.kv.Update(ctx, key, data, uint64(expectedVersion)) //nolint:gosec // checked non-negative by callers
	if err == nil {
		return nil
	}
	if natsutil.IsWrongLastSequence(err) {
		return m.versionConflict(ctx, path, expectedVersion)
	}

	return m.ioError("update", path, err)
}

// ListData returns the sorted names of the direct children of path.
func (m *Manager) ListData(ctx context.Context, path string) ([]string, error) {
	key, err := Key(path)
	if err != nil {
		return nil, err
	}

	filter := "*"
	if key != "" {
		if _, err := m.GetData(ctx, path); err != nil {
			return nil, err
		}
		filter = key + ".*"
	}

	lister, err := m.kv.ListKeysFiltered(ctx, filter)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, m.ioError("list", path, err)
	}
	defer func() { _ = lister.Stop() }()

	children := []string{}
	for k := range lister.Keys() {
		name, err := Unescape(k[strings.LastIndexByte(k, '.')+1:])
		if err != nil {
			m.logger.Warn("skipping undecodable key", "key", k, "error", err)
			continue
		}
		children = append(children, name)
	}
	sort.Strings(children)

	return children, nil
}

// RemoveData deletes path if its revision equals version and it has no children.
func (m *Manager) RemoveData(ctx context.Context, path string, version int64) error {
	key, err := Key(path)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: cannot remove root", types.ErrUnsupported)
	}

	children, err := m.ListData(ctx, path)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("cannot remove %s: node has %d children", path, len(children))
	}

	var delOpts []jetstream.KVDeleteOpt
	if version != types.AnyVersion {
		delOpts = append(delOpts, jetstream.LastRevision(uint64(version))) //nolint:gosec // checked non-negative by callers
	}

	err = m.kv.Delete(ctx, key, delOpts...)
	if err == nil {
		return nil
	}
	if natsutil.IsWrongLastSequence(err) {
		return m.versionConflict(ctx, path, version)
	}

	return m.ioError("delete", path, err)
}

// versionConflict distinguishes a stale version from a path removed concurrently.
func (m *Manager) versionConflict(ctx context.Context, path string, expected int64) error {
	exists, err := m.HasData(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", types.ErrNoNode, path)
	}

	return fmt.Errorf("%w: %s expected revision %d", types.ErrBadVersion, path, expected)
}

func (m *Manager) ioError(op, path string, err error) error {
	if natsutil.IsConnectivityError(err) {
		m.logger.Warn("coordination store unreachable", "op", op, "path", path, "error", err)
	}

	return fmt.Errorf("kv %s %s: %w", op, path, err)
}
