// Package counter implements the per-collection distributed id counter.
//
// The counter lives at /collections/<collection>/counter as a 4-byte
// big-endian integer. Increments use optimistic concurrency: read the value
// and its version, then write value+1 conditioned on that version, retrying
// whenever another writer got there first.
package counter

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/assign/internal/logger"
	"github.com/arloliu/assign/internal/metrics"
	"github.com/arloliu/assign/internal/naming"
	"github.com/arloliu/assign/types"
)

// Counter mints monotonically increasing ids per collection.
//
// Counter is safe for concurrent use. Uniqueness across processes is provided
// by the version check of the coordination store, not by local locking.
type Counter struct {
	mgr        types.DistribStateManager
	logger     types.Logger
	metrics    types.MetricsCollector
	maxRetries int
	backoff    time.Duration
}

// Option configures a Counter.
type Option func(*Counter)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l types.Logger) Option {
	return func(c *Counter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics collector. Defaults to a no-op collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(c *Counter) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithMaxRetries bounds the number of version conflicts tolerated per
// increment. Zero (the default) retries until the write succeeds.
func WithMaxRetries(n int) Option {
	return func(c *Counter) {
		c.maxRetries = n
	}
}

// WithRetryBackoff sleeps between conflicting attempts. Zero retries immediately.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Counter) {
		c.backoff = d
	}
}

// New creates a Counter backed by mgr.
//
// Parameters:
//   - mgr: Coordination store holding the counter nodes
//   - opts: Optional logger, metrics and retry settings
//
// Returns:
//   - *Counter: Ready counter
//   - error: ErrStateManagerRequired if mgr is nil
func New(mgr types.DistribStateManager, opts ...Option) (*Counter, error) {
	if mgr == nil {
		return nil, types.ErrStateManagerRequired
	}

	c := &Counter{
		mgr:     mgr,
		logger:  logger.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// IncrementAndGet atomically increments the collection counter and returns the
// new value. The first call for a collection returns 1.
//
// Only version conflicts are retried. Any other store failure, including
// context cancellation, is returned wrapped in ErrServer.
//
// Parameters:
//   - ctx: Context for store calls and backoff waits
//   - collection: Collection whose counter to increment
//
// Returns:
//   - int: The incremented value
//   - error: ErrServer on store failure, ErrCounterRetriesExhausted when a retry
//     bound is configured and exceeded
func (c *Counter) IncrementAndGet(ctx context.Context, collection string) (int, error) {
	start := time.Now()
	id, err := c.incrementAndGet(ctx, collection)
	c.metrics.RecordCounterIncrement(time.Since(start).Seconds(), err == nil)
	if err != nil {
		c.logger.Error("counter increment failed", "collection", collection, "error", err)
		return 0, err
	}

	return id, nil
}

func (c *Counter) incrementAndGet(ctx context.Context, collection string) (int, error) {
	path := naming.CounterPath(collection)
	if err := c.ensureCounter(ctx, collection, path); err != nil {
		return 0, err
	}

	for attempt := 1; ; attempt++ {
		current, err := c.mgr.GetData(ctx, path)
		if err != nil {
			return 0, fmt.Errorf("%w: read counter %s: %w", types.ErrServer, path, err)
		}

		value, err := Decode(current.Data)
		if err != nil {
			return 0, fmt.Errorf("%w: counter %s: %w", types.ErrServer, path, err)
		}

		next := value + 1
		err = c.mgr.SetData(ctx, path, Encode(next), current.Version)
		if err == nil {
			return int(next), nil
		}
		if !errors.Is(err, types.ErrBadVersion) {
			return 0, fmt.Errorf("%w: write counter %s: %w", types.ErrServer, path, err)
		}

		c.metrics.IncrementCounterConflict()
		c.logger.Debug("counter version conflict, retrying",
			"collection", collection, "attempt", attempt, "version", current.Version)

		if c.maxRetries > 0 && attempt >= c.maxRetries {
			return 0, fmt.Errorf("%w: %s after %d attempts", types.ErrCounterRetriesExhausted, path, attempt)
		}
		if err := c.wait(ctx); err != nil {
			return 0, fmt.Errorf("%w: %w", types.ErrServer, err)
		}
	}
}

// ensureCounter creates the collection path and a zero counter if missing.
// Creation races with other writers are expected and tolerated.
func (c *Counter) ensureCounter(ctx context.Context, collection, path string) error {
	exists, err := c.mgr.HasData(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: check counter %s: %w", types.ErrServer, path, err)
	}
	if exists {
		return nil
	}

	parent := naming.CollectionPath(collection)
	if err := c.mgr.MakePath(ctx, parent); err != nil && !errors.Is(err, types.ErrAlreadyExists) {
		return fmt.Errorf("%w: create %s: %w", types.ErrServer, parent, err)
	}
	err = c.mgr.CreateData(ctx, path, Encode(0), types.Persistent)
	if err != nil && !errors.Is(err, types.ErrAlreadyExists) {
		return fmt.Errorf("%w: create counter %s: %w", types.ErrServer, path, err)
	}

	return nil
}

func (c *Counter) wait(ctx context.Context) error {
	if c.backoff <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.backoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Encode returns the 4-byte big-endian encoding of v.
func Encode(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v)) //nolint:gosec // two's complement round-trip

	return b
}

// Decode parses a 4-byte big-endian counter value.
func Decode(b []byte) (int32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("invalid counter encoding: %d bytes", len(b))
	}

	return int32(binary.BigEndian.Uint32(b)), nil //nolint:gosec // two's complement round-trip
}
