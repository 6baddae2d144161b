// Package kvutil provides helpers for NATS JetStream KeyValue buckets.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const baseBackoff = 10 * time.Millisecond

// EnsureKVBucketWithRetry creates the bucket described by config, or opens it
// when another process created it first.
//
// Several assigners usually start together and race to create the shared state
// bucket. Losing the race is not an error; transient failures are retried
// with exponential backoff (10ms, 20ms, 40ms, ...).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//   - maxRetries: Maximum number of attempts (<= 0 means 3)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket
//   - error: Last failure once every attempt failed, or the context error
//
// Example:
//
//	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "assign-state",
//	    History: 1,
//	}, 5)
func EnsureKVBucketWithRetry(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := range maxRetries {
		kv, err := openOrCreate(ctx, js, config)
		if err == nil {
			return kv, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("ensure KV bucket %s: %w", config.Bucket, ctx.Err())
		}
		if attempt == maxRetries-1 {
			break
		}

		timer := time.NewTimer(baseBackoff << attempt) //nolint:gosec // attempt is small
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("ensure KV bucket %s: %w", config.Bucket, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

func openOrCreate(ctx context.Context, js jetstream.JetStream, config jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	kv, err := js.CreateKeyValue(ctx, config)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketExists) {
		return nil, err
	}

	kv, err = js.KeyValue(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists but failed to open: %w", err)
	}

	return kv, nil
}
