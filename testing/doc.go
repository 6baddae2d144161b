// Package testing provides test utilities for the assign library.
//
// This package offers helpers for setting up test environments: embedded NATS
// servers backing the JetStream KV coordination store, and an in-memory
// DistribStateManager with fault injection for unit tests. It follows Go's
// convention of providing testing utilities in a dedicated package (similar
// to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewMemStateManager: In-memory coordination store
//   - NewTestLogger: Logger writing through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    assigntest "github.com/arloliu/assign/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    mgr := assigntest.NewMemStateManager()
//	    // Use mgr for your tests
//	}
package testing
