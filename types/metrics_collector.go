package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods may be called concurrently from any goroutine and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	CounterMetrics
	AssignMetrics
}

// CounterMetrics defines metrics for the distributed counter.
type CounterMetrics interface {
	// RecordCounterIncrement records a completed increment.
	//
	// Parameters:
	//   - duration: Time taken in seconds, including retries
	//   - success: true if a value was minted, false on fatal failure
	RecordCounterIncrement(duration float64, success bool)

	// IncrementCounterConflict records a lost version race that forced a retry.
	IncrementCounterConflict()
}

// AssignMetrics defines metrics for placement operations.
type AssignMetrics interface {
	// RecordAssignDuration records the time taken by a strategy's Assign call.
	//
	// Parameters:
	//   - strategy: Strategy name ("simple", "plugin")
	//   - duration: Time taken in seconds
	RecordAssignDuration(strategy string, duration float64)

	// RecordAssignAttempt records the outcome of an assignment.
	//
	// Parameters:
	//   - strategy: Strategy name
	//   - result: "success", "bad_request", "assignment", "server"
	RecordAssignAttempt(strategy string, result string)

	// RecordReplicasPlaced records how many replica positions were produced.
	RecordReplicasPlaced(strategy string, count int)
}
