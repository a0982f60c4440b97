package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and thread-safe: the solve metrics are
// recorded from the polling goroutine.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	EditorMetrics
	SolveMetrics
	LayoutMetrics
}

// EditorMetrics defines metrics for interactive editing operations.
type EditorMetrics interface {
	// RecordSeatClick records one seat click and the transition it took.
	RecordSeatClick(result ClickResult)

	// RecordConstraintOp records a constraint manager operation.
	//
	// Parameters:
	//   - op: Operation name ("add", "edit", "delete_batch", "delete_single")
	//   - kind: Constraint kind involved
	RecordConstraintOp(op string, kind Kind)

	// RecordPlacementCount sets the number of placed students (gauge metric).
	RecordPlacementCount(count int)

	// RecordReconcileDropped records entries dropped by a schema reconciliation.
	//
	// Parameters:
	//   - placements: Number of placements dropped
	//   - forbidden: Number of forbidden seats dropped
	//   - constraints: Number of constraints dropped
	RecordReconcileDropped(placements, forbidden, constraints int)

	// RecordStateChangeDropped records when change notifications are dropped due to slow subscribers.
	RecordStateChangeDropped()
}

// SolveMetrics defines metrics for solver jobs.
type SolveMetrics interface {
	// RecordSolveStarted records a submitted job.
	RecordSolveStarted()

	// RecordSolveFinished records the end of a job.
	//
	// Parameters:
	//   - outcome: "success", "failure", "timeout", "transport", "canceled" or "invalid"
	//   - duration: Time from submission to completion in seconds
	RecordSolveFinished(outcome string, duration float64)

	// RecordSolvePoll records one status poll.
	RecordSolvePoll(status SolverStatus)
}

// LayoutMetrics defines metrics for table repositioning.
type LayoutMetrics interface {
	// RecordNudgeCommit records a commit attempt.
	//
	// Parameters:
	//   - accepted: false when the commit was refused due to a collision
	RecordNudgeCommit(accepted bool)
}
