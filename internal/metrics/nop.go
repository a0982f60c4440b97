// Package metrics provides MetricsCollector implementations.
package metrics

import "github.com/arloliu/seatplan/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	ed, err := seatplan.NewEditor(&cfg, seatplan.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// EditorMetrics implementation

// RecordSeatClick discards the seat click metric.
func (n *NopMetrics) RecordSeatClick(_ /* result */ types.ClickResult) {}

// RecordConstraintOp discards the constraint operation metric.
func (n *NopMetrics) RecordConstraintOp(_ /* op */ string, _ /* kind */ types.Kind) {}

// RecordPlacementCount discards the placement gauge.
func (n *NopMetrics) RecordPlacementCount(_ /* count */ int) {}

// RecordReconcileDropped discards the reconciliation metric.
func (n *NopMetrics) RecordReconcileDropped(_, _, _ int) {}

// RecordStateChangeDropped discards the dropped notification metric.
func (n *NopMetrics) RecordStateChangeDropped() {}

// SolveMetrics implementation

// RecordSolveStarted discards the solve start metric.
func (n *NopMetrics) RecordSolveStarted() {}

// RecordSolveFinished discards the solve outcome metric.
func (n *NopMetrics) RecordSolveFinished(_ /* outcome */ string, _ /* duration */ float64) {}

// RecordSolvePoll discards the poll metric.
func (n *NopMetrics) RecordSolvePoll(_ /* status */ types.SolverStatus) {}

// LayoutMetrics implementation

// RecordNudgeCommit discards the nudge commit metric.
func (n *NopMetrics) RecordNudgeCommit(_ /* accepted */ bool) {}
