package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/seatplan/types"
)

func TestNewNop(t *testing.T) {
	metrics := NewNop()

	require.NotNil(t, metrics)
	require.IsType(t, &NopMetrics{}, metrics)
}

func TestNopMetrics_AllMethods(t *testing.T) {
	var m types.MetricsCollector = NewNop()

	require.NotPanics(t, func() {
		m.RecordSeatClick(types.ClickPlaced)
		m.RecordConstraintOp("add", types.KindSameTable)
		m.RecordPlacementCount(-1)
		m.RecordReconcileDropped(1, 2, 3)
		m.RecordStateChangeDropped()
		m.RecordSolveStarted()
		m.RecordSolveFinished("timeout", 6.5)
		m.RecordSolvePoll(types.SolverStarted)
		m.RecordNudgeCommit(false)
	})
}
