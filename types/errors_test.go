package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("%w: 0,9,0", ErrInvalidSeat)
		require.True(t, errors.Is(wrapped, ErrInvalidSeat))
		require.False(t, errors.Is(wrapped, ErrSeatForbidden))

		joined := errors.Join(ErrSolverFailure, errors.New("unsatisfiable"))
		require.True(t, errors.Is(joined, ErrSolverFailure))
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			ErrInvalidConfig, ErrSolverBackendRequired, ErrExportBackendRequired,
			ErrRosterSourceRequired, ErrNoStudents, ErrNoUsableSchema, ErrClassNameRequired,
			ErrDuplicateStudent,
			ErrInvalidSchema, ErrInvalidSeat, ErrMalformedKey,
			ErrUnknownStudent, ErrNoSeatSelected, ErrSeatOccupied, ErrSeatForbidden,
			ErrUnsupportedKind, ErrMalformedConstraint, ErrNotEnoughStudents, ErrBatchNotFound,
			ErrConstraintNotFound, ErrBatchedConstraint,
			ErrSelectionActive, ErrNoTableArmed, ErrUnknownTable, ErrCollision,
			ErrSolveInFlight, ErrSolveTimeout, ErrSolverFailure, ErrSolveTransport,
			ErrSolveCanceled, ErrInvalidAssignment,
			ErrExportFailed,
			ErrInvalidDocument,
		}

		for i, err1 := range allErrors {
			for j, err2 := range allErrors {
				if i == j {
					require.True(t, errors.Is(err1, err2), "error should equal itself: %v", err1)
				} else {
					require.False(t, errors.Is(err1, err2), "errors should be distinct: %v vs %v", err1, err2)
				}
			}
		}
	})
}
