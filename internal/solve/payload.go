package solve

import (
	"github.com/arloliu/seatplan/internal/store"
	"github.com/arloliu/seatplan/types"
)

// Hints carries the on-screen row order of the tables.
type Hints struct {
	VisualRows     [][]types.TableKey
	TableVisualRow map[types.TableKey]int
}

// BuildPayload assembles the solver job body from the editor state.
//
// Constraints are sent without forbid_seat entries, the forbidden seats travel
// in their own array. Batch markers and objectives never reach the payload.
//
// Students pinned by exact_seat are locked through that rule. When
// opts.LockPlacements is set, every other placed student is locked through the
// placements map, so no student is locked twice.
//
// Parameters:
//   - st: Editor state
//   - opts: Solver options
//   - hints: Visual row order, may be empty
//
// Returns:
//   - types.SolvePayload: Job body
func BuildPayload(st *store.Store, opts types.SolveOptions, hints Hints) types.SolvePayload {
	constraints := make([]types.Constraint, 0, len(st.Constraints))
	pinned := make(map[int]struct{})
	for _, c := range st.Constraints {
		if c.Kind == types.KindForbidSeat {
			continue
		}
		if c.Kind == types.KindExactSeat {
			pinned[c.A] = struct{}{}
		}
		constraints = append(constraints, c)
	}

	placements := make(map[types.SeatKey]int)
	if opts.LockPlacements {
		for key, id := range st.Index.Placements() {
			if _, ok := pinned[id]; !ok {
				placements[key] = id
			}
		}
	}

	students := st.Students()
	if students == nil {
		students = []types.Student{}
	}
	forbidden := st.ForbiddenList()
	if forbidden == nil {
		forbidden = []types.SeatKey{}
	}

	return types.SolvePayload{
		Schema:         st.Schema.Clone(),
		Students:       students,
		Options:        opts,
		Constraints:    constraints,
		Forbidden:      forbidden,
		Placements:     placements,
		VisualRows:     hints.VisualRows,
		TableVisualRow: hints.TableVisualRow,
	}
}
