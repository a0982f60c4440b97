package assignment

import (
	"fmt"
	"slices"

	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/internal/store"
	"github.com/arloliu/seatplan/types"
)

// Engine drives placements and selection over a shared store.
type Engine struct {
	st      *store.Store
	logger  types.Logger
	metrics types.EditorMetrics
}

// NewEngine creates an assignment engine.
//
// Parameters:
//   - st: Shared editor state
//   - logger: Logger for transitions
//   - metrics: Metrics collector for editor operations
func NewEngine(st *store.Store, logger types.Logger, metrics types.EditorMetrics) *Engine {
	return &Engine{st: st, logger: logger, metrics: metrics}
}

// SelectStudent toggles the selection of student id.
//
// Selecting a student clears any seat or table selection; selecting the
// already selected student clears the selection.
func (e *Engine) SelectStudent(id int) error {
	if !e.st.HasStudent(id) {
		return fmt.Errorf("%w: %d", types.ErrUnknownStudent, id)
	}

	sel := e.st.Selection
	if sel.Student != nil && *sel.Student == id {
		e.st.Selection = types.Selection{}
		return nil
	}

	e.st.Selection = types.Selection{Student: &id}

	return nil
}

// ClearSelection drops every selection.
func (e *Engine) ClearSelection() {
	e.st.Selection = types.Selection{}
}

// SeatClick applies one click on seat key.
//
// With a student selected:
//   - forbidden target: rejected, nothing changes
//   - empty target: the student moves there, is pinned with exact_seat, selection clears
//   - the student's own seat: first click highlights it, second click clears the selection
//   - another student's seat: swap; the displaced student takes the actor's previous
//     seat (keeping a pin if they had one) or becomes unplaced when the actor had none
//
// Without a student selected:
//   - occupied target: its occupant becomes selected and their seat highlighted
//   - empty target: toggles a seat-only selection
//
// Returns:
//   - types.ClickResult: Transition taken
//   - error: ErrInvalidSeat or ErrSeatForbidden (with ClickRejected), nil otherwise
func (e *Engine) SeatClick(key types.SeatKey) (types.ClickResult, error) {
	result, err := e.seatClick(key)
	e.metrics.RecordSeatClick(result)
	e.metrics.RecordPlacementCount(e.st.Index.Len())

	return result, err
}

func (e *Engine) seatClick(key types.SeatKey) (types.ClickResult, error) {
	if !room.IsValidSeat(e.st.Schema, key) {
		return types.ClickRejected, fmt.Errorf("%w: %s", types.ErrInvalidSeat, key)
	}

	sel := e.st.Selection
	occupant, occupied := e.st.Index.StudentAt(key)

	if sel.Student == nil {
		switch {
		case occupied:
			e.st.Selection = types.Selection{Student: &occupant, Seat: &key}
			return types.ClickOccupantSelected, nil
		case sel.Seat != nil && *sel.Seat == key:
			e.st.Selection = types.Selection{}
			return types.ClickSeatDeselected, nil
		default:
			e.st.Selection = types.Selection{Seat: &key}
			return types.ClickSeatSelected, nil
		}
	}

	actor := *sel.Student

	if e.st.IsForbidden(key) {
		e.logger.Debug("placement on forbidden seat rejected", "student_id", actor, "seat", key.String())
		return types.ClickRejected, fmt.Errorf("%w: %s", types.ErrSeatForbidden, key)
	}

	switch {
	case !occupied:
		e.st.Index.Place(actor, key)
		e.st.UpsertExactSeat(actor, key)
		e.st.Selection = types.Selection{}
		e.logger.Debug("student placed", "student_id", actor, "seat", key.String())

		return types.ClickPlaced, nil

	case occupant == actor:
		if sel.Seat != nil && *sel.Seat == key {
			e.st.Selection = types.Selection{}
			return types.ClickCleared, nil
		}
		e.st.Selection = types.Selection{Student: &actor, Seat: &key}

		return types.ClickHighlighted, nil

	default:
		e.swap(actor, occupant, key)
		e.st.Selection = types.Selection{}

		return types.ClickSwapped, nil
	}
}

func (e *Engine) swap(actor, displaced int, target types.SeatKey) {
	prev, hadSeat := e.st.Index.SeatOf(actor)
	_, displacedPinned := e.st.ExactSeatOf(displaced)

	e.st.Index.Place(actor, target)
	e.st.UpsertExactSeat(actor, target)

	if hadSeat {
		e.st.Index.Place(displaced, prev)
		if displacedPinned {
			e.st.UpsertExactSeat(displaced, prev)
		}
	} else {
		e.st.RemoveExactSeat(displaced)
	}

	e.logger.Debug("students swapped",
		"student_id", actor,
		"displaced_id", displaced,
		"seat", target.String(),
		"displaced_to", seatOrNone(prev, hadSeat),
	)
}

// UnassignSelected unplaces the student on the selected seat and removes their pin.
//
// The seat is the selected seat, or the selected student's seat when only a
// student is selected. An empty seat is left as is.
//
// Returns:
//   - bool: true if a student was unplaced
//   - error: ErrNoSeatSelected when no seat can be derived from the selection
func (e *Engine) UnassignSelected() (bool, error) {
	key, ok := e.selectedSeat()
	if !ok {
		return false, types.ErrNoSeatSelected
	}

	id, occupied := e.st.Index.StudentAt(key)
	if !occupied {
		return false, nil
	}

	e.st.Index.Remove(id)
	e.st.RemoveExactSeat(id)
	e.st.Selection = types.Selection{}
	e.metrics.RecordPlacementCount(e.st.Index.Len())
	e.logger.Debug("student unassigned", "student_id", id, "seat", key.String())

	return true, nil
}

// ToggleSelectedSeatBan flips the forbidden state of the selected empty seat
// together with its forbid_seat rule. The selection is kept so a second call
// reverts the first.
//
// Returns:
//   - bool: true if the seat is forbidden after the call
//   - error: ErrNoSeatSelected, or ErrSeatOccupied (no mutation)
func (e *Engine) ToggleSelectedSeatBan() (bool, error) {
	sel := e.st.Selection
	if sel.Seat == nil {
		return false, types.ErrNoSeatSelected
	}

	key := *sel.Seat
	if id, occupied := e.st.Index.StudentAt(key); occupied {
		return false, fmt.Errorf("%w: %s holds student %d", types.ErrSeatOccupied, key, id)
	}

	banned := !e.st.IsForbidden(key)
	e.st.SetForbidden(key, banned)
	e.logger.Debug("seat ban toggled", "seat", key.String(), "forbidden", banned)

	return banned, nil
}

// ResetPlanKeepRoom clears every placement and the selection, then re-places
// students from the exact_seat rules still present.
//
// A pin is skipped when its seat is invalid, forbidden or already taken by an
// earlier pin, or when its student is unknown or already placed.
//
// Returns:
//   - int: Number of students restored
func (e *Engine) ResetPlanKeepRoom() int {
	e.st.Index.Clear()
	e.st.Selection = types.Selection{}

	restored := 0
	for _, c := range e.st.Constraints {
		if c.Kind != types.KindExactSeat {
			continue
		}
		if !e.canPlace(c.A, c.Seat) {
			e.logger.Debug("pin skipped on reset", "student_id", c.A, "seat", c.Seat.String())
			continue
		}
		e.st.Index.Place(c.A, c.Seat)
		restored++
	}

	e.metrics.RecordPlacementCount(e.st.Index.Len())
	e.logger.Info("plan reset", "restored", restored)

	return restored
}

func (e *Engine) canPlace(id int, key types.SeatKey) bool {
	if !e.st.HasStudent(id) || !room.IsValidSeat(e.st.Schema, key) || e.st.IsForbidden(key) {
		return false
	}
	if _, taken := e.st.Index.StudentAt(key); taken {
		return false
	}
	_, placed := e.st.Index.SeatOf(id)

	return !placed
}

// FreeSeats returns the valid seats that are neither forbidden nor occupied, in
// canonical order.
func (e *Engine) FreeSeats() []types.SeatKey {
	return slices.DeleteFunc(room.Seats(e.st.Schema), func(k types.SeatKey) bool {
		if e.st.IsForbidden(k) {
			return true
		}
		_, occupied := e.st.Index.StudentAt(k)

		return occupied
	})
}

// Unplaced returns the ids of students without a seat, in roster order.
func (e *Engine) Unplaced() []int {
	var out []int
	for _, st := range e.st.Students() {
		if _, ok := e.st.Index.SeatOf(st.ID); !ok {
			out = append(out, st.ID)
		}
	}

	return out
}

// AutoFill seats unplaced students on free seats chosen by strategy.
//
// Placed students, pinned or not, never move. Proposals are checked before any
// of them is applied; an invalid proposal rejects the whole fill. Auto-filled
// students are not pinned.
//
// Returns:
//   - int: Number of students placed
//   - error: Strategy error or ErrInvalidAssignment
func (e *Engine) AutoFill(strategy types.FillStrategy) (int, error) {
	free := e.FreeSeats()
	unplaced := e.Unplaced()
	if len(unplaced) == 0 {
		return 0, nil
	}

	proposal, err := strategy.Fill(free, unplaced)
	if err != nil {
		return 0, fmt.Errorf("auto fill: %w", err)
	}

	allowed := make(map[types.SeatKey]struct{}, len(free))
	for _, k := range free {
		allowed[k] = struct{}{}
	}
	waiting := make(map[int]struct{}, len(unplaced))
	for _, id := range unplaced {
		waiting[id] = struct{}{}
	}
	used := make(map[types.SeatKey]struct{}, len(proposal))
	for id, key := range proposal {
		if _, ok := waiting[id]; !ok {
			return 0, fmt.Errorf("%w: student %d is not waiting for a seat", types.ErrInvalidAssignment, id)
		}
		if _, ok := allowed[key]; !ok {
			return 0, fmt.Errorf("%w: seat %s is not free", types.ErrInvalidAssignment, key)
		}
		if _, dup := used[key]; dup {
			return 0, fmt.Errorf("%w: seat %s proposed twice", types.ErrInvalidAssignment, key)
		}
		used[key] = struct{}{}
	}

	for _, id := range unplaced {
		if key, ok := proposal[id]; ok {
			e.st.Index.Place(id, key)
		}
	}

	e.metrics.RecordPlacementCount(e.st.Index.Len())
	e.logger.Info("auto fill applied", "placed", len(proposal), "left", len(unplaced)-len(proposal))

	return len(proposal), nil
}

func (e *Engine) selectedSeat() (types.SeatKey, bool) {
	sel := e.st.Selection
	if sel.Seat != nil {
		return *sel.Seat, true
	}
	if sel.Student != nil {
		return e.st.Index.SeatOf(*sel.Student)
	}

	return types.SeatKey{}, false
}

func seatOrNone(k types.SeatKey, ok bool) string {
	if !ok {
		return "none"
	}

	return k.String()
}
