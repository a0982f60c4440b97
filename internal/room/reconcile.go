package room

import (
	"maps"
	"slices"

	"github.com/arloliu/seatplan/types"
)

// Plan is the seat-bound part of the editor state that a schema edit can invalidate.
type Plan struct {
	// Placements maps occupied seats to student ids.
	Placements map[types.SeatKey]int

	// Forbidden is the set of seats that may never receive a placement.
	Forbidden map[types.SeatKey]struct{}

	// Constraints is the ordered constraint list.
	Constraints []types.Constraint
}

// Report counts what a reconciliation dropped.
type Report struct {
	Placements  int
	Forbidden   int
	Constraints int
}

// Changed reports whether anything was dropped.
func (r Report) Changed() bool {
	return r.Placements+r.Forbidden+r.Constraints > 0
}

// Reconcile recomputes the subset of plan that is still valid for schema.
//
// Rules:
//   - placements on invalid seats are dropped, as are duplicate placements of one student
//   - forbidden seats that are invalid or occupied are dropped
//   - exact_seat rules on invalid or forbidden seats are dropped
//   - forbid_seat rules are regenerated to match the forbidden set one-to-one:
//     existing entries keep their position, missing ones are appended in seat order
//
// The input plan is not modified. Reconcile is idempotent: reconciling its own
// output against the same schema returns an equal plan and an empty report.
//
// Parameters:
//   - schema: Room schema to reconcile against
//   - plan: Current placements, forbidden seats and constraints
//
// Returns:
//   - Plan: Reconciled copy
//   - Report: Number of dropped entries per category
func Reconcile(schema types.Schema, plan Plan) (Plan, Report) {
	var rep Report

	placements := make(map[types.SeatKey]int, len(plan.Placements))
	seen := make(map[int]struct{}, len(plan.Placements))
	for _, key := range sortedSeats(plan.Placements) {
		id := plan.Placements[key]
		if _, dup := seen[id]; dup || !IsValidSeat(schema, key) {
			rep.Placements++
			continue
		}
		seen[id] = struct{}{}
		placements[key] = id
	}

	forbidden := make(map[types.SeatKey]struct{}, len(plan.Forbidden))
	for key := range plan.Forbidden {
		_, occupied := placements[key]
		if occupied || !IsValidSeat(schema, key) {
			rep.Forbidden++
			continue
		}
		forbidden[key] = struct{}{}
	}

	constraints := make([]types.Constraint, 0, len(plan.Constraints)+len(forbidden))
	listed := make(map[types.SeatKey]struct{}, len(forbidden))
	for _, c := range plan.Constraints {
		switch c.Kind {
		case types.KindForbidSeat:
			_, keep := forbidden[c.Seat]
			_, dup := listed[c.Seat]
			if !keep || dup {
				rep.Constraints++
				continue
			}
			listed[c.Seat] = struct{}{}
		case types.KindExactSeat:
			_, banned := forbidden[c.Seat]
			if banned || !IsValidSeat(schema, c.Seat) {
				rep.Constraints++
				continue
			}
		}
		constraints = append(constraints, c)
	}

	for _, key := range slices.SortedFunc(maps.Keys(forbidden), types.SeatKey.Compare) {
		if _, ok := listed[key]; !ok {
			constraints = append(constraints, ForbidSeat(key))
		}
	}

	return Plan{Placements: placements, Forbidden: forbidden, Constraints: constraints}, rep
}

// ForbidSeat returns the forbid_seat rule for key.
func ForbidSeat(key types.SeatKey) types.Constraint {
	return types.Constraint{
		Kind:  types.KindForbidSeat,
		Seat:  key,
		Human: "Seat " + key.String() + " must stay empty",
	}
}

func sortedSeats(m map[types.SeatKey]int) []types.SeatKey {
	return slices.SortedFunc(maps.Keys(m), types.SeatKey.Compare)
}
