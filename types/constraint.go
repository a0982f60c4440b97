package types

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of placement rule kinds.
type Kind string

const (
	// KindFrontRows requires a student to sit within the first K rows.
	KindFrontRows Kind = "front_rows"

	// KindBackRows requires a student to sit within the last K rows.
	KindBackRows Kind = "back_rows"

	// KindSoloTable requires a student to be alone at their table.
	KindSoloTable Kind = "solo_table"

	// KindEmptyNeighbor requires at least one empty seat next to a student.
	KindEmptyNeighbor Kind = "empty_neighbor"

	// KindNoAdjacent forbids any occupied seat directly next to a student.
	KindNoAdjacent Kind = "no_adjacent"

	// KindSameTable requires two students to share a table.
	KindSameTable Kind = "same_table"

	// KindFarApart requires two students to be at least D apart (Manhattan distance on tables).
	KindFarApart Kind = "far_apart"

	// KindForbidSeat keeps a seat empty.
	KindForbidSeat Kind = "forbid_seat"

	// KindExactSeat pins a student to a seat.
	KindExactSeat Kind = "exact_seat"
)

// Wire tags of the UI-only records that share the constraint list on the wire.
const (
	BatchMarkerTag = "_batch_marker_"
	ObjectiveTag   = "_objective_"
)

// Kinds lists every constraint kind in a stable order.
var Kinds = []Kind{
	KindFrontRows, KindBackRows, KindSoloTable, KindEmptyNeighbor, KindNoAdjacent,
	KindSameTable, KindFarApart, KindForbidSeat, KindExactSeat,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k.IsUnary() || k.IsBinary() || k.IsStructural()
}

// IsUnary reports whether the kind binds exactly one student.
func (k Kind) IsUnary() bool {
	switch k {
	case KindFrontRows, KindBackRows, KindSoloTable, KindEmptyNeighbor, KindNoAdjacent:
		return true
	default:
		return false
	}
}

// IsBinary reports whether the kind binds a pair of students.
func (k Kind) IsBinary() bool {
	return k == KindSameTable || k == KindFarApart
}

// IsStructural reports whether the kind binds a seat.
func (k Kind) IsStructural() bool {
	return k == KindForbidSeat || k == KindExactSeat
}

// UsesK reports whether the kind carries a row bound.
func (k Kind) UsesK() bool {
	return k == KindFrontRows || k == KindBackRows
}

// UsesD reports whether the kind carries a distance.
func (k Kind) UsesD() bool {
	return k == KindFarApart
}

// Constraint is one placement rule.
//
// Field usage depends on Kind:
//   - unary kinds: A (student), K for front_rows/back_rows
//   - binary kinds: A and B (students), D for far_apart
//   - forbid_seat: Seat
//   - exact_seat: A and Seat
//
// Entries created together from a multi-student selection share BatchID.
type Constraint struct {
	Kind    Kind
	A       int
	B       int
	K       int
	D       int
	Seat    SeatKey
	BatchID string
	Human   string
}

// References reports whether the constraint binds the given student.
func (c Constraint) References(studentID int) bool {
	switch {
	case c.Kind.IsBinary():
		return c.A == studentID || c.B == studentID
	case c.Kind.IsUnary(), c.Kind == KindExactSeat:
		return c.A == studentID
	default:
		return false
	}
}

// HasSeat reports whether the constraint binds a seat key.
func (c Constraint) HasSeat() bool {
	return c.Kind.IsStructural()
}

// Students returns the student ids bound by the constraint.
func (c Constraint) Students() []int {
	switch {
	case c.Kind.IsBinary():
		return []int{c.A, c.B}
	case c.Kind.IsUnary(), c.Kind == KindExactSeat:
		return []int{c.A}
	default:
		return nil
	}
}

type constraintWire struct {
	Type    string `json:"type"`
	A       *int   `json:"a,omitempty"`
	B       *int   `json:"b,omitempty"`
	K       *int   `json:"k,omitempty"`
	D       *int   `json:"d,omitempty"`
	X       *int   `json:"x,omitempty"`
	Y       *int   `json:"y,omitempty"`
	S       *int   `json:"s,omitempty"`
	Human   string `json:"human,omitempty"`
	BatchID string `json:"batch_id,omitempty"`
}

// MarshalJSON encodes the constraint in the flat wire form
// {"type", "a", "b", "k", "d", "x", "y", "s", "human", "batch_id"},
// emitting only the fields its kind uses.
func (c Constraint) MarshalJSON() ([]byte, error) {
	w := constraintWire{Type: string(c.Kind), Human: c.Human, BatchID: c.BatchID}

	switch {
	case c.Kind.IsUnary():
		w.A = ptr(c.A)
		if c.Kind.UsesK() {
			w.K = ptr(c.K)
		}
	case c.Kind.IsBinary():
		w.A, w.B = ptr(c.A), ptr(c.B)
		if c.Kind.UsesD() {
			w.D = ptr(c.D)
		}
	case c.Kind == KindExactSeat:
		w.A = ptr(c.A)
		w.X, w.Y, w.S = ptr(c.Seat.X), ptr(c.Seat.Y), ptr(c.Seat.S)
	case c.Kind == KindForbidSeat:
		w.X, w.Y, w.S = ptr(c.Seat.X), ptr(c.Seat.Y), ptr(c.Seat.S)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, c.Kind)
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes the flat wire form and checks that every field the
// kind needs is present.
func (c *Constraint) UnmarshalJSON(data []byte) error {
	var w constraintWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	kind := Kind(w.Type)
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, w.Type)
	}

	out := Constraint{Kind: kind, Human: w.Human, BatchID: w.BatchID}
	missing := func(field string) error {
		return fmt.Errorf("%w: %s requires %q", ErrMalformedConstraint, kind, field)
	}

	if kind.IsUnary() || kind.IsBinary() || kind == KindExactSeat {
		if w.A == nil {
			return missing("a")
		}
		out.A = *w.A
	}
	if kind.IsBinary() {
		if w.B == nil {
			return missing("b")
		}
		out.B = *w.B
	}
	if kind.UsesK() {
		out.K = 1
		if w.K != nil {
			out.K = *w.K
		}
	}
	if kind.UsesD() {
		out.D = 2
		if w.D != nil {
			out.D = *w.D
		}
	}
	if kind.IsStructural() {
		if w.X == nil || w.Y == nil || w.S == nil {
			return missing("x,y,s")
		}
		out.Seat = SeatKey{X: *w.X, Y: *w.Y, S: *w.S}
	}

	*c = out

	return nil
}

// BatchMarker is the UI-only summary record of a constraint batch.
//
// Markers are never sent to the solver. Count always equals the number of
// constraint entries carrying BatchID.
type BatchMarker struct {
	BatchID    string `json:"batch_id"`
	Kind       Kind   `json:"kind"`
	Human      string `json:"human"`
	Count      int    `json:"count"`
	StudentIDs []int  `json:"ids,omitempty"`
	Param      int    `json:"param,omitempty"`
}

// MarshalJSON encodes the marker with its "_batch_marker_" type tag.
func (m BatchMarker) MarshalJSON() ([]byte, error) {
	type alias BatchMarker

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: BatchMarkerTag, alias: alias(m)})
}

// Objective is a UI-only summary of a soft solver objective, synthesized for
// rendered exports.
type Objective struct {
	Key   string `json:"key"`
	Human string `json:"human"`
}

// MarshalJSON encodes the objective with its "_objective_" type tag.
func (o Objective) MarshalJSON() ([]byte, error) {
	type alias Objective

	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: ObjectiveTag, alias: alias(o)})
}

func ptr[T any](v T) *T {
	return &v
}
