package store

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/types"
)

// Store is the mutable state of one editing session.
type Store struct {
	Schema      types.Schema
	Index       *Index
	Forbidden   map[types.SeatKey]struct{}
	Constraints []types.Constraint
	Markers     []types.BatchMarker
	Selection   types.Selection
	Offsets     map[types.TableKey]types.Offset
	Options     types.SolveOptions
	NameView    types.NameView
	ClassName   string

	// EditingBatch is the batch id currently open for editing, "" when none.
	EditingBatch string

	students []types.Student
	byID     map[int]int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		Index:     NewIndex(),
		Forbidden: make(map[types.SeatKey]struct{}),
		Offsets:   make(map[types.TableKey]types.Offset),
		NameView:  types.NameViewBoth,
		byID:      make(map[int]int),
	}
}

// Students returns a copy of the roster in import order.
func (s *Store) Students() []types.Student {
	return slices.Clone(s.students)
}

// StudentCount returns the roster size.
func (s *Store) StudentCount() int {
	return len(s.students)
}

// Student returns the roster entry for id.
func (s *Store) Student(id int) (types.Student, bool) {
	i, ok := s.byID[id]
	if !ok {
		return types.Student{}, false
	}

	return s.students[i], true
}

// HasStudent reports whether id is in the roster.
func (s *Store) HasStudent(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// SetRoster replaces the roster.
//
// Placements, constraints and selection referencing students that are no longer
// present are dropped; batch markers are recounted and empty batches removed.
//
// Returns:
//   - error: ErrDuplicateStudent when two entries share an id (nothing changes)
func (s *Store) SetRoster(students []types.Student) error {
	byID := make(map[int]int, len(students))
	for i, st := range students {
		if _, dup := byID[st.ID]; dup {
			return fmt.Errorf("%w: %d", types.ErrDuplicateStudent, st.ID)
		}
		byID[st.ID] = i
	}

	s.students = slices.Clone(students)
	s.byID = byID
	s.pruneStudents()

	return nil
}

func (s *Store) pruneStudents() {
	for _, id := range s.Index.Placements() {
		if !s.HasStudent(id) {
			s.Index.Remove(id)
		}
	}

	s.Constraints = slices.DeleteFunc(s.Constraints, func(c types.Constraint) bool {
		for _, id := range c.Students() {
			if !s.HasStudent(id) {
				return true
			}
		}
		return false
	})
	s.RecountMarkers()

	if s.Selection.Student != nil && !s.HasStudent(*s.Selection.Student) {
		s.Selection = types.Selection{}
	}
}

// RecountMarkers sets every marker's count to the number of entries carrying
// its batch id and removes markers whose batch became empty.
func (s *Store) RecountMarkers() {
	counts := s.batchCounts()
	s.Markers = slices.DeleteFunc(s.Markers, func(m types.BatchMarker) bool {
		return counts[m.BatchID] == 0
	})
	for i := range s.Markers {
		s.Markers[i].Count = counts[s.Markers[i].BatchID]
	}
	if s.EditingBatch != "" && counts[s.EditingBatch] == 0 {
		s.EditingBatch = ""
	}
}

func (s *Store) batchCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range s.Constraints {
		if c.BatchID != "" {
			counts[c.BatchID]++
		}
	}

	return counts
}

// Marker returns the marker of a batch.
func (s *Store) Marker(batchID string) (types.BatchMarker, bool) {
	for _, m := range s.Markers {
		if m.BatchID == batchID {
			return m, true
		}
	}

	return types.BatchMarker{}, false
}

// IsForbidden reports whether key is in the forbidden set.
func (s *Store) IsForbidden(key types.SeatKey) bool {
	_, ok := s.Forbidden[key]
	return ok
}

// SetForbidden adds or removes key from the forbidden set and keeps the
// matching forbid_seat rule in sync.
func (s *Store) SetForbidden(key types.SeatKey, on bool) {
	if on {
		if s.IsForbidden(key) {
			return
		}
		s.Forbidden[key] = struct{}{}
		s.Constraints = append(s.Constraints, room.ForbidSeat(key))

		return
	}

	delete(s.Forbidden, key)
	s.Constraints = slices.DeleteFunc(s.Constraints, func(c types.Constraint) bool {
		return c.Kind == types.KindForbidSeat && c.Seat == key
	})
}

// ExactSeatOf returns the seat student id is pinned to.
func (s *Store) ExactSeatOf(id int) (types.SeatKey, bool) {
	for _, c := range s.Constraints {
		if c.Kind == types.KindExactSeat && c.A == id {
			return c.Seat, true
		}
	}

	return types.SeatKey{}, false
}

// UpsertExactSeat pins student id to key, replacing any previous pin in place.
func (s *Store) UpsertExactSeat(id int, key types.SeatKey) {
	c := types.Constraint{
		Kind:  types.KindExactSeat,
		A:     id,
		Seat:  key,
		Human: s.DisplayName(id) + " must sit at seat " + key.String(),
	}

	i := slices.IndexFunc(s.Constraints, exactFor(id))
	if i < 0 {
		s.Constraints = append(s.Constraints, c)
		return
	}

	s.Constraints[i] = c
	tail := slices.DeleteFunc(s.Constraints[i+1:], exactFor(id))
	s.Constraints = s.Constraints[:i+1+len(tail)]
}

func exactFor(id int) func(types.Constraint) bool {
	return func(c types.Constraint) bool {
		return c.Kind == types.KindExactSeat && c.A == id
	}
}

// RemoveExactSeat removes every pin of student id.
//
// Returns:
//   - bool: true if a pin was removed
func (s *Store) RemoveExactSeat(id int) bool {
	before := len(s.Constraints)
	s.Constraints = slices.DeleteFunc(s.Constraints, exactFor(id))

	return len(s.Constraints) != before
}

// DisplayName returns the full name of student id, or "#id" when unknown.
func (s *Store) DisplayName(id int) string {
	st, ok := s.Student(id)
	if !ok {
		return fmt.Sprintf("#%d", id)
	}
	if name := st.FullName(); name != "" {
		return name
	}

	return fmt.Sprintf("#%d", id)
}

// ForbiddenList returns the forbidden seats in canonical order.
func (s *Store) ForbiddenList() []types.SeatKey {
	return slices.SortedFunc(maps.Keys(s.Forbidden), types.SeatKey.Compare)
}

// Plan returns a copy of the seat-bound state for reconciliation.
func (s *Store) Plan() room.Plan {
	return room.Plan{
		Placements:  s.Index.Placements(),
		Forbidden:   maps.Clone(s.Forbidden),
		Constraints: slices.Clone(s.Constraints),
	}
}

// Reconcile brings placements, forbidden seats, constraints, offsets and the
// selection in line with the current schema.
func (s *Store) Reconcile() room.Report {
	plan, rep := room.Reconcile(s.Schema, s.Plan())

	// plan.Placements is a bijection by construction
	_ = s.Index.Replace(plan.Placements)
	s.Forbidden = plan.Forbidden
	s.Constraints = plan.Constraints
	s.RecountMarkers()

	for key := range s.Offsets {
		if !room.IsValidTable(s.Schema, key) {
			delete(s.Offsets, key)
		}
	}

	sel := s.Selection
	if sel.Seat != nil && !room.IsValidSeat(s.Schema, *sel.Seat) {
		s.Selection = types.Selection{}
	}
	if sel.Table != nil && !room.IsValidTable(s.Schema, *sel.Table) {
		s.Selection = types.Selection{}
	}

	return rep
}

// CheckInvariants verifies the bijection, the disjointness of placements and
// forbidden seats, and batch integrity.
func (s *Store) CheckInvariants() error {
	if err := s.Index.Check(); err != nil {
		return err
	}

	for key := range s.Forbidden {
		if id, ok := s.Index.StudentAt(key); ok {
			return fmt.Errorf("forbidden seat %s holds student %d", key, id)
		}
	}

	counts := s.batchCounts()
	markers := make(map[string]int, len(s.Markers))
	for _, m := range s.Markers {
		if _, dup := markers[m.BatchID]; dup {
			return fmt.Errorf("batch %s has two markers", m.BatchID)
		}
		markers[m.BatchID] = m.Count
		if counts[m.BatchID] != m.Count {
			return fmt.Errorf("batch %s marker count %d, entries %d", m.BatchID, m.Count, counts[m.BatchID])
		}
	}
	for id := range counts {
		if _, ok := markers[id]; !ok {
			return fmt.Errorf("batch %s has no marker", id)
		}
	}

	return nil
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	ix := NewIndex()
	_ = ix.Replace(s.Index.Placements())

	return &Store{
		Schema:       s.Schema.Clone(),
		Index:        ix,
		Forbidden:    maps.Clone(s.Forbidden),
		Constraints:  slices.Clone(s.Constraints),
		Markers:      cloneMarkers(s.Markers),
		Selection:    s.Selection.Clone(),
		Offsets:      maps.Clone(s.Offsets),
		Options:      s.Options,
		NameView:     s.NameView,
		ClassName:    s.ClassName,
		EditingBatch: s.EditingBatch,
		students:     slices.Clone(s.students),
		byID:         maps.Clone(s.byID),
	}
}

func cloneMarkers(in []types.BatchMarker) []types.BatchMarker {
	out := slices.Clone(in)
	for i := range out {
		out[i].StudentIDs = slices.Clone(out[i].StudentIDs)
	}

	return out
}

// CheckAssignment validates a complete assignment against the roster, the
// schema and the forbidden set without changing anything.
//
// Returns:
//   - error: ErrInvalidAssignment naming the first offending entry
func (s *Store) CheckAssignment(assignment map[types.SeatKey]int) error {
	seen := make(map[int]types.SeatKey, len(assignment))
	for _, key := range slices.SortedFunc(maps.Keys(assignment), types.SeatKey.Compare) {
		id := assignment[key]
		if !s.HasStudent(id) {
			return fmt.Errorf("%w: unknown student %d at %s", types.ErrInvalidAssignment, id, key)
		}
		if !room.IsValidSeat(s.Schema, key) {
			return fmt.Errorf("%w: seat %s does not exist", types.ErrInvalidAssignment, key)
		}
		if s.IsForbidden(key) {
			return fmt.Errorf("%w: seat %s is forbidden", types.ErrInvalidAssignment, key)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%w: student %d placed at %s and %s", types.ErrInvalidAssignment, id, prev, key)
		}
		seen[id] = key
	}

	return nil
}
