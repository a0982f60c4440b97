package constraint

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/internal/store"
	"github.com/arloliu/seatplan/types"
)

// Manager creates, edits and deletes placement rules in a shared store.
//
// Like the assignment engine, it is not safe for concurrent use.
type Manager struct {
	st      *store.Store
	logger  types.Logger
	metrics types.EditorMetrics

	// newID generates batch ids; replaced in tests.
	newID func() string
}

// NewManager creates a constraint manager.
func NewManager(st *store.Store, logger types.Logger, metrics types.EditorMetrics) *Manager {
	return &Manager{
		st:      st,
		logger:  logger,
		metrics: metrics,
		newID:   uuid.NewString,
	}
}

// expansion is a validated batch ready to be written to the store.
type expansion struct {
	entries []types.Constraint
	marker  types.BatchMarker
}

// Add creates a batch of rules of the given kind for the selected students.
//
// Unary kinds produce one entry per student; binary kinds produce one entry per
// unordered pair. Duplicate ids are collapsed, keeping the first occurrence.
// param is the row bound for front_rows/back_rows (at least 1) or the distance
// for far_apart (clamped to [2, max(2, MaxManhattan)]); other kinds ignore it.
//
// Parameters:
//   - kind: Unary or binary constraint kind
//   - ids: Selected student ids
//   - param: Kind parameter
//
// Returns:
//   - string: The new batch id
//   - error: ErrUnsupportedKind, ErrUnknownStudent or ErrNotEnoughStudents (no mutation)
//
// Example:
//
//	batchID, err := mgr.Add(types.KindSameTable, []int{1, 2, 3}, 0)
//	// 3 entries (1-2, 1-3, 2-3) plus one marker with Count 3
func (m *Manager) Add(kind types.Kind, ids []int, param int) (string, error) {
	batchID := m.newID()

	exp, err := m.expand(batchID, kind, ids, param)
	if err != nil {
		return "", err
	}

	m.st.Constraints = append(m.st.Constraints, exp.entries...)
	m.st.Markers = append(m.st.Markers, exp.marker)

	m.metrics.RecordConstraintOp("add", kind)
	m.logger.Debug("constraint batch added", "batch_id", batchID, "kind", string(kind), "entries", len(exp.entries))

	return batchID, nil
}

// EditBatch replaces every entry of a batch with a fresh expansion, keeping the
// batch id. The new entries take the position of the first old entry.
//
// Returns:
//   - error: ErrBatchNotFound, or any error of Add (no mutation)
func (m *Manager) EditBatch(batchID string, kind types.Kind, ids []int, param int) error {
	markerAt := slices.IndexFunc(m.st.Markers, func(bm types.BatchMarker) bool {
		return bm.BatchID == batchID
	})
	if markerAt < 0 {
		return fmt.Errorf("%w: %s", types.ErrBatchNotFound, batchID)
	}

	exp, err := m.expand(batchID, kind, ids, param)
	if err != nil {
		return err
	}

	at := slices.IndexFunc(m.st.Constraints, inBatch(batchID))
	rest := slices.DeleteFunc(slices.Clone(m.st.Constraints), inBatch(batchID))
	if at < 0 || at > len(rest) {
		at = len(rest)
	}
	m.st.Constraints = slices.Insert(rest, at, exp.entries...)
	m.st.Markers[markerAt] = exp.marker

	m.metrics.RecordConstraintOp("edit", kind)
	m.logger.Debug("constraint batch edited", "batch_id", batchID, "kind", string(kind), "entries", len(exp.entries))

	return nil
}

// DeleteBatch removes every entry of a batch and its marker. Deleting the batch
// being edited ends the edit.
//
// Returns:
//   - int: Number of entries removed, marker excluded
//   - error: ErrBatchNotFound
func (m *Manager) DeleteBatch(batchID string) (int, error) {
	marker, ok := m.st.Marker(batchID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", types.ErrBatchNotFound, batchID)
	}

	before := len(m.st.Constraints)
	m.st.Constraints = slices.DeleteFunc(m.st.Constraints, inBatch(batchID))
	m.st.Markers = slices.DeleteFunc(m.st.Markers, func(bm types.BatchMarker) bool {
		return bm.BatchID == batchID
	})
	if m.st.EditingBatch == batchID {
		m.st.EditingBatch = ""
	}

	removed := before - len(m.st.Constraints)
	m.metrics.RecordConstraintOp("delete_batch", marker.Kind)
	m.logger.Debug("constraint batch deleted", "batch_id", batchID, "entries", removed)

	return removed, nil
}

// DeleteSingle removes one non-batched rule and applies its side effect:
// removing forbid_seat frees the seat, removing exact_seat unassigns the pinned
// student if they still sit on that seat.
//
// Returns:
//   - error: ErrBatchedConstraint for a batch entry, ErrConstraintNotFound
func (m *Manager) DeleteSingle(c types.Constraint) error {
	if c.BatchID != "" {
		return fmt.Errorf("%w: batch %s", types.ErrBatchedConstraint, c.BatchID)
	}

	i := slices.Index(m.st.Constraints, c)
	if i < 0 {
		return fmt.Errorf("%w: %s", types.ErrConstraintNotFound, c.Kind)
	}

	switch c.Kind {
	case types.KindForbidSeat:
		m.st.SetForbidden(c.Seat, false)
	case types.KindExactSeat:
		m.st.Constraints = slices.Delete(m.st.Constraints, i, i+1)
		if id, ok := m.st.Index.StudentAt(c.Seat); ok && id == c.A {
			m.st.Index.Remove(id)
			m.logger.Debug("pinned student unassigned", "student_id", id, "seat", c.Seat.String())
		}
	default:
		m.st.Constraints = slices.Delete(m.st.Constraints, i, i+1)
	}

	m.metrics.RecordConstraintOp("delete", c.Kind)

	return nil
}

// BeginEdit opens a batch for editing and returns its marker.
func (m *Manager) BeginEdit(batchID string) (types.BatchMarker, error) {
	marker, ok := m.st.Marker(batchID)
	if !ok {
		return types.BatchMarker{}, fmt.Errorf("%w: %s", types.ErrBatchNotFound, batchID)
	}
	m.st.EditingBatch = batchID

	return marker, nil
}

// EndEdit leaves batch editing mode.
func (m *Manager) EndEdit() {
	m.st.EditingBatch = ""
}

// Batch returns the entries of a batch in list order.
func (m *Manager) Batch(batchID string) []types.Constraint {
	var out []types.Constraint
	for _, c := range m.st.Constraints {
		if c.BatchID == batchID {
			out = append(out, c)
		}
	}

	return out
}

// ClampParam normalizes a kind parameter for the current schema.
func (m *Manager) ClampParam(kind types.Kind, param int) int {
	switch {
	case kind.UsesK():
		return max(1, param)
	case kind.UsesD():
		return min(max(2, param), max(2, room.MaxManhattan(m.st.Schema)))
	default:
		return 0
	}
}

func (m *Manager) expand(batchID string, kind types.Kind, ids []int, param int) (expansion, error) {
	if !kind.IsUnary() && !kind.IsBinary() {
		return expansion{}, fmt.Errorf("%w: %q cannot be created from a selection", types.ErrUnsupportedKind, kind)
	}

	selected := make([]int, 0, len(ids))
	for _, id := range ids {
		if !m.st.HasStudent(id) {
			return expansion{}, fmt.Errorf("%w: %d", types.ErrUnknownStudent, id)
		}
		if !slices.Contains(selected, id) {
			selected = append(selected, id)
		}
	}

	need := 1
	if kind.IsBinary() {
		need = 2
	}
	if len(selected) < need {
		return expansion{}, fmt.Errorf("%w: %s needs %d, got %d", types.ErrNotEnoughStudents, kind, need, len(selected))
	}

	param = m.ClampParam(kind, param)

	var entries []types.Constraint
	if kind.IsUnary() {
		entries = make([]types.Constraint, 0, len(selected))
		for _, a := range selected {
			entries = append(entries, types.Constraint{
				Kind:    kind,
				A:       a,
				K:       param,
				BatchID: batchID,
				Human:   entryHuman(kind, m.st.DisplayName(a), "", param),
			})
		}
	} else {
		entries = make([]types.Constraint, 0, len(selected)*(len(selected)-1)/2)
		for i, a := range selected {
			for _, b := range selected[i+1:] {
				entries = append(entries, types.Constraint{
					Kind:    kind,
					A:       a,
					B:       b,
					D:       param,
					BatchID: batchID,
					Human:   entryHuman(kind, m.st.DisplayName(a), m.st.DisplayName(b), param),
				})
			}
		}
	}

	human := batchHuman(kind, len(entries), param)
	if len(entries) == 1 {
		human = entries[0].Human
	}

	return expansion{
		entries: entries,
		marker: types.BatchMarker{
			BatchID:    batchID,
			Kind:       kind,
			Human:      human,
			Count:      len(entries),
			StudentIDs: selected,
			Param:      param,
		},
	}, nil
}

func inBatch(batchID string) func(types.Constraint) bool {
	return func(c types.Constraint) bool {
		return c.BatchID == batchID
	}
}

// MarkerFor rebuilds the marker of a batch from its entries, for documents
// that carry batch ids without a usable marker.
//
// Returns:
//   - types.BatchMarker: Marker whose count matches entries
func MarkerFor(batchID string, entries []types.Constraint) types.BatchMarker {
	m := types.BatchMarker{BatchID: batchID, Count: len(entries)}
	if len(entries) == 0 {
		return m
	}

	first := entries[0]
	m.Kind = first.Kind
	switch {
	case first.Kind.UsesK():
		m.Param = first.K
	case first.Kind.UsesD():
		m.Param = first.D
	}

	for _, c := range entries {
		for _, id := range c.Students() {
			if !slices.Contains(m.StudentIDs, id) {
				m.StudentIDs = append(m.StudentIDs, id)
			}
		}
	}

	m.Human = batchHuman(m.Kind, m.Count, m.Param)
	if m.Count == 1 && first.Human != "" {
		m.Human = first.Human
	}

	return m
}
