package layout

import (
	"fmt"

	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/internal/store"
	"github.com/arloliu/seatplan/types"
)

// Nudger moves the selected table with keyboard steps.
//
// The armed table is the table held in the store selection. A draft offset
// accumulates nudges and is only merged into the persisted offset on a valid
// commit. Any selection change that moves away from the drafted table discards
// the draft.
type Nudger struct {
	st      *store.Store
	geo     Geometry
	step    float64
	logger  types.Logger
	metrics types.LayoutMetrics

	draft *types.Draft
}

// NewNudger creates a nudger over the store's offsets.
//
// Parameters:
//   - st: Shared editor state
//   - geo: Layout metrics
//   - step: Pixels per nudge
//   - logger: Logger
//   - metrics: Layout metrics collector
func NewNudger(st *store.Store, geo Geometry, step float64, logger types.Logger, metrics types.LayoutMetrics) *Nudger {
	return &Nudger{st: st, geo: geo, step: step, logger: logger, metrics: metrics}
}

// Arm selects a table for repositioning.
//
// Arming is refused while a student or a seat is selected. Arming another table
// discards the outstanding draft; arming the armed table again keeps it.
//
// Returns:
//   - error: ErrSelectionActive or ErrUnknownTable (no mutation)
func (n *Nudger) Arm(key types.TableKey) error {
	sel := n.st.Selection
	if sel.Student != nil || sel.Seat != nil {
		return types.ErrSelectionActive
	}
	if !room.IsValidTable(n.st.Schema, key) {
		return fmt.Errorf("%w: %s", types.ErrUnknownTable, key)
	}

	n.sync()
	if n.draft != nil && n.draft.Table != key {
		n.draft = nil
	}
	n.st.Selection = types.Selection{Table: &key}

	return nil
}

// Armed returns the table currently armed.
func (n *Nudger) Armed() (types.TableKey, bool) {
	if t := n.st.Selection.Table; t != nil {
		return *t, true
	}

	return types.TableKey{}, false
}

// Nudge moves the draft of the armed table one step in dir and recomputes
// whether the moved table overlaps any other table.
//
// Returns:
//   - types.Draft: Updated draft
//   - error: ErrNoTableArmed
func (n *Nudger) Nudge(dir types.Direction) (types.Draft, error) {
	n.sync()

	key, ok := n.Armed()
	if !ok {
		return types.Draft{}, types.ErrNoTableArmed
	}
	if n.draft == nil {
		n.draft = &types.Draft{Table: key}
	}

	d := dir.Delta(n.step)
	n.draft.DX += d.DX
	n.draft.DY += d.DY
	n.draft.Invalid = n.collides(key, types.Offset{DX: n.draft.DX, DY: n.draft.DY})

	return *n.draft, nil
}

// Draft returns the outstanding draft.
func (n *Nudger) Draft() (types.Draft, bool) {
	n.sync()
	if n.draft == nil {
		return types.Draft{}, false
	}

	return *n.draft, true
}

// Commit merges the draft into the persisted offset when it overlaps nothing.
// The draft is discarded either way and the table stays armed.
//
// Returns:
//   - bool: true if an offset was persisted
//   - error: ErrCollision when the draft overlapped another table
func (n *Nudger) Commit() (bool, error) {
	n.sync()
	if n.draft == nil {
		return false, nil
	}

	draft := *n.draft
	n.draft = nil

	off := types.Offset{DX: draft.DX, DY: draft.DY}
	// re-check against the current state; offsets may have changed since the last nudge
	if draft.Invalid || n.collides(draft.Table, off) {
		n.metrics.RecordNudgeCommit(false)
		n.logger.Debug("table move refused", "table", draft.Table.String(), "dx", draft.DX, "dy", draft.DY)

		return false, fmt.Errorf("%w: table %s", types.ErrCollision, draft.Table)
	}

	merged := n.st.Offsets[draft.Table].Add(off)
	if merged.IsZero() {
		delete(n.st.Offsets, draft.Table)
	} else {
		n.st.Offsets[draft.Table] = merged
	}

	n.metrics.RecordNudgeCommit(true)
	n.logger.Debug("table moved", "table", draft.Table.String(), "dx", merged.DX, "dy", merged.DY)

	return true, nil
}

// Cancel discards the draft and keeps the table armed.
func (n *Nudger) Cancel() {
	n.draft = nil
}

// Disarm discards the draft and clears the table selection.
func (n *Nudger) Disarm() {
	n.draft = nil
	if n.st.Selection.Table != nil {
		n.st.Selection = types.Selection{}
	}
}

// Rects returns the current table rectangles with persisted offsets applied.
func (n *Nudger) Rects() map[types.TableKey]types.Rect {
	return n.geo.Rects(n.st.Schema, n.st.Offsets)
}

// collides reports whether table key, moved by draft on top of its persisted
// offset, overlaps any other table.
func (n *Nudger) collides(key types.TableKey, draft types.Offset) bool {
	rects := n.Rects()
	moving, ok := rects[key]
	if !ok {
		return true
	}
	moving = moving.Translate(draft)

	for other, r := range rects {
		if other != key && moving.Overlaps(r) {
			return true
		}
	}

	return false
}

// sync drops a draft whose table is no longer armed.
func (n *Nudger) sync() {
	if n.draft == nil {
		return
	}
	if t := n.st.Selection.Table; t == nil || *t != n.draft.Table {
		n.draft = nil
	}
}
