package seatplan

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/seatplan/internal/assignment"
	"github.com/arloliu/seatplan/internal/constraint"
	"github.com/arloliu/seatplan/internal/hooks"
	"github.com/arloliu/seatplan/internal/layout"
	"github.com/arloliu/seatplan/internal/logger"
	"github.com/arloliu/seatplan/internal/metrics"
	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/internal/solve"
	"github.com/arloliu/seatplan/internal/store"
	"github.com/arloliu/seatplan/strategy"
)

// Editor is the single source of truth of one seating-plan editing session.
//
// It owns the roster, the room schema, placements, forbidden seats, placement
// rules, the selection and table offsets, and drives the solver and export
// backends. Every mutation is validated first and either applies completely or
// returns an error and changes nothing.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Each operation runs under one mutex, so operations are linearizable
//   - The solve poll loop only touches state through the apply step, which takes the same mutex
//
// Rendering:
//   - Subscribe delivers a Change after every committed mutation
//   - View returns a consistent copy of the whole state
type Editor struct {
	cfg Config

	mu     sync.Mutex
	st     *store.Store
	engine *assignment.Engine
	rules  *constraint.Manager
	nudger *layout.Nudger
	geo    layout.Geometry

	// Optional dependencies
	solver   *solve.Orchestrator
	exporter ExportBackend
	roster   RosterSource
	fill     FillStrategy
	hooks    Hooks
	metrics  MetricsCollector
	logger   Logger

	// Change fan-out
	subscribers      *xsync.Map[uint64, *subscriber]
	nextSubscriberID atomic.Uint64
	version          atomic.Uint64

	// ctx is passed to hooks
	ctx context.Context
}

// NewEditor creates an empty editing session.
//
// Returns a concrete *Editor following the "accept interfaces, return structs"
// principle. Consumers can define their own narrow interfaces for testing.
//
// Parameters:
//   - cfg: Configuration; missing values are filled with defaults (nil uses DefaultConfig)
//   - opts: Optional dependencies (backends, roster source, hooks, metrics, logger, clock)
//
// Returns:
//   - *Editor: Editor with an empty roster and room
//   - error: ErrInvalidConfig when the configuration is invalid
//
// Example:
//
//	cfg := seatplan.DefaultConfig()
//	client, _ := backend.NewHTTP("http://localhost:8000")
//	ed, err := seatplan.NewEditor(&cfg,
//	    seatplan.WithSolverBackend(client),
//	    seatplan.WithExportBackend(client),
//	)
func NewEditor(cfg *Config, opts ...Option) (*Editor, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
		SetDefaults(&c)
	}

	options := &editorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	var loggerInstance Logger = logger.NewNop()
	if options.logger != nil {
		loggerInstance = options.logger
	}

	if err := c.ValidateWithWarnings(loggerInstance); err != nil {
		return nil, err
	}

	fill := options.fill
	if fill == nil {
		fill = strategy.NewSequential()
	}

	st := store.New()
	st.NameView = c.Export.NameView
	st.Options.Solver = c.Solve.Solver
	st.Options.TimeBudgetMs = int(c.Solve.DefaultBudget.Milliseconds())

	geo := layout.DefaultGeometry()

	e := &Editor{
		cfg:         c,
		st:          st,
		engine:      assignment.NewEngine(st, loggerInstance, metricsCollector),
		rules:       constraint.NewManager(st, loggerInstance, metricsCollector),
		nudger:      layout.NewNudger(st, geo, c.Layout.NudgeStep, loggerInstance, metricsCollector),
		geo:         geo,
		exporter:    options.exporter,
		roster:      options.roster,
		fill:        fill,
		hooks:       hooks.Merge(options.hooks),
		metrics:     metricsCollector,
		logger:      loggerInstance,
		subscribers: xsync.NewMap[uint64, *subscriber](),
		ctx:         context.Background(),
	}

	if options.solver != nil {
		solveOpts := []solve.Option{
			solve.WithPolicy(solve.Policy{
				InitialDelay: c.Solve.InitialPollDelay,
				MaxDelay:     c.Solve.MaxPollDelay,
				Multiplier:   c.Solve.PollMultiplier,
				Grace:        c.Solve.Grace,
			}),
			solve.WithFinishHook(e.solveFinished),
		}
		if options.clock != nil {
			solveOpts = append(solveOpts, solve.WithClock(options.clock))
		}

		orch, err := solve.NewOrchestrator(options.solver, e.applyAssignment, loggerInstance, metricsCollector, solveOpts...)
		if err != nil {
			return nil, err
		}
		e.solver = orch
	}

	return e, nil
}

// Config returns the effective configuration.
func (e *Editor) Config() Config {
	return e.cfg
}

// logError logs an error message.
func (e *Editor) logError(msg string, keysAndValues ...any) {
	// Logger is always non-nil (defaults to nop logger)
	e.logger.Error(msg, keysAndValues...)
}

// mutate runs fn under the editor mutex and notifies subscribers when fn
// reports a change.
func (e *Editor) mutate(kind ChangeKind, fn func() (bool, error)) error {
	e.mu.Lock()
	changed, err := fn()
	var version uint64
	if err == nil && changed {
		version = e.version.Add(1)
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		e.notify(kind, version)
	}

	return nil
}

// ============================================================================
// Roster
// ============================================================================

// SetRoster replaces the roster.
//
// Placements, rules and the selection that reference students no longer in the
// roster are dropped.
//
// Returns:
//   - error: ErrDuplicateStudent (no mutation)
func (e *Editor) SetRoster(students []Student) error {
	return e.mutate(ChangeRoster, func() (bool, error) {
		if err := e.st.SetRoster(students); err != nil {
			return false, err
		}
		e.metrics.RecordPlacementCount(e.st.Index.Len())
		e.logger.Info("roster loaded", "students", len(students))

		return true, nil
	})
}

// LoadRoster reads the roster from the configured RosterSource and installs it.
//
// Parameters:
//   - ctx: Context for the source call
//
// Returns:
//   - error: ErrRosterSourceRequired, a source error, or ErrDuplicateStudent
func (e *Editor) LoadRoster(ctx context.Context) error {
	if e.roster == nil {
		return ErrRosterSourceRequired
	}

	students, err := e.roster.ListStudents(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	return e.SetRoster(students)
}

// Students returns the roster in import order.
func (e *Editor) Students() []Student {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.st.Students()
}

// ============================================================================
// Room schema
// ============================================================================

// Schema returns a copy of the room schema.
func (e *Editor) Schema() Schema {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.st.Schema.Clone()
}

// SetSchema replaces the room schema and reconciles everything bound to seats.
//
// Returns:
//   - error: ErrInvalidSchema for an empty row or a zero capacity (no mutation)
func (e *Editor) SetSchema(schema Schema) error {
	if err := room.Validate(schema); err != nil {
		return err
	}

	return e.mutate(ChangeSchema, func() (bool, error) {
		e.applySchema(schema.Clone())
		return true, nil
	})
}

// BuildUniform replaces the room with rows identical rows of the given capacities.
//
// Example:
//
//	err := ed.BuildUniform(5, []int{2, 3, 2}) // five rows: table of 2, table of 3, table of 2
func (e *Editor) BuildUniform(rows int, caps []int) error {
	schema, err := room.Uniform(rows, caps)
	if err != nil {
		return err
	}

	return e.mutate(ChangeSchema, func() (bool, error) {
		e.applySchema(schema)
		return true, nil
	})
}

// AddRow appends a row at the back of the room.
func (e *Editor) AddRow(caps []int) error {
	if err := room.ValidateRow(caps); err != nil {
		return err
	}

	return e.mutate(ChangeSchema, func() (bool, error) {
		schema := e.st.Schema.Clone()
		schema = append(schema, slices.Clone(caps))
		e.applySchema(schema)

		return true, nil
	})
}

// DeleteRow removes row y; rows behind it move one row forward and
// everything bound to their seats is reconciled against the new indices.
//
// Returns:
//   - error: ErrInvalidSchema when y is out of range (no mutation)
func (e *Editor) DeleteRow(y int) error {
	return e.mutate(ChangeSchema, func() (bool, error) {
		if y < 0 || y >= e.st.Schema.Rows() {
			return false, fmt.Errorf("%w: no row %d", ErrInvalidSchema, y)
		}
		schema := e.st.Schema.Clone()
		schema = slices.Delete(schema, y, y+1)
		e.applySchema(schema)

		return true, nil
	})
}

// ClearSchema empties the room. Every placement and forbidden seat is dropped.
func (e *Editor) ClearSchema() {
	_ = e.mutate(ChangeSchema, func() (bool, error) {
		e.applySchema(Schema{})
		return true, nil
	})
}

// applySchema installs schema and reconciles. Caller holds e.mu.
func (e *Editor) applySchema(schema Schema) {
	e.st.Schema = schema
	rep := e.st.Reconcile()
	if rep.Changed() {
		e.metrics.RecordReconcileDropped(rep.Placements, rep.Forbidden, rep.Constraints)
	}
	e.metrics.RecordPlacementCount(e.st.Index.Len())
	e.logger.Info("room updated",
		"rows", schema.Rows(),
		"seats", room.SeatCount(schema),
		"dropped_placements", rep.Placements,
		"dropped_forbidden", rep.Forbidden,
		"dropped_constraints", rep.Constraints,
	)
}

// ============================================================================
// Selection and placements
// ============================================================================

// SelectStudent toggles the selection of a student.
//
// Returns:
//   - error: ErrUnknownStudent (no mutation)
func (e *Editor) SelectStudent(id int) error {
	return e.mutate(ChangeSelection, func() (bool, error) {
		return true, e.engine.SelectStudent(id)
	})
}

// ClearSelection drops every selection and any table draft.
func (e *Editor) ClearSelection() {
	_ = e.mutate(ChangeSelection, func() (bool, error) {
		e.engine.ClearSelection()
		e.nudger.Disarm()

		return true, nil
	})
}

// SeatClick applies one click on a seat.
//
// See the assignment state machine: with a student selected the click places,
// swaps, highlights or clears; without one it selects the occupant or toggles a
// seat-only selection. Forbidden targets are rejected without any change.
//
// Returns:
//   - ClickResult: Transition taken
//   - error: ErrInvalidSeat or ErrSeatForbidden (no mutation)
func (e *Editor) SeatClick(key SeatKey) (ClickResult, error) {
	e.mu.Lock()
	result, err := e.engine.SeatClick(key)
	var version uint64
	if err == nil {
		version = e.version.Add(1)
	}
	e.mu.Unlock()

	if err != nil {
		return result, err
	}

	switch result {
	case ClickPlaced, ClickSwapped:
		e.notify(ChangePlacement, version)
	default:
		e.notify(ChangeSelection, version)
	}

	return result, nil
}

// UnassignSelected unplaces the student on the selected seat and removes their pin.
//
// Returns:
//   - bool: true if a student was unplaced
//   - error: ErrNoSeatSelected
func (e *Editor) UnassignSelected() (bool, error) {
	var removed bool
	err := e.mutate(ChangePlacement, func() (bool, error) {
		var err error
		removed, err = e.engine.UnassignSelected()

		return removed, err
	})

	return removed, err
}

// ToggleSelectedSeatBan forbids the selected empty seat, or allows it again.
//
// Returns:
//   - bool: true if the seat is forbidden after the call
//   - error: ErrNoSeatSelected or ErrSeatOccupied (no mutation)
func (e *Editor) ToggleSelectedSeatBan() (bool, error) {
	var banned bool
	err := e.mutate(ChangeConstraints, func() (bool, error) {
		var err error
		banned, err = e.engine.ToggleSelectedSeatBan()

		return err == nil, err
	})

	return banned, err
}

// ResetPlanKeepRoom clears every placement, then restores the students pinned
// by exact_seat rules. The room, forbidden seats and rules are kept.
//
// Returns:
//   - int: Number of pinned students restored
func (e *Editor) ResetPlanKeepRoom() int {
	var restored int
	_ = e.mutate(ChangePlacement, func() (bool, error) {
		restored = e.engine.ResetPlanKeepRoom()
		return true, nil
	})

	return restored
}

// AutoFill places every unplaced student on a free seat with the configured
// FillStrategy. Placed students never move.
//
// Returns:
//   - int: Number of students placed
//   - error: Strategy error or ErrInvalidAssignment (no mutation)
func (e *Editor) AutoFill() (int, error) {
	var placed int
	err := e.mutate(ChangePlacement, func() (bool, error) {
		var err error
		placed, err = e.engine.AutoFill(e.fill)

		return placed > 0, err
	})

	return placed, err
}

// Placements returns a copy of the seat→student map.
func (e *Editor) Placements() map[SeatKey]int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.st.Index.Placements()
}

// SeatOf returns the seat of a student.
func (e *Editor) SeatOf(id int) (SeatKey, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.st.Index.SeatOf(id)
}

// Unplaced returns the ids of students without a seat, in roster order.
func (e *Editor) Unplaced() []int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.engine.Unplaced()
}

// ============================================================================
// Constraints
// ============================================================================

// AddConstraint creates a batch of rules of one kind for the selected students.
//
// Parameters:
//   - kind: Unary or binary kind
//   - ids: Selected student ids (one entry per student, or per unordered pair)
//   - param: Row bound K or distance D; ignored by other kinds
//
// Returns:
//   - string: Batch id
//   - error: ErrUnsupportedKind, ErrUnknownStudent or ErrNotEnoughStudents (no mutation)
func (e *Editor) AddConstraint(kind Kind, ids []int, param int) (string, error) {
	var batchID string
	err := e.mutate(ChangeConstraints, func() (bool, error) {
		var err error
		batchID, err = e.rules.Add(kind, ids, param)

		return true, err
	})

	return batchID, err
}

// EditBatch replaces a batch in place with a new kind, selection and parameter,
// keeping its batch id and its position in the list.
func (e *Editor) EditBatch(batchID string, kind Kind, ids []int, param int) error {
	return e.mutate(ChangeConstraints, func() (bool, error) {
		return true, e.rules.EditBatch(batchID, kind, ids, param)
	})
}

// DeleteBatch removes a batch and its marker.
//
// Returns:
//   - int: Number of entries removed
//   - error: ErrBatchNotFound
func (e *Editor) DeleteBatch(batchID string) (int, error) {
	var n int
	err := e.mutate(ChangeConstraints, func() (bool, error) {
		var err error
		n, err = e.rules.DeleteBatch(batchID)

		return true, err
	})

	return n, err
}

// DeleteConstraint removes one rule that is not part of a batch.
//
// Removing a forbid_seat rule frees the seat; removing an exact_seat rule
// unassigns the student if they still sit on the pinned seat.
//
// Returns:
//   - error: ErrBatchedConstraint or ErrConstraintNotFound
func (e *Editor) DeleteConstraint(c Constraint) error {
	return e.mutate(ChangeConstraints, func() (bool, error) {
		return true, e.rules.DeleteSingle(c)
	})
}

// BeginEditBatch opens a batch for editing and returns its marker.
func (e *Editor) BeginEditBatch(batchID string) (BatchMarker, error) {
	var m BatchMarker
	err := e.mutate(ChangeConstraints, func() (bool, error) {
		var err error
		m, err = e.rules.BeginEdit(batchID)

		return true, err
	})

	return m, err
}

// EndEditBatch leaves batch editing mode.
func (e *Editor) EndEditBatch() {
	_ = e.mutate(ChangeConstraints, func() (bool, error) {
		e.rules.EndEdit()
		return true, nil
	})
}

// Constraints returns the rule list in order.
func (e *Editor) Constraints() []Constraint {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.st.Constraints)
}

// Markers returns the batch markers in order.
func (e *Editor) Markers() []BatchMarker {
	e.mu.Lock()
	defer e.mu.Unlock()

	return cloneMarkers(e.st.Markers)
}

func cloneMarkers(in []BatchMarker) []BatchMarker {
	out := slices.Clone(in)
	for i := range out {
		out[i].StudentIDs = slices.Clone(out[i].StudentIDs)
	}

	return out
}

// ClampParam bounds a constraint parameter the way AddConstraint would.
func (e *Editor) ClampParam(kind Kind, param int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.rules.ClampParam(kind, param)
}

// ============================================================================
// Table layout
// ============================================================================

// SelectTable arms a table for keyboard repositioning.
//
// Returns:
//   - error: ErrSelectionActive or ErrUnknownTable (no mutation)
func (e *Editor) SelectTable(key TableKey) error {
	return e.mutate(ChangeLayout, func() (bool, error) {
		return true, e.nudger.Arm(key)
	})
}

// Nudge moves the armed table's draft one step.
//
// Returns:
//   - Draft: Updated draft; Invalid reports an overlap
//   - error: ErrNoTableArmed
func (e *Editor) Nudge(dir Direction) (Draft, error) {
	var d Draft
	err := e.mutate(ChangeLayout, func() (bool, error) {
		var err error
		d, err = e.nudger.Nudge(dir)

		return true, err
	})

	return d, err
}

// CommitNudge persists the draft when it overlaps no other table.
//
// Returns:
//   - bool: true if an offset was persisted
//   - error: ErrCollision (draft discarded, offsets unchanged)
func (e *Editor) CommitNudge() (bool, error) {
	e.mu.Lock()
	_, hadDraft := e.nudger.Draft()
	moved, err := e.nudger.Commit()
	var version uint64
	if hadDraft {
		version = e.version.Add(1)
	}
	e.mu.Unlock()

	if hadDraft {
		e.notify(ChangeLayout, version)
	}

	return moved, err
}

// CancelNudge discards the draft and keeps the table armed.
func (e *Editor) CancelNudge() {
	_ = e.mutate(ChangeLayout, func() (bool, error) {
		e.nudger.Cancel()
		return true, nil
	})
}

// DeselectTable discards the draft and unarms the table.
func (e *Editor) DeselectTable() {
	_ = e.mutate(ChangeLayout, func() (bool, error) {
		e.nudger.Disarm()
		return true, nil
	})
}

// ResetTablePositions drops every persisted offset.
func (e *Editor) ResetTablePositions() {
	_ = e.mutate(ChangeLayout, func() (bool, error) {
		e.nudger.Cancel()
		clear(e.st.Offsets)

		return true, nil
	})
}

// TableRects returns every table rectangle with persisted offsets applied.
func (e *Editor) TableRects() map[TableKey]Rect {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.nudger.Rects()
}

// ============================================================================
// Session settings
// ============================================================================

// SetOptions replaces the solver options.
func (e *Editor) SetOptions(opts SolveOptions) {
	_ = e.mutate(ChangeConstraints, func() (bool, error) {
		e.st.Options = opts
		return true, nil
	})
}

// Options returns the solver options.
func (e *Editor) Options() SolveOptions {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.st.Options
}

// SetClassName sets the class name used for exports.
func (e *Editor) SetClassName(name string) {
	_ = e.mutate(ChangeRoster, func() (bool, error) {
		e.st.ClassName = name
		return true, nil
	})
}

// SetNameView selects how names are printed on rendered plans.
//
// Returns:
//   - error: ErrInvalidConfig for an unknown view
func (e *Editor) SetNameView(view NameView) error {
	if !view.Valid() {
		return fmt.Errorf("%w: name view %q", ErrInvalidConfig, view)
	}

	return e.mutate(ChangeRoster, func() (bool, error) {
		e.st.NameView = view
		return true, nil
	})
}

// View is a consistent copy of the whole editor state.
type View struct {
	Version      uint64              `json:"version"`
	ClassName    string              `json:"class_name"`
	NameView     NameView            `json:"name_view"`
	Schema       Schema              `json:"schema"`
	Students     []Student           `json:"students"`
	Placements   map[SeatKey]int     `json:"placements"`
	Forbidden    []SeatKey           `json:"forbidden"`
	Constraints  []Constraint        `json:"constraints"`
	Markers      []BatchMarker       `json:"markers"`
	Selection    Selection           `json:"selection"`
	Offsets      map[TableKey]Offset `json:"table_offsets"`
	Rects        map[TableKey]Rect   `json:"table_rects"`
	Draft        *Draft              `json:"draft,omitempty"`
	EditingBatch string              `json:"editing_batch,omitempty"`
	Options      SolveOptions        `json:"options"`
	Solve        *SolveJob           `json:"solve,omitempty"`
	Unplaced     []int               `json:"unplaced"`
}

// View returns a copy of the current state for rendering.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.view()
}

// view copies the state. Caller holds e.mu.
func (e *Editor) view() View {
	v := View{
		Version:      e.version.Load(),
		ClassName:    e.st.ClassName,
		NameView:     e.st.NameView,
		Schema:       e.st.Schema.Clone(),
		Students:     e.st.Students(),
		Placements:   e.st.Index.Placements(),
		Forbidden:    e.st.ForbiddenList(),
		Constraints:  slices.Clone(e.st.Constraints),
		Markers:      cloneMarkers(e.st.Markers),
		Selection:    e.st.Selection.Clone(),
		Offsets:      maps.Clone(e.st.Offsets),
		Rects:        e.nudger.Rects(),
		EditingBatch: e.st.EditingBatch,
		Options:      e.st.Options,
		Unplaced:     e.engine.Unplaced(),
	}
	if d, ok := e.nudger.Draft(); ok {
		v.Draft = &d
	}
	if e.solver != nil {
		if job := e.solver.Current(); job != nil {
			info := job.Info()
			v.Solve = &info
		}
	}

	return v
}

// CheckInvariants verifies the placement bijection, the disjointness of
// placements and forbidden seats, and batch integrity.
func (e *Editor) CheckInvariants() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.st.CheckInvariants()
}
