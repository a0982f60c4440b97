package seatplan

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/seatplan/internal/logger"
	"github.com/arloliu/seatplan/source"
	"github.com/arloliu/seatplan/types"
)

const (
	alice = 1
	bruno = 2
	chloe = 3
)

func classRoster() []Student {
	return []Student{
		{ID: alice, First: "Alice", Last: "Martin", Gender: types.GenderFemale},
		{ID: bruno, First: "Bruno", Last: "Petit", Gender: types.GenderMale},
		{ID: chloe, First: "Chloe", Last: "Durand", Gender: types.GenderFemale},
	}
}

func seat(x, y, s int) SeatKey {
	return SeatKey{X: x, Y: y, S: s}
}

func newTestEditor(t *testing.T, opts ...Option) *Editor {
	t.Helper()

	cfg := TestConfig()
	ed, err := NewEditor(&cfg, append([]Option{WithLogger(logger.NewTest(t))}, opts...)...)
	require.NoError(t, err)

	return ed
}

// place selects a student and clicks a seat.
func place(t *testing.T, ed *Editor, id int, key SeatKey) ClickResult {
	t.Helper()

	require.NoError(t, ed.SelectStudent(id))
	res, err := ed.SeatClick(key)
	require.NoError(t, err)

	return res
}

func TestNewEditor(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		ed, err := NewEditor(nil)
		require.NoError(t, err)
		require.Equal(t, DefaultConfig(), ed.Config())
		require.Equal(t, NameViewBoth, ed.View().NameView)
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Solve.PollMultiplier = 0.5
		_, err := NewEditor(&cfg)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("backends are optional", func(t *testing.T) {
		ed := newTestEditor(t)
		require.ErrorIs(t, ed.CanSolve(), ErrSolverBackendRequired)
		_, err := ed.StartSolve(context.Background())
		require.ErrorIs(t, err, ErrSolverBackendRequired)
		_, err = ed.Export(context.Background())
		require.ErrorIs(t, err, ErrExportBackendRequired)
		require.ErrorIs(t, ed.LoadRoster(context.Background()), ErrRosterSourceRequired)
		require.False(t, ed.CancelSolve())
	})
}

func TestEditor_LoadRoster(t *testing.T) {
	src := source.NewStatic(classRoster())
	ed := newTestEditor(t, WithRosterSource(src))

	require.NoError(t, ed.LoadRoster(context.Background()))
	require.Len(t, ed.Students(), 3)

	src.Update([]Student{{ID: 1, First: "A"}, {ID: 1, First: "B"}})
	require.ErrorIs(t, ed.LoadRoster(context.Background()), ErrDuplicateStudent)
	require.Len(t, ed.Students(), 3, "rejected roster leaves the previous one")
}

// Scenario: the selected student has no seat and clicks an occupied seat.
func TestEditor_SwapFromUnplaced(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	require.Equal(t, ClickPlaced, place(t, ed, alice, seat(0, 0, 0)))
	require.Equal(t, ClickPlaced, place(t, ed, bruno, seat(0, 0, 1)))
	require.Equal(t, ClickSwapped, place(t, ed, chloe, seat(0, 0, 0)))

	placements := ed.Placements()
	require.Equal(t, chloe, placements[seat(0, 0, 0)])
	require.Equal(t, bruno, placements[seat(0, 0, 1)])
	_, placed := ed.SeatOf(alice)
	require.False(t, placed)
	require.Equal(t, []int{alice}, ed.Unplaced())

	for _, c := range ed.Constraints() {
		require.False(t, c.Kind == KindExactSeat && c.A == alice, "displaced student loses the pin")
	}
	require.True(t, ed.View().Selection.Empty())
	require.NoError(t, ed.CheckInvariants())
}

// Scenario: banning an empty seat twice restores the original state.
func TestEditor_ToggleSeatBan(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	res, err := ed.SeatClick(seat(1, 0, 0))
	require.NoError(t, err)
	require.Equal(t, ClickSeatSelected, res)

	banned, err := ed.ToggleSelectedSeatBan()
	require.NoError(t, err)
	require.True(t, banned)
	v := ed.View()
	require.Equal(t, []SeatKey{seat(1, 0, 0)}, v.Forbidden)
	require.Equal(t, []Constraint{{Kind: KindForbidSeat, Seat: seat(1, 0, 0), Human: v.Constraints[0].Human}}, v.Constraints)

	banned, err = ed.ToggleSelectedSeatBan()
	require.NoError(t, err)
	require.False(t, banned)
	v = ed.View()
	require.Empty(t, v.Forbidden)
	require.Empty(t, v.Constraints)

	// a forbidden seat refuses students
	_, err = ed.ToggleSelectedSeatBan()
	require.NoError(t, err)
	require.NoError(t, ed.SelectStudent(alice))
	res, err = ed.SeatClick(seat(1, 0, 0))
	require.ErrorIs(t, err, ErrSeatForbidden)
	require.Equal(t, ClickRejected, res)
	require.Empty(t, ed.Placements())
}

// Scenario: a batch of same_table rules for three students.
func TestEditor_ConstraintBatch(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	batchID, err := ed.AddConstraint(KindSameTable, []int{alice, bruno, chloe}, 0)
	require.NoError(t, err)
	require.Len(t, ed.Constraints(), 3)

	markers := ed.Markers()
	require.Len(t, markers, 1)
	require.Equal(t, batchID, markers[0].BatchID)
	require.Equal(t, 3, markers[0].Count)

	pairs := [][2]int{}
	for _, c := range ed.Constraints() {
		require.Equal(t, batchID, c.BatchID)
		pairs = append(pairs, [2]int{c.A, c.B})
	}
	require.ElementsMatch(t, [][2]int{{alice, bruno}, {alice, chloe}, {bruno, chloe}}, pairs)

	n, err := ed.DeleteBatch(batchID)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Empty(t, ed.Constraints())
	require.Empty(t, ed.Markers())

	_, err = ed.AddConstraint(KindFarApart, []int{alice}, 3)
	require.ErrorIs(t, err, ErrNotEnoughStudents)
	_, err = ed.AddConstraint(KindFrontRows, []int{42}, 1)
	require.ErrorIs(t, err, ErrUnknownStudent)
	require.Empty(t, ed.Constraints())
	require.NoError(t, ed.CheckInvariants())
}

func TestEditor_EditBatch(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}, {2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	batchID, err := ed.AddConstraint(KindFrontRows, []int{alice, bruno}, 1)
	require.NoError(t, err)

	marker, err := ed.BeginEditBatch(batchID)
	require.NoError(t, err)
	require.Equal(t, KindFrontRows, marker.Kind)
	require.Equal(t, batchID, ed.View().EditingBatch)

	require.NoError(t, ed.EditBatch(batchID, KindBackRows, []int{alice, bruno, chloe}, 2))
	markers := ed.Markers()
	require.Len(t, markers, 1)
	require.Equal(t, 3, markers[0].Count)
	require.Equal(t, KindBackRows, markers[0].Kind)

	ed.EndEditBatch()
	require.Empty(t, ed.View().EditingBatch)
	require.NoError(t, ed.CheckInvariants())
}

// Scenario: shrinking the room drops everything bound to the vanished row.
func TestEditor_SchemaShrinkReconciles(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}, {2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	place(t, ed, alice, seat(0, 1, 0))
	place(t, ed, bruno, seat(0, 0, 0))
	_, err := ed.SeatClick(seat(1, 1, 1))
	require.NoError(t, err)
	_, err = ed.ToggleSelectedSeatBan()
	require.NoError(t, err)
	ed.ClearSelection()

	require.NoError(t, ed.SetSchema(Schema{{2, 2}}))

	_, placed := ed.SeatOf(alice)
	require.False(t, placed)
	key, placed := ed.SeatOf(bruno)
	require.True(t, placed)
	require.Equal(t, seat(0, 0, 0), key)

	v := ed.View()
	require.Empty(t, v.Forbidden)
	for _, c := range v.Constraints {
		require.True(t, c.Seat.Y == 0, "rule on a vanished row survived: %+v", c)
	}
	require.Len(t, v.Constraints, 1, "only bruno's pin remains")
	require.NoError(t, ed.CheckInvariants())
}

func TestEditor_SchemaEditing(t *testing.T) {
	ed := newTestEditor(t)

	require.NoError(t, ed.BuildUniform(2, []int{2, -1, 3}))
	require.Equal(t, Schema{{2, -1, 3}, {2, -1, 3}}, ed.Schema())

	require.NoError(t, ed.AddRow([]int{4}))
	require.Equal(t, 3, ed.Schema().Rows())
	require.ErrorIs(t, ed.AddRow([]int{}), ErrInvalidSchema)
	require.ErrorIs(t, ed.AddRow([]int{2, 0}), ErrInvalidSchema)
	require.ErrorIs(t, ed.SetSchema(Schema{{1}, {}}), ErrInvalidSchema)

	require.NoError(t, ed.SetRoster(classRoster()))
	place(t, ed, alice, seat(0, 2, 3))

	require.NoError(t, ed.DeleteRow(0))
	require.Equal(t, Schema{{2, -1, 3}, {4}}, ed.Schema())
	_, placed := ed.SeatOf(alice)
	require.False(t, placed, "row 2 no longer exists after the shift")

	require.ErrorIs(t, ed.DeleteRow(5), ErrInvalidSchema)
	require.ErrorIs(t, ed.DeleteRow(-1), ErrInvalidSchema)

	ed.ClearSchema()
	require.Empty(t, ed.Schema())
	require.ErrorIs(t, ed.CanSolve(), ErrSolverBackendRequired)
}

func TestEditor_UnassignAndReset(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	place(t, ed, alice, seat(0, 0, 0))
	place(t, ed, bruno, seat(1, 0, 1))

	_, err := ed.UnassignSelected()
	require.ErrorIs(t, err, ErrNoSeatSelected)

	res, err := ed.SeatClick(seat(1, 0, 1))
	require.NoError(t, err)
	require.Equal(t, ClickOccupantSelected, res)
	removed, err := ed.UnassignSelected()
	require.NoError(t, err)
	require.True(t, removed)
	_, placed := ed.SeatOf(bruno)
	require.False(t, placed)

	place(t, ed, chloe, seat(1, 0, 0))
	require.Equal(t, 2, ed.ResetPlanKeepRoom(), "alice and chloe are pinned")
	require.Len(t, ed.Placements(), 2)
	require.NoError(t, ed.CheckInvariants())
}

func TestEditor_AutoFill(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	place(t, ed, bruno, seat(0, 0, 0))
	_, err := ed.SeatClick(seat(0, 0, 1))
	require.NoError(t, err)
	_, err = ed.ToggleSelectedSeatBan()
	require.NoError(t, err)
	ed.ClearSelection()

	placed, err := ed.AutoFill()
	require.NoError(t, err)
	require.Equal(t, 2, placed)
	require.Empty(t, ed.Unplaced())

	key, _ := ed.SeatOf(bruno)
	require.Equal(t, seat(0, 0, 0), key, "placed students never move")
	_, onForbidden := ed.Placements()[seat(0, 0, 1)]
	require.False(t, onForbidden)
	require.NoError(t, ed.CheckInvariants())

	placed, err = ed.AutoFill()
	require.NoError(t, err)
	require.Zero(t, placed)
}

func TestEditor_TableNudge(t *testing.T) {
	ed := newTestEditor(t)
	require.NoError(t, ed.SetSchema(Schema{{2, 2}}))
	require.NoError(t, ed.SetRoster(classRoster()))

	require.NoError(t, ed.SelectStudent(alice))
	require.ErrorIs(t, ed.SelectTable(TableKey{X: 0, Y: 0}), ErrSelectionActive)
	ed.ClearSelection()

	_, err := ed.Nudge(DirDown)
	require.ErrorIs(t, err, ErrNoTableArmed)
	require.ErrorIs(t, ed.SelectTable(TableKey{X: 4, Y: 0}), ErrUnknownTable)

	table := TableKey{X: 0, Y: 0}
	before := ed.TableRects()[table]
	require.NoError(t, ed.SelectTable(table))
	d, err := ed.Nudge(DirDown)
	require.NoError(t, err)
	require.False(t, d.Invalid)
	require.NotNil(t, ed.View().Draft)

	moved, err := ed.CommitNudge()
	require.NoError(t, err)
	require.True(t, moved)
	after := ed.TableRects()[table]
	require.Equal(t, before.Y+ed.Config().Layout.NudgeStep, after.Y)

	// push into the neighbour until the draft overlaps
	var last Draft
	for range 20 {
		last, err = ed.Nudge(DirRight)
		require.NoError(t, err)
	}
	require.True(t, last.Invalid)
	_, err = ed.CommitNudge()
	require.ErrorIs(t, err, ErrCollision)
	require.Equal(t, after, ed.TableRects()[table])

	ed.ResetTablePositions()
	require.Equal(t, before, ed.TableRects()[table])
	ed.DeselectTable()
	require.True(t, ed.View().Selection.Empty())
}

func TestEditor_Subscribe(t *testing.T) {
	ed := newTestEditor(t)
	changes, unsubscribe := ed.Subscribe()

	require.NoError(t, ed.SetRoster(classRoster()))
	require.NoError(t, ed.SetSchema(Schema{{2}}))

	c := <-changes
	require.Equal(t, ChangeRoster, c.Kind)
	require.Equal(t, uint64(1), c.Version)
	c = <-changes
	require.Equal(t, ChangeSchema, c.Kind)
	require.Equal(t, uint64(2), c.Version)

	// rejected operations publish nothing
	require.ErrorIs(t, ed.SelectStudent(99), ErrUnknownStudent)
	require.Equal(t, uint64(2), ed.Version())

	unsubscribe()
	_, open := <-changes
	require.False(t, open)
	unsubscribe()
}

func TestEditor_SlowSubscriberDoesNotBlock(t *testing.T) {
	ed := newTestEditor(t)
	_, unsubscribe := ed.Subscribe()
	defer unsubscribe()

	require.NoError(t, ed.SetSchema(Schema{{2}}))
	for range subscriberBuffer * 2 {
		ed.ClearSelection()
	}
	require.Equal(t, uint64(subscriberBuffer*2+1), ed.Version())
}

func TestEditor_StateChangedHook(t *testing.T) {
	var calls atomic.Int32
	hooks := &Hooks{
		OnStateChanged: func(_ context.Context, kind ChangeKind) error {
			if kind == ChangeSchema {
				calls.Add(1)
			}
			return nil
		},
	}
	ed := newTestEditor(t, WithHooks(hooks))

	require.NoError(t, ed.BuildUniform(3, []int{2}))
	require.Eventually(t, func() bool {
		return calls.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestEditor_Settings(t *testing.T) {
	ed := newTestEditor(t)

	require.NoError(t, ed.SetNameView(NameViewFirst))
	require.ErrorIs(t, ed.SetNameView("nick"), ErrInvalidConfig)
	require.Equal(t, NameViewFirst, ed.View().NameView)

	ed.SetClassName("5B")
	require.Equal(t, "5B", ed.View().ClassName)

	opts := ed.Options()
	require.Equal(t, "asp", opts.Solver)
	opts.PreferMixage = true
	ed.SetOptions(opts)
	require.True(t, ed.Options().PreferMixage)

	require.Equal(t, 2, ed.ClampParam(KindFarApart, 0))
	require.Equal(t, 1, ed.ClampParam(KindFrontRows, -3))
}
