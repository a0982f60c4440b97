package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/seatplan/internal/logger"
	"github.com/arloliu/seatplan/internal/metrics"
	"github.com/arloliu/seatplan/internal/store"
	"github.com/arloliu/seatplan/types"
)

func newNudger(t *testing.T, schema types.Schema) (*Nudger, *store.Store) {
	t.Helper()

	st := store.New()
	st.Schema = schema

	return NewNudger(st, DefaultGeometry(), 10, logger.NewTest(t), metrics.NewNop()), st
}

func TestNudger_CommitRefusedOnOverlap(t *testing.T) {
	n, st := newNudger(t, types.Schema{{2, 2}})
	left := types.TableKey{X: 0, Y: 0}

	require.NoError(t, n.Arm(left))
	for range 3 {
		_, err := n.Nudge(types.DirRight)
		require.NoError(t, err)
	}
	draft, ok := n.Draft()
	require.True(t, ok)
	require.True(t, draft.Invalid, "30px right crosses the 20px gap")

	ok, err := n.Commit()
	require.ErrorIs(t, err, types.ErrCollision)
	require.False(t, ok)
	require.Empty(t, st.Offsets)
	_, ok = n.Draft()
	require.False(t, ok, "refused draft is discarded")

	// touching edges are allowed
	for range 2 {
		_, err = n.Nudge(types.DirRight)
		require.NoError(t, err)
	}
	draft, _ = n.Draft()
	require.False(t, draft.Invalid)

	ok, err = n.Commit()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Offset{DX: 20}, st.Offsets[left])
}

func TestNudger_TransientOverlapThenValid(t *testing.T) {
	n, st := newNudger(t, types.Schema{{2, 2}})
	left := types.TableKey{X: 0, Y: 0}

	require.NoError(t, n.Arm(left))
	for range 4 {
		_, err := n.Nudge(types.DirRight)
		require.NoError(t, err)
	}
	for range 12 {
		_, err := n.Nudge(types.DirDown)
		require.NoError(t, err)
	}
	draft, _ := n.Draft()
	require.False(t, draft.Invalid, "moved below the other table")

	_, err := n.Commit()
	require.NoError(t, err)
	require.Equal(t, types.Offset{DX: 40, DY: 120}, st.Offsets[left])
}

func TestNudger_ArmRules(t *testing.T) {
	n, st := newNudger(t, types.Schema{{2, 2}})

	require.ErrorIs(t, n.Arm(types.TableKey{X: 5}), types.ErrUnknownTable)

	id := 1
	st.Selection = types.Selection{Student: &id}
	require.ErrorIs(t, n.Arm(types.TableKey{}), types.ErrSelectionActive)

	st.Selection = types.Selection{}
	_, err := n.Nudge(types.DirUp)
	require.ErrorIs(t, err, types.ErrNoTableArmed)

	require.NoError(t, n.Arm(types.TableKey{}))
	_, err = n.Nudge(types.DirUp)
	require.NoError(t, err)

	require.NoError(t, n.Arm(types.TableKey{}))
	_, ok := n.Draft()
	require.True(t, ok, "re-arming the same table keeps the draft")

	require.NoError(t, n.Arm(types.TableKey{X: 1}))
	_, ok = n.Draft()
	require.False(t, ok, "arming another table discards the draft")

	_, err = n.Nudge(types.DirLeft)
	require.NoError(t, err)
	st.Selection = types.Selection{}
	_, ok = n.Draft()
	require.False(t, ok, "leaving the selection discards the draft")
}

func TestNudger_CancelAndDisarm(t *testing.T) {
	n, st := newNudger(t, types.Schema{{2}})
	key := types.TableKey{}

	require.NoError(t, n.Arm(key))
	_, err := n.Nudge(types.DirDown)
	require.NoError(t, err)
	n.Cancel()

	ok, err := n.Commit()
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, st.Offsets)

	_, armed := n.Armed()
	require.True(t, armed)

	n.Disarm()
	_, armed = n.Armed()
	require.False(t, armed)
}

func TestNudger_CommitsNeverOverlap(t *testing.T) {
	n, st := newNudger(t, types.Schema{{2, 1, 2}, {3, 3}})
	tables := []types.TableKey{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	dirs := []types.Direction{types.DirRight, types.DirDown, types.DirLeft, types.DirUp, types.DirDown}

	for round := range 60 {
		require.NoError(t, n.Arm(tables[round%len(tables)]))
		for i := range round%9 + 1 {
			_, err := n.Nudge(dirs[(round+i)%len(dirs)])
			require.NoError(t, err)
		}
		_, _ = n.Commit()

		rects := n.Rects()
		for a, ra := range rects {
			for b, rb := range rects {
				if a != b {
					require.False(t, ra.Overlaps(rb), "tables %s and %s overlap", a, b)
				}
			}
		}
	}
	require.NotEmpty(t, st.Offsets)
}
