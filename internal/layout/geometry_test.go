package layout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/seatplan/types"
)

func TestBaseRects_CentersRowsUnderBoard(t *testing.T) {
	g := DefaultGeometry()
	rects := g.BaseRects(types.Schema{{2, 2}, {3}})

	require.Len(t, rects, 3)
	require.Equal(t, types.Rect{X: 124, Y: 46, W: 186, H: 70}, rects[types.TableKey{X: 0, Y: 0}])
	require.Equal(t, types.Rect{X: 330, Y: 46, W: 186, H: 70}, rects[types.TableKey{X: 1, Y: 0}])

	// 3*90 + 2*6 = 282 wide, centered: 20 + (600-282)/2
	require.Equal(t, types.Rect{X: 179, Y: 154, W: 282, H: 70}, rects[types.TableKey{X: 0, Y: 1}])
}

func TestBaseRects_HolesReserveWidth(t *testing.T) {
	g := DefaultGeometry()
	withHole := g.BaseRects(types.Schema{{2, -2, 2}})
	require.Len(t, withHole, 2)

	left := withHole[types.TableKey{X: 0, Y: 0}]
	right := withHole[types.TableKey{X: 2, Y: 0}]
	require.InDelta(t, 186+20+186+20, right.X-left.X, 1e-9)
}

func TestBoardWidth_GrowsWithWideRows(t *testing.T) {
	g := DefaultGeometry()
	require.InDelta(t, 600, g.BoardWidth(types.Schema{{2}}), 1e-9)

	wide := types.Schema{{4, 4, 4}}
	require.InDelta(t, 3*(4*90+3*6)+2*20, g.BoardWidth(wide), 1e-9)

	w, h := g.Canvas(wide)
	require.InDelta(t, g.BoardWidth(wide)+40, w, 1e-9)
	require.InDelta(t, 46+70+16, h, 1e-9)
}

func TestRects_AppliesOffsets(t *testing.T) {
	g := DefaultGeometry()
	key := types.TableKey{X: 1, Y: 0}
	rects := g.Rects(types.Schema{{2, 2}}, map[types.TableKey]types.Offset{
		key:          {DX: 5, DY: -10},
		{X: 9, Y: 9}: {DX: 1},
	})

	require.Len(t, rects, 2)
	require.Equal(t, types.Rect{X: 335, Y: 36, W: 186, H: 70}, rects[key])
}

func TestVisualRows(t *testing.T) {
	g := DefaultGeometry()
	schema := types.Schema{{2, 2}, {2, 2}}

	rows, byTable := VisualRows(schema, g.BaseRects(schema))
	require.Equal(t, [][]types.TableKey{
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
		{{X: 0, Y: 1}, {X: 1, Y: 1}},
	}, rows)
	require.Equal(t, 1, byTable[types.TableKey{X: 1, Y: 1}])

	// swap the two rows on screen and mirror the bottom row left to right
	step := g.TableH + g.RowGap
	offsets := map[types.TableKey]types.Offset{
		{X: 0, Y: 0}: {DY: step},
		{X: 1, Y: 0}: {DY: step},
		{X: 0, Y: 1}: {DX: 206, DY: -step},
		{X: 1, Y: 1}: {DX: -206, DY: -step},
	}
	rows, byTable = VisualRows(schema, g.Rects(schema, offsets))
	require.Equal(t, [][]types.TableKey{
		{{X: 1, Y: 1}, {X: 0, Y: 1}},
		{{X: 0, Y: 0}, {X: 1, Y: 0}},
	}, rows)
	require.Equal(t, 0, byTable[types.TableKey{X: 0, Y: 1}])
	require.Equal(t, 1, byTable[types.TableKey{X: 0, Y: 0}])
}

func TestVisualRows_SkipsRowsWithoutTables(t *testing.T) {
	g := DefaultGeometry()
	schema := types.Schema{{2, 2}, {-3}, {4}}

	rows, byTable := VisualRows(schema, g.BaseRects(schema))
	require.Len(t, rows, 2)
	require.Equal(t, []types.TableKey{{X: 0, Y: 2}}, rows[1])
	require.Equal(t, 1, byTable[types.TableKey{X: 0, Y: 2}])
}
