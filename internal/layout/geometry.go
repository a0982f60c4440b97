package layout

import (
	"github.com/arloliu/seatplan/types"
)

// Geometry holds the pixel metrics of the grid layout.
type Geometry struct {
	PadX      float64
	PadY      float64
	SeatW     float64
	SeatGap   float64
	TableGap  float64
	TableH    float64
	RowGap    float64
	BoardH    float64
	BoardGap  float64
	MinBoardW float64
}

// DefaultGeometry returns the metrics used by the editor and the exported layouts.
func DefaultGeometry() Geometry {
	return Geometry{
		PadX:      20,
		PadY:      16,
		SeatW:     90,
		SeatGap:   6,
		TableGap:  20,
		TableH:    70,
		RowGap:    38,
		BoardH:    16,
		BoardGap:  14,
		MinBoardW: 600,
	}
}

// TableWidth returns the width of a table, or of a hole, spanning n seats.
// A zero entry is drawn as a one-seat hole.
func (g Geometry) TableWidth(n int) float64 {
	if n < 0 {
		n = -n
	}
	n = max(n, 1)

	return float64(n)*g.SeatW + float64(n-1)*g.SeatGap
}

// RowWidth returns the width of a schema row including table gaps.
func (g Geometry) RowWidth(row []int) float64 {
	if len(row) == 0 {
		return 0
	}

	w := g.TableGap * float64(len(row)-1)
	for _, c := range row {
		w += g.TableWidth(c)
	}

	return w
}

// BoardWidth returns the width of the board, the widest row or MinBoardW.
func (g Geometry) BoardWidth(schema types.Schema) float64 {
	w := g.MinBoardW
	for _, row := range schema {
		w = max(w, g.RowWidth(row))
	}

	return w
}

// Board returns the rectangle of the board header.
func (g Geometry) Board(schema types.Schema) types.Rect {
	return types.Rect{X: g.PadX, Y: g.PadY, W: g.BoardWidth(schema), H: g.BoardH}
}

// RowTop returns the top coordinate of row y.
func (g Geometry) RowTop(y int) float64 {
	return g.PadY + g.BoardH + g.BoardGap + float64(y)*(g.TableH+g.RowGap)
}

// Canvas returns the size of the drawing area for the default grid.
func (g Geometry) Canvas(schema types.Schema) (float64, float64) {
	w := g.BoardWidth(schema) + 2*g.PadX
	if len(schema) == 0 {
		return w, g.PadY + g.BoardH + g.PadY
	}

	return w, g.RowTop(len(schema)-1) + g.TableH + g.PadY
}

// BaseRects returns the rectangle of every real table without offsets.
func (g Geometry) BaseRects(schema types.Schema) map[types.TableKey]types.Rect {
	out := make(map[types.TableKey]types.Rect)
	boardW := g.BoardWidth(schema)

	for y, row := range schema {
		x0 := g.PadX + (boardW-g.RowWidth(row))/2
		top := g.RowTop(y)

		for x, c := range row {
			w := g.TableWidth(c)
			if c > 0 {
				out[types.TableKey{X: x, Y: y}] = types.Rect{X: x0, Y: top, W: w, H: g.TableH}
			}
			x0 += w + g.TableGap
		}
	}

	return out
}

// Rects returns the rectangle of every real table with its persisted offset applied.
func (g Geometry) Rects(schema types.Schema, offsets map[types.TableKey]types.Offset) map[types.TableKey]types.Rect {
	rects := g.BaseRects(schema)
	for key, off := range offsets {
		if r, ok := rects[key]; ok {
			rects[key] = r.Translate(off)
		}
	}

	return rects
}

// SeatRect returns the rectangle of seat s inside a table rectangle.
func (g Geometry) SeatRect(table types.Rect, s int) types.Rect {
	return types.Rect{
		X: table.X + float64(s)*(g.SeatW+g.SeatGap),
		Y: table.Y,
		W: g.SeatW,
		H: table.H,
	}
}

// Bounds returns the smallest canvas holding the default grid and every given
// rectangle, so tables moved past the edge stay visible.
func (g Geometry) Bounds(schema types.Schema, rects map[types.TableKey]types.Rect) (float64, float64) {
	w, h := g.Canvas(schema)
	for _, r := range rects {
		w = max(w, r.X+r.W+g.PadX)
		h = max(h, r.Y+r.H+g.PadY)
	}

	return w, h
}
