package render

import (
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/arloliu/seatplan/internal/layout"
	"github.com/arloliu/seatplan/types"
)

// Plan is everything needed to draw one seating plan.
type Plan struct {
	Title      string
	Schema     types.Schema
	Rects      map[types.TableKey]types.Rect
	Placements map[types.SeatKey]int
	Forbidden  map[types.SeatKey]struct{}

	// Names maps student ids to the label drawn on their seat.
	Names map[int]string
}

const (
	boardLabel = "BOARD"
	fontSize   = 12
)

// SVG renders the plan as a standalone SVG document.
//
// Parameters:
//   - p: Plan to draw
//   - geo: Layout metrics the rectangles were computed with
//   - mirrored: Draw the teacher's view (turned half a turn)
//
// Returns:
//   - string: SVG markup
func SVG(p Plan, geo layout.Geometry, mirrored bool) string {
	w, h := geo.Bounds(p.Schema, p.Rects)
	if p.Title != "" {
		h += geo.PadY + fontSize
	}

	flip := func(r types.Rect) types.Rect {
		if !mirrored {
			return r
		}

		return types.Rect{X: w - r.X - r.W, Y: h - r.Y - r.H, W: r.W, H: r.H}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(w), num(h), num(w), num(h))
	b.WriteString("\n")
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%s" height="%s" fill="#ffffff"/>`+"\n", num(w), num(h))

	board := flip(geo.Board(p.Schema))
	fmt.Fprintf(&b, `<rect class="board" x="%s" y="%s" width="%s" height="%s" fill="#2f4f4f"/>`+"\n",
		num(board.X), num(board.Y), num(board.W), num(board.H))
	cx, cy := board.Center()
	text(&b, cx, cy, boardLabel, "#ffffff")

	for _, key := range slices.SortedFunc(maps.Keys(p.Rects), types.TableKey.Compare) {
		table := p.Rects[key]
		fmt.Fprintf(&b, `<g class="table" data-table="%s">`+"\n", key)

		capacity := p.Schema.Capacity(key.X, key.Y)
		for s := range capacity {
			seat := key.Seat(s)
			r := flip(geo.SeatRect(table, s))
			fill := "#f5f5f5"
			if _, banned := p.Forbidden[seat]; banned {
				fill = "#d9d9d9"
			}

			fmt.Fprintf(&b, `<rect class="seat" data-seat="%s" x="%s" y="%s" width="%s" height="%s" rx="6" fill="%s" stroke="#555555"/>`+"\n",
				seat, num(r.X), num(r.Y), num(r.W), num(r.H), fill)

			sx, sy := r.Center()
			switch id, ok := p.Placements[seat]; {
			case ok:
				text(&b, sx, sy, p.Names[id], "#000000")
			case fill != "#f5f5f5":
				fmt.Fprintf(&b, `<path d="M%s %sL%s %sM%s %sL%s %s" stroke="#999999"/>`+"\n",
					num(r.X), num(r.Y), num(r.X+r.W), num(r.Y+r.H),
					num(r.X+r.W), num(r.Y), num(r.X), num(r.Y+r.H))
			}
		}
		b.WriteString("</g>\n")
	}

	if p.Title != "" {
		text(&b, w/2, h-geo.PadY/2, p.Title, "#000000")
	}

	b.WriteString("</svg>\n")

	return b.String()
}

func text(b *strings.Builder, x, y float64, s, color string) {
	fmt.Fprintf(b, `<text x="%s" y="%s" font-size="%d" text-anchor="middle" dominant-baseline="middle" fill="%s">`,
		num(x), num(y), fontSize, color)
	_ = xml.EscapeText(b, []byte(s))
	b.WriteString("</text>\n")
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
