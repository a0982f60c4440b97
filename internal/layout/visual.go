package layout

import (
	"cmp"
	"maps"
	"slices"

	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/types"
)

type center struct {
	key  types.TableKey
	x, y float64
}

// VisualRows infers the on-screen row order of the tables.
//
// Table centers are sorted top to bottom (left to right on ties) and cut into
// consecutive groups sized by each schema row's real table count; rows without
// tables are skipped. Each group is then sorted left to right. Tables missing
// from rects are ignored.
//
// Returns:
//   - [][]types.TableKey: Tables per visual row, top row first
//   - map[types.TableKey]int: Visual row index of every table
func VisualRows(schema types.Schema, rects map[types.TableKey]types.Rect) ([][]types.TableKey, map[types.TableKey]int) {
	centers := make([]center, 0, len(rects))
	for _, key := range slices.SortedFunc(maps.Keys(rects), types.TableKey.Compare) {
		cx, cy := rects[key].Center()
		centers = append(centers, center{key: key, x: cx, y: cy})
	}
	slices.SortStableFunc(centers, func(a, b center) int {
		if c := cmp.Compare(a.y, b.y); c != 0 {
			return c
		}
		return cmp.Compare(a.x, b.x)
	})

	var out [][]types.TableKey
	byTable := make(map[types.TableKey]int, len(centers))

	next := 0
	for _, row := range schema {
		n := min(room.RealTableCount(row), len(centers)-next)
		if n <= 0 {
			continue
		}

		group := slices.Clone(centers[next : next+n])
		next += n
		slices.SortStableFunc(group, func(a, b center) int {
			if c := cmp.Compare(a.x, b.x); c != 0 {
				return c
			}
			return cmp.Compare(a.y, b.y)
		})

		keys := make([]types.TableKey, 0, n)
		for _, c := range group {
			keys = append(keys, c.key)
			byTable[c.key] = len(out)
		}
		out = append(out, keys)
	}

	return out, byTable
}
