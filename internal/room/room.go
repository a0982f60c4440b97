package room

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/seatplan/types"
)

// IsValidSeat reports whether key designates an existing seat: the row exists,
// the table exists in that row with a positive capacity, and the seat index is
// below that capacity.
func IsValidSeat(schema types.Schema, key types.SeatKey) bool {
	if key.S < 0 {
		return false
	}

	return key.S < schema.Capacity(key.X, key.Y)
}

// IsValidTable reports whether key designates a real (non-hole) table.
func IsValidTable(schema types.Schema, key types.TableKey) bool {
	return schema.Capacity(key.X, key.Y) > 0
}

// MaxManhattan returns (rowCount-1) + (maxRowLength-1), the largest table
// distance a far_apart rule can ask for. Returns 0 for an empty schema.
func MaxManhattan(schema types.Schema) int {
	if len(schema) == 0 {
		return 0
	}

	maxLen := 0
	for _, row := range schema {
		maxLen = max(maxLen, len(row))
	}

	return max(0, len(schema)-1+maxLen-1)
}

// Usable reports whether at least one row holds a table with a positive capacity.
func Usable(schema types.Schema) bool {
	for _, row := range schema {
		if RealTableCount(row) > 0 {
			return true
		}
	}

	return false
}

// RealTableCount returns the number of non-hole tables in a row.
func RealTableCount(row []int) int {
	n := 0
	for _, c := range row {
		if c > 0 {
			n++
		}
	}

	return n
}

// Tables returns every real table in row-major order.
func Tables(schema types.Schema) []types.TableKey {
	var out []types.TableKey
	for y, row := range schema {
		for x, c := range row {
			if c > 0 {
				out = append(out, types.TableKey{X: x, Y: y})
			}
		}
	}

	return out
}

// Seats returns every valid seat in canonical order (row, table, seat).
func Seats(schema types.Schema) []types.SeatKey {
	var out []types.SeatKey
	for y, row := range schema {
		for x, c := range row {
			for s := 0; s < c; s++ {
				out = append(out, types.SeatKey{X: x, Y: y, S: s})
			}
		}
	}

	return out
}

// SeatCount returns the total number of seats in the room.
func SeatCount(schema types.Schema) int {
	n := 0
	for _, row := range schema {
		for _, c := range row {
			n += max(c, 0)
		}
	}

	return n
}

// ValidateRow checks capacity input for one row.
//
// A row must hold at least one entry and no zero capacity. Negative entries are holes.
//
// Returns:
//   - error: ErrInvalidSchema describing the first offending entry
func ValidateRow(caps []int) error {
	if len(caps) == 0 {
		return fmt.Errorf("%w: empty row", types.ErrInvalidSchema)
	}
	for i, c := range caps {
		if c == 0 {
			return fmt.Errorf("%w: zero capacity at position %d", types.ErrInvalidSchema, i)
		}
	}

	return nil
}

// Validate checks every row of the schema with ValidateRow.
func Validate(schema types.Schema) error {
	for y, row := range schema {
		if err := ValidateRow(row); err != nil {
			return fmt.Errorf("row %d: %w", y, err)
		}
	}

	return nil
}

// Uniform builds a schema of rows identical rows with the given capacities.
func Uniform(rows int, caps []int) (types.Schema, error) {
	if rows < 0 {
		return nil, fmt.Errorf("%w: negative row count", types.ErrInvalidSchema)
	}
	if err := ValidateRow(caps); err != nil {
		return nil, err
	}

	out := make(types.Schema, rows)
	for y := range out {
		out[y] = slices.Clone(caps)
	}

	return out, nil
}

// ConfigCode returns a short code describing the room, "7r232" for seven
// identical rows [2,3,2], or "4rmix" when rows differ. An empty schema is "0r0".
func ConfigCode(schema types.Schema) string {
	if len(schema) == 0 {
		return "0r0"
	}

	first := schema[0]
	for _, row := range schema[1:] {
		if !slices.Equal(row, first) {
			return strconv.Itoa(len(schema)) + "rmix"
		}
	}

	var b strings.Builder
	for _, c := range first {
		b.WriteString(strconv.Itoa(c))
	}
	code := b.String()
	if code == "" {
		code = "0"
	}

	return strconv.Itoa(len(schema)) + "r" + code
}
