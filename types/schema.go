package types

// Schema describes the room as an ordered sequence of rows.
//
// Each row is an ordered sequence of integers. A positive integer n is a table
// of n seats; a negative integer -n is a hole occupying the visual width of n
// seats but holding no seats. Zero is treated as an empty hole.
type Schema [][]int

// Clone returns a deep copy of the schema.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}

	out := make(Schema, len(s))
	for y, row := range s {
		out[y] = append([]int(nil), row...)
	}

	return out
}

// Rows returns the number of rows.
func (s Schema) Rows() int {
	return len(s)
}

// Capacity returns the seat count of table (x, y), or 0 when the coordinates
// are out of range or designate a hole.
func (s Schema) Capacity(x, y int) int {
	if y < 0 || y >= len(s) {
		return 0
	}
	row := s[y]
	if x < 0 || x >= len(row) {
		return 0
	}

	return max(row[x], 0)
}

// Equal reports whether two schemas have identical rows.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for y := range s {
		if len(s[y]) != len(o[y]) {
			return false
		}
		for x := range s[y] {
			if s[y][x] != o[y][x] {
				return false
			}
		}
	}

	return true
}
