package types

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// SeatKey identifies one seat: table index within its row (X), row index (Y)
// and seat index within the table (S).
//
// The canonical text form is "x,y,s". SeatKey implements encoding.TextMarshaler
// so it can be used directly as a JSON object key.
type SeatKey struct {
	X int
	Y int
	S int
}

// TableKey identifies one physical table independent of its seats.
//
// The canonical text form is "x,y".
type TableKey struct {
	X int
	Y int
}

// String returns the canonical "x,y,s" form.
func (k SeatKey) String() string {
	return strconv.Itoa(k.X) + "," + strconv.Itoa(k.Y) + "," + strconv.Itoa(k.S)
}

// Table returns the key of the table holding this seat.
func (k SeatKey) Table() TableKey {
	return TableKey{X: k.X, Y: k.Y}
}

// Compare orders seats by row, then table, then seat index.
//
// Returns:
//   - int: -1 if k < o, 0 if equal, +1 if k > o
func (k SeatKey) Compare(o SeatKey) int {
	if c := cmp.Compare(k.Y, o.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(k.X, o.X); c != 0 {
		return c
	}

	return cmp.Compare(k.S, o.S)
}

// MarshalText implements encoding.TextMarshaler.
func (k SeatKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SeatKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSeatKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed

	return nil
}

// ParseSeatKey parses the canonical "x,y,s" form.
//
// Parameters:
//   - s: Seat key text, surrounding spaces around each part are tolerated
//
// Returns:
//   - SeatKey: Parsed key
//   - error: ErrMalformedKey when the text is not three comma-separated integers
func ParseSeatKey(s string) (SeatKey, error) {
	parts, err := parseInts(s, 3)
	if err != nil {
		return SeatKey{}, err
	}

	return SeatKey{X: parts[0], Y: parts[1], S: parts[2]}, nil
}

// String returns the canonical "x,y" form.
func (k TableKey) String() string {
	return strconv.Itoa(k.X) + "," + strconv.Itoa(k.Y)
}

// Seat returns the key of seat s at this table.
func (k TableKey) Seat(s int) SeatKey {
	return SeatKey{X: k.X, Y: k.Y, S: s}
}

// Compare orders tables by row, then table index.
func (k TableKey) Compare(o TableKey) int {
	if c := cmp.Compare(k.Y, o.Y); c != 0 {
		return c
	}

	return cmp.Compare(k.X, o.X)
}

// MarshalText implements encoding.TextMarshaler.
func (k TableKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TableKey) UnmarshalText(text []byte) error {
	parsed, err := ParseTableKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed

	return nil
}

// ParseTableKey parses the canonical "x,y" form.
func ParseTableKey(s string) (TableKey, error) {
	parts, err := parseInts(s, 2)
	if err != nil {
		return TableKey{}, err
	}

	return TableKey{X: parts[0], Y: parts[1]}, nil
}

func parseInts(s string, n int) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}

	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedKey, s)
		}
		out[i] = v
	}

	return out, nil
}
