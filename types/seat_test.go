package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeatKey_StringAndParse(t *testing.T) {
	k := SeatKey{X: 1, Y: 0, S: 2}
	require.Equal(t, "1,0,2", k.String())

	parsed, err := ParseSeatKey("1,0,2")
	require.NoError(t, err)
	require.Equal(t, k, parsed)

	parsed, err = ParseSeatKey(" 3 , 4 , 5 ")
	require.NoError(t, err)
	require.Equal(t, SeatKey{X: 3, Y: 4, S: 5}, parsed)

	for _, bad := range []string{"", "1,2", "1,2,3,4", "a,b,c", "1,,2"} {
		_, err := ParseSeatKey(bad)
		require.True(t, errors.Is(err, ErrMalformedKey), "input %q", bad)
	}
}

func TestSeatKey_JSONMapKey(t *testing.T) {
	placements := map[SeatKey]int{{X: 0, Y: 0, S: 1}: 7}

	data, err := json.Marshal(placements)
	require.NoError(t, err)
	require.JSONEq(t, `{"0,0,1": 7}`, string(data))

	var decoded map[SeatKey]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, placements, decoded)

	var forbidden []SeatKey
	require.NoError(t, json.Unmarshal([]byte(`["1,0,0","0,1,1"]`), &forbidden))
	require.Equal(t, []SeatKey{{X: 1, Y: 0, S: 0}, {X: 0, Y: 1, S: 1}}, forbidden)
}

func TestSeatKey_Compare(t *testing.T) {
	require.Equal(t, -1, SeatKey{X: 5, Y: 0, S: 0}.Compare(SeatKey{X: 0, Y: 1, S: 0}))
	require.Equal(t, -1, SeatKey{X: 0, Y: 1, S: 3}.Compare(SeatKey{X: 1, Y: 1, S: 0}))
	require.Equal(t, 1, SeatKey{X: 1, Y: 1, S: 1}.Compare(SeatKey{X: 1, Y: 1, S: 0}))
	require.Equal(t, 0, SeatKey{X: 1, Y: 1, S: 1}.Compare(SeatKey{X: 1, Y: 1, S: 1}))
}

func TestTableKey(t *testing.T) {
	k, err := ParseTableKey("2,1")
	require.NoError(t, err)
	require.Equal(t, TableKey{X: 2, Y: 1}, k)
	require.Equal(t, "2,1", k.String())
	require.Equal(t, SeatKey{X: 2, Y: 1, S: 0}, k.Seat(0))
	require.Equal(t, k, SeatKey{X: 2, Y: 1, S: 3}.Table())

	_, err = ParseTableKey("2,1,0")
	require.ErrorIs(t, err, ErrMalformedKey)
}

func TestRect_Overlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}

	require.True(t, a.Overlaps(Rect{X: 5, Y: 5, W: 10, H: 10}))
	require.True(t, a.Overlaps(Rect{X: 2, Y: 2, W: 2, H: 2}))
	require.False(t, a.Overlaps(Rect{X: 10, Y: 0, W: 10, H: 10}), "touching edges do not overlap")
	require.False(t, a.Overlaps(Rect{X: 0, Y: 10, W: 10, H: 10}))
	require.False(t, a.Overlaps(Rect{X: 20, Y: 20, W: 1, H: 1}))
}

func TestStudent_DisplayName(t *testing.T) {
	s := Student{ID: 1, First: "Alice", Last: "Martin"}
	require.Equal(t, "Alice", s.DisplayName(NameViewFirst))
	require.Equal(t, "Martin", s.DisplayName(NameViewLast))
	require.Equal(t, "Alice Martin", s.DisplayName(NameViewBoth))

	onlyName := Student{ID: 2, Name: "Bob"}
	require.Equal(t, "Bob", onlyName.DisplayName(NameViewLast))
}
