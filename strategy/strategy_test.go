package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/seatplan/types"
)

func freeSeats(n int) []types.SeatKey {
	out := make([]types.SeatKey, n)
	for i := range out {
		out[i] = types.SeatKey{X: i / 2, Y: i / 4, S: i % 2}
	}

	return out
}

func requireDistinctFreeSeats(t *testing.T, free []types.SeatKey, got map[int]types.SeatKey) {
	t.Helper()

	allowed := make(map[types.SeatKey]struct{}, len(free))
	for _, s := range free {
		allowed[s] = struct{}{}
	}
	used := make(map[types.SeatKey]int)
	for id, s := range got {
		_, ok := allowed[s]
		require.True(t, ok, "student %d got non-free seat %s", id, s)
		prev, dup := used[s]
		require.False(t, dup, "seat %s given to %d and %d", s, prev, id)
		used[s] = id
	}
}

func TestSequential_Fill(t *testing.T) {
	t.Run("fills in canonical order", func(t *testing.T) {
		free := freeSeats(4)
		got, err := NewSequential().Fill(free, []int{10, 11, 12})

		require.NoError(t, err)
		require.Equal(t, map[int]types.SeatKey{10: free[0], 11: free[1], 12: free[2]}, got)
	})

	t.Run("leaves extra students out", func(t *testing.T) {
		got, err := NewSequential().Fill(freeSeats(2), []int{1, 2, 3})

		require.NoError(t, err)
		require.Len(t, got, 2)
		require.NotContains(t, got, 3)
	})

	t.Run("nothing to do", func(t *testing.T) {
		got, err := NewSequential().Fill(nil, nil)

		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("no free seat", func(t *testing.T) {
		_, err := NewSequential().Fill(nil, []int{1})

		require.ErrorIs(t, err, ErrNoFreeSeats)
	})
}

func TestScatter_Fill(t *testing.T) {
	t.Run("assigns distinct free seats", func(t *testing.T) {
		free := freeSeats(12)
		ids := []int{1, 2, 3, 4, 5, 6, 7, 8}

		got, err := NewScatter().Fill(free, ids)

		require.NoError(t, err)
		require.Len(t, got, len(ids))
		requireDistinctFreeSeats(t, free, got)
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		free := freeSeats(12)
		ids := []int{4, 8, 15, 16, 23, 42}

		a, err := NewScatter(WithHashSeed(9)).Fill(free, ids)
		require.NoError(t, err)
		b, err := NewScatter(WithHashSeed(9)).Fill(free, ids)
		require.NoError(t, err)

		require.Equal(t, a, b)
	})

	t.Run("more students than seats", func(t *testing.T) {
		free := freeSeats(3)

		got, err := NewScatter().Fill(free, []int{1, 2, 3, 4, 5})

		require.NoError(t, err)
		require.Len(t, got, 3)
		requireDistinctFreeSeats(t, free, got)
	})

	t.Run("no free seat", func(t *testing.T) {
		_, err := NewScatter().Fill(nil, []int{1})

		require.ErrorIs(t, err, ErrNoFreeSeats)
	})
}
