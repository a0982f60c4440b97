package strategy

import (
	"github.com/arloliu/seatplan/types"
)

// Sequential fills free seats in canonical order.
type Sequential struct{}

var _ types.FillStrategy = (*Sequential)(nil)

// NewSequential creates a new sequential fill strategy.
//
// Example:
//
//	placed, err := ed.AutoFill(strategy.NewSequential())
func NewSequential() *Sequential {
	return &Sequential{}
}

// Fill pairs the i-th unplaced student with the i-th free seat. Students beyond
// the number of free seats are left out.
//
// Returns:
//   - map[int]types.SeatKey: Seat per placed student
//   - error: ErrNoFreeSeats when students are waiting and no seat is free
func (sq *Sequential) Fill(free []types.SeatKey, unplaced []int) (map[int]types.SeatKey, error) {
	out := make(map[int]types.SeatKey, min(len(free), len(unplaced)))
	if len(unplaced) == 0 {
		return out, nil
	}
	if len(free) == 0 {
		return nil, ErrNoFreeSeats
	}

	for i, id := range unplaced {
		if i >= len(free) {
			break
		}
		out[id] = free[i]
	}

	return out, nil
}
