package strategy

import (
	"github.com/arloliu/seatplan/internal/hash"
	"github.com/arloliu/seatplan/types"
)

// Scatter spreads students over free seats using a seat hash ring.
type Scatter struct {
	hashSeed uint64
}

var _ types.FillStrategy = (*Scatter)(nil)

// ScatterOption configures a Scatter strategy.
type ScatterOption func(*Scatter)

// NewScatter creates a new scatter strategy.
//
// Each student id hashes to a point on a ring of the free seats and takes the
// first seat clockwise that nobody took yet.
//
// Parameters:
//   - opts: Optional configuration (WithHashSeed)
//
// Example:
//
//	placed, err := ed.AutoFill(strategy.NewScatter(strategy.WithHashSeed(2024)))
func NewScatter(opts ...ScatterOption) *Scatter {
	sc := &Scatter{}
	for _, opt := range opts {
		opt(sc)
	}

	return sc
}

// WithHashSeed sets the ring seed. Different seeds give different spreads.
func WithHashSeed(seed uint64) ScatterOption {
	return func(sc *Scatter) {
		sc.hashSeed = seed
	}
}

// Fill claims one ring seat per unplaced student, in roster order.
func (sc *Scatter) Fill(free []types.SeatKey, unplaced []int) (map[int]types.SeatKey, error) {
	out := make(map[int]types.SeatKey, min(len(free), len(unplaced)))
	if len(unplaced) == 0 {
		return out, nil
	}
	if len(free) == 0 {
		return nil, ErrNoFreeSeats
	}

	ring := hash.NewRing(free, sc.hashSeed)
	taken := make(map[types.SeatKey]struct{}, len(unplaced))
	for _, id := range unplaced {
		seat, ok := ring.Claim(id, taken)
		if !ok {
			break
		}
		out[id] = seat
	}

	return out, nil
}
