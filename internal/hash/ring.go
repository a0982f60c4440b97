// Package hash provides xxh3-based hashing for seat plans: a seat ring that
// spreads students over free seats deterministically, and plan fingerprints.
package hash

import (
	"cmp"
	"encoding/binary"
	"slices"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/seatplan/types"
)

// Ring places seats on a 64-bit hash circle.
//
// A student id hashes to a point on the circle and is mapped to the first seat
// at or after that point, wrapping around. The mapping only depends on the seat
// set, the id and the seed, so the same room yields the same spread.
type Ring struct {
	// nodes contains one node per seat, sorted by hash
	nodes []node

	// seed for hash function (0 means no seed)
	seed uint64
}

type node struct {
	hash uint64
	seat types.SeatKey
}

// NewRing creates a ring over the given seats.
//
// Duplicate seats are ignored.
//
// Example:
//
//	ring := hash.NewRing(room.Seats(schema), 42)
//	seat, ok := ring.Claim(studentID, taken)
func NewRing(seats []types.SeatKey, seed uint64) *Ring {
	r := &Ring{nodes: make([]node, 0, len(seats)), seed: seed}

	seen := make(map[types.SeatKey]struct{}, len(seats))
	for _, s := range seats {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		r.nodes = append(r.nodes, node{hash: r.hashString(s.String()), seat: s})
	}

	slices.SortFunc(r.nodes, func(a, b node) int {
		if c := cmp.Compare(a.hash, b.hash); c != 0 {
			return c
		}
		return a.seat.Compare(b.seat)
	})

	return r
}

// Size returns the number of seats on the ring.
func (r *Ring) Size() int {
	return len(r.nodes)
}

// Seat returns the seat owning the point of student id.
func (r *Ring) Seat(id int) (types.SeatKey, bool) {
	if len(r.nodes) == 0 {
		return types.SeatKey{}, false
	}

	return r.nodes[r.start(id)].seat, true
}

// Claim walks the ring clockwise from the point of student id and returns the
// first seat not in taken. The returned seat is added to taken.
//
// Returns:
//   - types.SeatKey: Claimed seat
//   - bool: false when every seat is taken
func (r *Ring) Claim(id int, taken map[types.SeatKey]struct{}) (types.SeatKey, bool) {
	n := len(r.nodes)
	if n == 0 {
		return types.SeatKey{}, false
	}

	start := r.start(id)
	for i := range n {
		seat := r.nodes[(start+i)%n].seat
		if _, busy := taken[seat]; busy {
			continue
		}
		taken[seat] = struct{}{}

		return seat, true
	}

	return types.SeatKey{}, false
}

func (r *Ring) start(id int) int {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(id)) //nolint:gosec
	h := xxh3.HashSeed(b[:], r.seed)

	idx, _ := slices.BinarySearchFunc(r.nodes, h, func(n node, t uint64) int {
		return cmp.Compare(n.hash, t)
	})
	if idx >= len(r.nodes) {
		idx = 0
	}

	return idx
}

func (r *Ring) hashString(s string) uint64 {
	if r.seed != 0 {
		return xxh3.HashStringSeed(s, r.seed)
	}

	return xxh3.HashString(s)
}
