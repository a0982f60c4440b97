package store

import (
	"fmt"
	"maps"

	"github.com/arloliu/seatplan/types"
)

// Index is the placement bijection between occupied seats and student ids,
// kept as two synchronized maps.
//
// Every mutating method leaves both directions in agreement.
type Index struct {
	bySeat    map[types.SeatKey]int
	byStudent map[int]types.SeatKey
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		bySeat:    make(map[types.SeatKey]int),
		byStudent: make(map[int]types.SeatKey),
	}
}

// StudentAt returns the occupant of key.
func (ix *Index) StudentAt(key types.SeatKey) (int, bool) {
	id, ok := ix.bySeat[key]
	return id, ok
}

// SeatOf returns the seat of student id.
func (ix *Index) SeatOf(id int) (types.SeatKey, bool) {
	key, ok := ix.byStudent[id]
	return key, ok
}

// Place seats student id at key.
//
// The student's previous seat, if any, is freed. A different student already
// at key is unplaced and returned.
//
// Returns:
//   - int: Id of the evicted occupant
//   - bool: true if an occupant was evicted
func (ix *Index) Place(id int, key types.SeatKey) (int, bool) {
	ix.Remove(id)

	evicted, ok := ix.bySeat[key]
	if ok {
		delete(ix.byStudent, evicted)
	}

	ix.bySeat[key] = id
	ix.byStudent[id] = key

	return evicted, ok
}

// Remove unplaces student id and returns the seat it held.
func (ix *Index) Remove(id int) (types.SeatKey, bool) {
	key, ok := ix.byStudent[id]
	if !ok {
		return types.SeatKey{}, false
	}
	delete(ix.byStudent, id)
	delete(ix.bySeat, key)

	return key, true
}

// Clear removes every placement.
func (ix *Index) Clear() {
	clear(ix.bySeat)
	clear(ix.byStudent)
}

// Replace clears the index then rebuilds both directions from placements.
//
// It never merges with previous content. When placements maps two seats to the
// same student the call fails and the index is left unchanged.
func (ix *Index) Replace(placements map[types.SeatKey]int) error {
	byStudent := make(map[int]types.SeatKey, len(placements))
	for key, id := range placements {
		if prev, dup := byStudent[id]; dup {
			return fmt.Errorf("student %d placed at %s and %s", id, prev, key)
		}
		byStudent[id] = key
	}

	ix.bySeat = maps.Clone(placements)
	if ix.bySeat == nil {
		ix.bySeat = make(map[types.SeatKey]int)
	}
	ix.byStudent = byStudent

	return nil
}

// Len returns the number of placed students.
func (ix *Index) Len() int {
	return len(ix.bySeat)
}

// Placements returns a copy of the seat→student direction.
func (ix *Index) Placements() map[types.SeatKey]int {
	return maps.Clone(ix.bySeat)
}

// Check verifies that both directions agree exactly.
func (ix *Index) Check() error {
	if len(ix.bySeat) != len(ix.byStudent) {
		return fmt.Errorf("index size mismatch: %d seats, %d students", len(ix.bySeat), len(ix.byStudent))
	}
	for key, id := range ix.bySeat {
		if back, ok := ix.byStudent[id]; !ok || back != key {
			return fmt.Errorf("seat %s maps to student %d but student maps to %v", key, id, back)
		}
	}

	return nil
}
