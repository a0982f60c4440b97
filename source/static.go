package source

import (
	"context"
	"slices"
	"sync"

	"github.com/arloliu/seatplan/types"
)

// Static implements a roster source with a fixed list of students.
type Static struct {
	mu       sync.RWMutex
	students []types.Student
}

var _ types.RosterSource = (*Static)(nil)

// NewStatic creates a new static roster source.
//
// The source returns the same students until Update is called. Useful for
// tests and for rosters parsed before the editor starts.
//
// Parameters:
//   - students: Roster in display order
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic([]types.Student{
//	    {ID: 1, First: "Alice", Last: "Martin", Gender: types.GenderFemale},
//	    {ID: 2, First: "Bruno", Last: "Petit", Gender: types.GenderMale},
//	})
//	ed, err := seatplan.NewEditor(&cfg, seatplan.WithRosterSource(src))
//	if err != nil { /* handle */ }
//	err = ed.LoadRoster(ctx)
func NewStatic(students []types.Student) *Static {
	return &Static{
		students: slices.Clone(students),
	}
}

// ListStudents returns a copy of the roster.
//
// Returns:
//   - []types.Student: The current roster
//   - error: Context error when ctx is already done
func (s *Static) ListStudents(ctx context.Context) ([]types.Student, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.students), nil
}

// Update replaces the roster.
//
// Parameters:
//   - students: New roster
//
// Example:
//
//	src := source.NewStatic(term1)
//	// a student joined the class
//	src.Update(append(term1, newcomer))
//	err := ed.LoadRoster(ctx)
func (s *Static) Update(students []types.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.students = slices.Clone(students)
}
