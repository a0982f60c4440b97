package types

import "context"

// RosterSource provides the student roster.
//
// Implementations can read from any backend:
//   - Static: fixed list for testing
//   - Custom: CSV upload, school information system export, etc.
//
// Parsing of raw rosters (name splitting, gender inference) happens inside the
// source; the editor only receives structured students.
type RosterSource interface {
	// ListStudents returns the full roster.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//
	// Returns:
	//   - []Student: Students with unique ids
	//   - error: Source error (nil on success)
	ListStudents(ctx context.Context) ([]Student, error)
}
