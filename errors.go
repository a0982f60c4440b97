package seatplan

import "github.com/arloliu/seatplan/types"

// Sentinel errors returned by the Editor, re-exported from the types package so
// callers can test them with errors.Is without importing types.
var (
	ErrInvalidConfig         = types.ErrInvalidConfig
	ErrSolverBackendRequired = types.ErrSolverBackendRequired
	ErrExportBackendRequired = types.ErrExportBackendRequired
	ErrRosterSourceRequired  = types.ErrRosterSourceRequired
	ErrNoStudents            = types.ErrNoStudents
	ErrNoUsableSchema        = types.ErrNoUsableSchema
	ErrClassNameRequired     = types.ErrClassNameRequired
	ErrDuplicateStudent      = types.ErrDuplicateStudent
)

// Room and assignment errors.
var (
	ErrInvalidSchema   = types.ErrInvalidSchema
	ErrInvalidSeat     = types.ErrInvalidSeat
	ErrMalformedKey    = types.ErrMalformedKey
	ErrUnknownStudent  = types.ErrUnknownStudent
	ErrNoSeatSelected  = types.ErrNoSeatSelected
	ErrSeatOccupied    = types.ErrSeatOccupied
	ErrSeatForbidden   = types.ErrSeatForbidden
	ErrUnsupportedKind = types.ErrUnsupportedKind
)

// Constraint errors.
var (
	ErrMalformedConstraint = types.ErrMalformedConstraint
	ErrNotEnoughStudents   = types.ErrNotEnoughStudents
	ErrBatchNotFound       = types.ErrBatchNotFound
	ErrConstraintNotFound  = types.ErrConstraintNotFound
	ErrBatchedConstraint   = types.ErrBatchedConstraint
)

// Layout errors.
var (
	ErrSelectionActive = types.ErrSelectionActive
	ErrNoTableArmed    = types.ErrNoTableArmed
	ErrUnknownTable    = types.ErrUnknownTable
	ErrCollision       = types.ErrCollision
)

// Solve, export and interchange errors.
var (
	ErrSolveInFlight     = types.ErrSolveInFlight
	ErrSolveTimeout      = types.ErrSolveTimeout
	ErrSolverFailure     = types.ErrSolverFailure
	ErrSolveTransport    = types.ErrSolveTransport
	ErrSolveCanceled     = types.ErrSolveCanceled
	ErrInvalidAssignment = types.ErrInvalidAssignment
	ErrExportFailed      = types.ErrExportFailed
	ErrInvalidDocument   = types.ErrInvalidDocument
)
