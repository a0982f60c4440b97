package types

import "errors"

// Sentinel errors for the seatplan library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap details with context using fmt.Errorf("%w: ...", ErrX).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Editor, Room, Assignment, Constraint, Layout, Solve, Interchange)
//   - Use consistent messages across similar error types

// Editor errors - Public API errors returned by the Editor.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSolverBackendRequired is returned when a solve is requested without a solver backend.
	ErrSolverBackendRequired = errors.New("solver backend is required")

	// ErrExportBackendRequired is returned when an export is requested without an export backend.
	ErrExportBackendRequired = errors.New("export backend is required")

	// ErrRosterSourceRequired is returned when a roster reload is requested without a source.
	ErrRosterSourceRequired = errors.New("roster source is required")

	// ErrNoStudents is returned when a solve is requested with an empty roster.
	ErrNoStudents = errors.New("no students loaded")

	// ErrNoUsableSchema is returned when a solve is requested without any row holding a table.
	ErrNoUsableSchema = errors.New("room has no usable table")

	// ErrClassNameRequired is returned when an export is requested without a class name.
	ErrClassNameRequired = errors.New("class name is required")

	// ErrDuplicateStudent is returned when a roster contains the same id twice.
	ErrDuplicateStudent = errors.New("duplicate student id")
)

// Room errors - Seat model and schema editing errors.
var (
	// ErrInvalidSchema is returned for malformed capacity input.
	ErrInvalidSchema = errors.New("invalid room schema")

	// ErrInvalidSeat is returned when a seat key does not exist in the room.
	ErrInvalidSeat = errors.New("invalid seat")

	// ErrMalformedKey is returned when a seat or table key cannot be parsed.
	ErrMalformedKey = errors.New("malformed key")
)

// Assignment errors - Seat click state machine errors.
var (
	// ErrUnknownStudent is returned when a student id is not in the roster.
	ErrUnknownStudent = errors.New("unknown student")

	// ErrNoSeatSelected is returned when a seat operation needs a selected seat.
	ErrNoSeatSelected = errors.New("no seat selected")

	// ErrSeatOccupied is returned when a seat operation needs an empty seat.
	ErrSeatOccupied = errors.New("seat is occupied")

	// ErrSeatForbidden is returned when placing a student on a forbidden seat.
	ErrSeatForbidden = errors.New("seat is forbidden")
)

// Constraint errors - Constraint batch manager errors.
var (
	// ErrUnsupportedKind is returned for unknown kinds, or structural kinds passed to Add.
	ErrUnsupportedKind = errors.New("unsupported constraint kind")

	// ErrMalformedConstraint is returned when a wire constraint lacks a required field.
	ErrMalformedConstraint = errors.New("malformed constraint")

	// ErrNotEnoughStudents is returned when the selection is too small for the kind's arity.
	ErrNotEnoughStudents = errors.New("not enough students selected")

	// ErrBatchNotFound is returned when no entry carries the given batch id.
	ErrBatchNotFound = errors.New("constraint batch not found")

	// ErrConstraintNotFound is returned when deleting an entry that does not exist.
	ErrConstraintNotFound = errors.New("constraint not found")

	// ErrBatchedConstraint is returned when deleting a single entry that belongs to a batch.
	ErrBatchedConstraint = errors.New("constraint belongs to a batch")
)

// Layout errors - Table repositioning errors.
var (
	// ErrSelectionActive is returned when arming a table while a student or seat is selected.
	ErrSelectionActive = errors.New("student or seat selection active")

	// ErrNoTableArmed is returned when nudging without an armed table.
	ErrNoTableArmed = errors.New("no table selected")

	// ErrUnknownTable is returned when a table key does not exist in the room.
	ErrUnknownTable = errors.New("unknown table")

	// ErrCollision is returned when committing a draft that overlaps another table.
	ErrCollision = errors.New("table position overlaps another table")
)

// Solve errors - Solve orchestrator errors.
var (
	// ErrSolveInFlight is returned when a solve is requested while another is running.
	ErrSolveInFlight = errors.New("solve already in flight")

	// ErrSolveTimeout is returned when the job outlives its time budget plus grace.
	ErrSolveTimeout = errors.New("solve timed out")

	// ErrSolverFailure wraps the solver's verbatim failure message.
	ErrSolverFailure = errors.New("solver failure")

	// ErrSolveTransport is returned for network or decode errors while submitting or polling.
	ErrSolveTransport = errors.New("solver transport error")

	// ErrSolveCanceled is returned when the job is canceled.
	ErrSolveCanceled = errors.New("solve canceled")

	// ErrInvalidAssignment is returned when the solver's assignment breaks room invariants.
	ErrInvalidAssignment = errors.New("invalid assignment from solver")
)

// Export errors - Rendered export errors.
var (
	// ErrExportFailed is returned when the export backend cannot render the plan.
	ErrExportFailed = errors.New("export failed")
)

// Interchange errors - Import/export document errors.
var (
	// ErrInvalidDocument is returned for a malformed interchange document.
	ErrInvalidDocument = errors.New("invalid plan document")
)
