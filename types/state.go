package types

// JobStatus is the lifecycle status of a solve job.
//
// A job progresses:
//
//	JobPending → JobRunning → JobSuccess | JobFailure
//
// Timeouts, transport errors and cancellation all end in JobFailure.
type JobStatus int

const (
	// JobPending indicates the job is being submitted.
	JobPending JobStatus = iota

	// JobRunning indicates the job was accepted and is being polled.
	JobRunning

	// JobSuccess indicates the solver returned an assignment that was applied.
	JobSuccess

	// JobFailure indicates the job ended without an applied assignment.
	JobFailure
)

// String returns the wire name of the job status.
func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "PENDING"
	case JobRunning:
		return "RUNNING"
	case JobSuccess:
		return "SUCCESS"
	case JobFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s JobStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ClickResult names the transition taken by a seat click.
type ClickResult int

const (
	// ClickRejected means the click was illegal (forbidden target) and nothing changed.
	ClickRejected ClickResult = iota

	// ClickPlaced means the selected student moved to an empty seat.
	ClickPlaced

	// ClickSwapped means the selected student took an occupied seat.
	ClickSwapped

	// ClickHighlighted means the selected student's own seat was highlighted.
	ClickHighlighted

	// ClickCleared means a second click on the student's own seat cleared the selection.
	ClickCleared

	// ClickOccupantSelected means the occupant of the clicked seat became selected.
	ClickOccupantSelected

	// ClickSeatSelected means an empty seat became selected on its own.
	ClickSeatSelected

	// ClickSeatDeselected means the selected empty seat was clicked again.
	ClickSeatDeselected
)

// String returns the string representation of the click result.
func (r ClickResult) String() string {
	switch r {
	case ClickRejected:
		return "Rejected"
	case ClickPlaced:
		return "Placed"
	case ClickSwapped:
		return "Swapped"
	case ClickHighlighted:
		return "Highlighted"
	case ClickCleared:
		return "Cleared"
	case ClickOccupantSelected:
		return "OccupantSelected"
	case ClickSeatSelected:
		return "SeatSelected"
	case ClickSeatDeselected:
		return "SeatDeselected"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r ClickResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ChangeKind classifies an editor state change delivered to subscribers.
type ChangeKind string

const (
	ChangeRoster      ChangeKind = "roster"
	ChangeSchema      ChangeKind = "schema"
	ChangePlacement   ChangeKind = "placement"
	ChangeSelection   ChangeKind = "selection"
	ChangeConstraints ChangeKind = "constraints"
	ChangeLayout      ChangeKind = "layout"
	ChangeSolve       ChangeKind = "solve"
	ChangeImport      ChangeKind = "import"
)

// Change is one state change notification delivered to editor subscribers.
type Change struct {
	Kind ChangeKind `json:"kind"`

	// Version increases by one with every committed change.
	Version uint64 `json:"version"`
}
