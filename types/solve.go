package types

import (
	"context"
	"encoding/json"
	"time"
)

// SolverStatus is the status string reported by the solver backend.
type SolverStatus string

const (
	SolverPending  SolverStatus = "PENDING"
	SolverReceived SolverStatus = "RECEIVED"
	SolverStarted  SolverStatus = "STARTED"
	SolverRetry    SolverStatus = "RETRY"
	SolverSuccess  SolverStatus = "SUCCESS"
	SolverFailure  SolverStatus = "FAILURE"
)

// Terminal reports whether the status ends the job. Any status other than
// SUCCESS and FAILURE, including unknown ones, means "still running".
func (s SolverStatus) Terminal() bool {
	return s == SolverSuccess || s == SolverFailure
}

// SolveOptions carries solver tuning sent with every job.
type SolveOptions struct {
	// Solver selects the backend engine ("asp" or "cpsat").
	Solver string `json:"solver,omitempty" yaml:"solver"`

	// TimeBudgetMs is the solver time budget in milliseconds.
	TimeBudgetMs int `json:"time_budget_ms" yaml:"timeBudgetMs"`

	// PreferAlone asks the solver to favor students sitting alone.
	PreferAlone bool `json:"prefer_alone" yaml:"preferAlone"`

	// PreferMixage asks the solver to favor mixed-gender tables.
	PreferMixage bool `json:"prefer_mixage" yaml:"preferMixage"`

	// LockPlacements locks every current placement not already pinned by an exact_seat rule.
	LockPlacements bool `json:"lock_placements" yaml:"lockPlacements"`
}

// SolvePayload is the body of a solver job submission.
type SolvePayload struct {
	Schema         Schema           `json:"schema"`
	Students       []Student        `json:"students"`
	Options        SolveOptions     `json:"options"`
	Constraints    []Constraint     `json:"constraints"`
	Forbidden      []SeatKey        `json:"forbidden"`
	Placements     map[SeatKey]int  `json:"placements"`
	VisualRows     [][]TableKey     `json:"visual_rows,omitempty"`
	TableVisualRow map[TableKey]int `json:"table_visual_row,omitempty"`
}

// StatusReport is one poll response from the solver backend.
type StatusReport struct {
	Status     SolverStatus    `json:"status"`
	Assignment map[SeatKey]int `json:"assignment,omitempty"`
	Download   *ExportLinks    `json:"download,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ViewLinks are the rendered artifacts of one plan orientation.
type ViewLinks struct {
	PNG string `json:"png,omitempty"`
	PDF string `json:"pdf,omitempty"`
	SVG string `json:"svg,omitempty"`
}

// Empty reports whether no artifact is available.
func (v ViewLinks) Empty() bool {
	return v.PNG == "" && v.PDF == "" && v.SVG == ""
}

// ExportLinks are download links returned by the export or solver backend.
// Unavailable artifacts are left empty.
type ExportLinks struct {
	Student ViewLinks `json:"student"`
	Teacher ViewLinks `json:"teacher"`
	JSON    string    `json:"json,omitempty"`
	ZIP     string    `json:"zip,omitempty"`
	TXT     string    `json:"txt,omitempty"`
}

// UnmarshalJSON accepts both the nested {student:{...}, teacher:{...}, json, zip}
// shape and the older flat {png, pdf, svg, json, zip} shape, in which case the
// flat links describe the student view only.
func (l *ExportLinks) UnmarshalJSON(data []byte) error {
	var raw struct {
		Student *ViewLinks `json:"student"`
		Teacher *ViewLinks `json:"teacher"`
		PNG     string     `json:"png"`
		PDF     string     `json:"pdf"`
		SVG     string     `json:"svg"`
		JSON    string     `json:"json"`
		ZIP     string     `json:"zip"`
		TXT     string     `json:"txt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := ExportLinks{JSON: raw.JSON, ZIP: raw.ZIP, TXT: raw.TXT}
	if raw.Student != nil {
		out.Student = *raw.Student
	} else {
		out.Student = ViewLinks{PNG: raw.PNG, PDF: raw.PDF, SVG: raw.SVG}
	}
	if raw.Teacher != nil {
		out.Teacher = *raw.Teacher
	}
	*l = out

	return nil
}

// ExportRequest is the body of an export call.
type ExportRequest struct {
	ClassName        string          `json:"class_name"`
	SVGMarkup        string          `json:"svg_markup"`
	SVGMarkupTeacher string          `json:"svg_markup_teacher"`
	Schema           Schema          `json:"schema"`
	Students         []Student       `json:"students"`
	Options          SolveOptions    `json:"options"`
	Constraints      []any           `json:"constraints"`
	Forbidden        []SeatKey       `json:"forbidden"`
	Placements       map[SeatKey]int `json:"placements"`
	NameView         NameView        `json:"name_view"`
}

// SolverBackend submits solver jobs and polls their status.
type SolverBackend interface {
	// Submit starts a job and returns its opaque task id.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - payload: Solver job body
	//
	// Returns:
	//   - string: Task id to poll
	//   - error: Transport or decode error
	Submit(ctx context.Context, payload SolvePayload) (string, error)

	// Status polls the job with the given task id.
	Status(ctx context.Context, taskID string) (StatusReport, error)
}

// ExportBackend renders a finished plan into downloadable artifacts.
type ExportBackend interface {
	Export(ctx context.Context, req ExportRequest) (ExportLinks, error)
}

// Clock abstracts time for the solve orchestrator so polling can be driven
// deterministically in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// SolveJob describes one solve attempt. It is owned by the orchestrator for the
// lifetime of that attempt.
type SolveJob struct {
	// ID is the local job id, assigned when the job starts.
	ID string `json:"id"`

	// TaskID is the solver's task id, empty until the submission is accepted.
	TaskID      string        `json:"task_id,omitempty"`
	Status      JobStatus     `json:"status"`
	SubmittedAt time.Time     `json:"submitted_at"`
	Budget      time.Duration `json:"budget"`
}
