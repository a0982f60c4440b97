package seatplan

import (
	"context"
	"time"

	"github.com/arloliu/seatplan/internal/layout"
	"github.com/arloliu/seatplan/internal/room"
	"github.com/arloliu/seatplan/internal/solve"
)

type (
	// SolveHandle is a running solve job. Info reports its state and Done
	// delivers its outcome exactly once.
	SolveHandle = solve.Job

	// SolveOutcome is the result of a finished solve job.
	SolveOutcome = solve.Outcome
)

// CanSolve reports whether a solve could start now.
//
// Returns:
//   - error: nil, or the reason the solve action is disabled (ErrSolverBackendRequired,
//     ErrSolveInFlight, ErrNoStudents, ErrNoUsableSchema)
func (e *Editor) CanSolve() error {
	if e.solver == nil {
		return ErrSolverBackendRequired
	}
	if e.solver.InFlight() {
		return ErrSolveInFlight
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.solvePreconditions()
}

// solvePreconditions checks the local preconditions. Caller holds e.mu.
func (e *Editor) solvePreconditions() error {
	if e.st.StudentCount() == 0 {
		return ErrNoStudents
	}
	if !room.Usable(e.st.Schema) {
		return ErrNoUsableSchema
	}

	return nil
}

// StartSolve submits the current plan to the solver and polls it in the background.
//
// The payload is built from a snapshot of the state taken under the editor
// mutex; edits made while the job runs are overwritten when the assignment is
// applied. On success the placements are replaced as a whole; on any failure
// nothing changes. At most one job runs at a time.
//
// The job does not inherit ctx cancellation; use CancelSolve to stop it.
//
// Parameters:
//   - ctx: Context whose values are carried by the job
//
// Returns:
//   - *SolveHandle: Running job
//   - error: ErrSolverBackendRequired, ErrNoStudents, ErrNoUsableSchema or ErrSolveInFlight,
//     all returned before any network call
//
// Example:
//
//	job, err := ed.StartSolve(ctx)
//	if err != nil {
//	    return err
//	}
//	out := <-job.Done()
//	if out.Err != nil {
//	    log.Printf("solve failed: %v", out.Err)
//	}
func (e *Editor) StartSolve(ctx context.Context) (*SolveHandle, error) {
	if e.solver == nil {
		return nil, ErrSolverBackendRequired
	}

	e.mu.Lock()
	if err := e.solvePreconditions(); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	opts := e.st.Options
	if opts.Solver == "" {
		opts.Solver = e.cfg.Solve.Solver
	}
	budget := time.Duration(opts.TimeBudgetMs) * time.Millisecond
	if budget <= 0 {
		budget = e.cfg.Solve.DefaultBudget
		opts.TimeBudgetMs = int(budget.Milliseconds())
	}

	rows, rowOf := layout.VisualRows(e.st.Schema, e.nudger.Rects())
	payload := solve.BuildPayload(e.st, opts, solve.Hints{VisualRows: rows, TableVisualRow: rowOf})

	// started under e.mu: ImportJSON checks InFlight under the same lock
	job, err := e.solver.Start(ctx, payload, budget)
	var version uint64
	if err == nil {
		version = e.version.Add(1)
	}
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	e.notify(ChangeSolve, version)

	return job, nil
}

// CancelSolve aborts the running solve job.
//
// Returns:
//   - bool: true if a job was running
func (e *Editor) CancelSolve() bool {
	if e.solver == nil {
		return false
	}

	return e.solver.Cancel()
}

// SolveInFlight reports whether a solve job is running.
func (e *Editor) SolveInFlight() bool {
	return e.solver != nil && e.solver.InFlight()
}

// CurrentSolve returns the running solve job.
func (e *Editor) CurrentSolve() (*SolveHandle, bool) {
	if e.solver == nil {
		return nil, false
	}
	job := e.solver.Current()

	return job, job != nil
}

// applyAssignment validates a solver assignment and installs it atomically.
// It runs on the poll goroutine.
func (e *Editor) applyAssignment(a map[SeatKey]int) error {
	e.mu.Lock()
	err := e.st.CheckAssignment(a)
	if err == nil {
		err = e.st.Index.Replace(a)
	}
	if err == nil {
		// a highlighted seat may now hold someone else
		if e.st.Selection.Student != nil || e.st.Selection.Seat != nil {
			e.engine.ClearSelection()
		}
		e.metrics.RecordPlacementCount(e.st.Index.Len())
	}
	var version uint64
	if err == nil {
		version = e.version.Add(1)
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	e.notify(ChangePlacement, version)

	return nil
}

// solveFinished runs once per job after the in-flight guard is released.
func (e *Editor) solveFinished(out SolveOutcome) {
	e.mu.Lock()
	version := e.version.Add(1)
	e.mu.Unlock()
	e.notify(ChangeSolve, version)

	go func() {
		if err := e.hooks.OnSolveFinished(e.ctx, out.Job, out.Err); err != nil {
			e.logError("solve finished hook error", "job_id", out.Job.ID, "error", err)
		}
		if out.Err != nil {
			if err := e.hooks.OnError(e.ctx, out.Err); err != nil {
				e.logError("error hook error", "job_id", out.Job.ID, "error", err)
			}
		}
	}()
}
