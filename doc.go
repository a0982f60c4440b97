// Package seatplan provides an interactive seating-plan editor engine.
//
// A teacher loads a student roster, describes the room as rows of tables, places
// students by hand or automatically, and states placement rules that an external
// solver later satisfies. The Editor is the single source of truth of one such
// session; it is UI-agnostic and can be driven from an HTTP handler, a CLI or a
// test.
//
// # Quick Start
//
//	cfg := seatplan.DefaultConfig()
//	client, _ := backend.NewHTTP("http://localhost:8000")
//
//	ed, err := seatplan.NewEditor(&cfg,
//	    seatplan.WithSolverBackend(client),
//	    seatplan.WithExportBackend(client),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_ = ed.SetRoster(students)
//	_ = ed.BuildUniform(5, []int{2, 3, 2})
//
//	// place student 7 on the first seat of the front-left table
//	_ = ed.SelectStudent(7)
//	_, _ = ed.SeatClick(seatplan.SeatKey{X: 0, Y: 0, S: 0})
//
//	// three students must share a table
//	batchID, _ := ed.AddConstraint(seatplan.KindSameTable, []int{3, 4, 5}, 0)
//
//	job, _ := ed.StartSolve(ctx)
//	out := <-job.Done()
//
// # Key Features
//
//   - Seat-click state machine: place, swap, highlight and deselect with one entry point
//   - Placement rules created in batches from a multi-student selection, edited and deleted as a unit
//   - Schema edits reconcile placements, forbidden seats and rules against the new room
//   - Keyboard table repositioning with collision-checked commits
//   - Single-flight solver jobs with capped backoff polling and an injectable clock
//   - Rendered exports (SVG, PDF) and a JSON interchange format for saving and restoring plans
//
// # Invariants
//
// After every operation:
//
//	placements form a bijection between occupied seats and placed students
//	no forbidden seat holds a student
//	every batch marker counts exactly the rules carrying its batch id
//
// Observers call Subscribe to be told about each committed change and View to
// read a consistent copy of the state.
//
// See the examples/ directory for a complete working program.
package seatplan
