package types

import "context"

// Hooks defines callbacks for editor events.
//
// All hooks are optional and run in background goroutines so they never block
// an editing operation. Hook errors are logged and otherwise ignored.
//
// Example:
//
//	hooks := &seatplan.Hooks{
//	    OnSolveFinished: func(ctx context.Context, job seatplan.SolveJob, err error) error {
//	        if err != nil {
//	            notify("solve failed: " + err.Error())
//	        }
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnStateChanged is called after every committed state change.
	OnStateChanged func(ctx context.Context, change ChangeKind) error

	// OnSolveFinished is called once per solve job, on every exit path.
	// err is nil when the assignment was applied.
	OnSolveFinished func(ctx context.Context, job SolveJob, err error) error

	// OnError is called when a background operation fails.
	OnError func(ctx context.Context, err error) error
}
