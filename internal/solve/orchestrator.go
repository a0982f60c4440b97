package solve

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/seatplan/types"
)

// ApplyFunc installs a solver assignment. It must validate the assignment and
// replace the placements as a whole, or return an error and change nothing.
type ApplyFunc func(assignment map[types.SeatKey]int) error

// Outcome is the result of a finished job.
type Outcome struct {
	Job        types.SolveJob
	Assignment map[types.SeatKey]int
	Download   *types.ExportLinks
	Err        error
}

// Job is one solve attempt.
type Job struct {
	mu     sync.Mutex
	info   types.SolveJob
	done   chan Outcome
	cancel context.CancelFunc
}

// Info returns a snapshot of the job state.
func (j *Job) Info() types.SolveJob {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.info
}

// Done returns a channel that receives the outcome once and is then closed.
func (j *Job) Done() <-chan Outcome {
	return j.done
}

func (j *Job) update(fn func(*types.SolveJob)) {
	j.mu.Lock()
	fn(&j.info)
	j.mu.Unlock()
}

// Orchestrator runs at most one solve job at a time.
type Orchestrator struct {
	backend types.SolverBackend
	clock   types.Clock
	policy  Policy
	apply   ApplyFunc
	logger  types.Logger
	metrics types.SolveMetrics

	// onFinish is called with every outcome after the guard is released.
	onFinish func(Outcome)

	inFlight atomic.Bool
	mu       sync.Mutex
	current  *Job
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the wall clock.
func WithClock(clock types.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithPolicy replaces the default polling policy.
func WithPolicy(p Policy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// WithFinishHook registers a callback invoked with every outcome.
func WithFinishHook(fn func(Outcome)) Option {
	return func(o *Orchestrator) {
		o.onFinish = fn
	}
}

// NewOrchestrator creates a solve orchestrator.
//
// Parameters:
//   - backend: Solver transport
//   - apply: Callback installing a successful assignment
//   - logger: Logger
//   - metrics: Solve metrics collector
//   - opts: Clock, policy and finish hook overrides
//
// Returns:
//   - *Orchestrator: Idle orchestrator
//   - error: ErrSolverBackendRequired when backend is nil
func NewOrchestrator(
	backend types.SolverBackend,
	apply ApplyFunc,
	logger types.Logger,
	metrics types.SolveMetrics,
	opts ...Option,
) (*Orchestrator, error) {
	if backend == nil {
		return nil, types.ErrSolverBackendRequired
	}
	if apply == nil {
		return nil, errors.New("apply function is required")
	}

	o := &Orchestrator{
		backend: backend,
		clock:   RealClock{},
		policy:  DefaultPolicy(),
		apply:   apply,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// InFlight reports whether a job is running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Current returns the running job, or nil.
func (o *Orchestrator) Current() *Job {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.current
}

// Start submits a job and polls it in the background.
//
// A call while a job is in flight is refused and has no other effect. The job
// does not inherit ctx cancellation; use Cancel to stop it.
//
// Parameters:
//   - ctx: Context whose values are carried by the job
//   - payload: Solver job body
//   - budget: Solver time budget; the job times out after budget plus the policy grace
//
// Returns:
//   - *Job: Running job
//   - error: ErrSolveInFlight
func (o *Orchestrator) Start(ctx context.Context, payload types.SolvePayload, budget time.Duration) (*Job, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, types.ErrSolveInFlight
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	job := &Job{
		info: types.SolveJob{
			ID:          uuid.NewString(),
			Status:      types.JobPending,
			SubmittedAt: o.clock.Now(),
			Budget:      budget,
		},
		done:   make(chan Outcome, 1),
		cancel: cancel,
	}

	o.mu.Lock()
	o.current = job
	o.mu.Unlock()

	o.metrics.RecordSolveStarted()
	o.logger.Info("solve job started", "job_id", job.info.ID, "budget", budget.String())

	go o.run(jobCtx, job, payload)

	return job, nil
}

// Cancel aborts the running job, its pending timer and its in-flight request.
//
// Returns:
//   - bool: true if a job was running
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	job := o.current
	o.mu.Unlock()

	if job == nil {
		return false
	}
	job.cancel()

	return true
}

func (o *Orchestrator) run(ctx context.Context, job *Job, payload types.SolvePayload) {
	var out Outcome
	info := job.Info()
	defer o.finish(job, &out, info.SubmittedAt)

	taskID, err := o.backend.Submit(ctx, payload)
	if err != nil {
		out.Err = o.transportError(ctx, "submit", err)
		return
	}
	job.update(func(info *types.SolveJob) {
		info.TaskID = taskID
		info.Status = types.JobRunning
	})
	o.logger.Debug("solve job submitted", "job_id", info.ID, "task_id", taskID)

	deadline := info.Budget + o.policy.Grace
	var delay time.Duration

	for {
		report, err := o.backend.Status(ctx, taskID)
		if err != nil {
			out.Err = o.transportError(ctx, "poll", err)
			return
		}
		o.metrics.RecordSolvePoll(report.Status)

		switch report.Status {
		case types.SolverSuccess:
			if err := o.apply(report.Assignment); err != nil {
				out.Err = fmt.Errorf("apply solver result: %w", err)
				return
			}
			out.Assignment = report.Assignment
			out.Download = report.Download

			return

		case types.SolverFailure:
			out.Err = fmt.Errorf("%w: %s", types.ErrSolverFailure, report.Error)
			return
		}

		elapsed := o.clock.Now().Sub(info.SubmittedAt)
		if elapsed > deadline {
			out.Err = fmt.Errorf("%w: still %s after %s", types.ErrSolveTimeout, report.Status, elapsed)
			return
		}

		delay = nextDelay(delay, o.policy.InitialDelay, o.policy.Multiplier, o.policy.MaxDelay)
		if err := o.clock.Sleep(ctx, delay); err != nil {
			out.Err = fmt.Errorf("%w: %w", types.ErrSolveCanceled, err)
			return
		}
	}
}

func (o *Orchestrator) transportError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrSolveCanceled, op, ctx.Err())
	}

	return fmt.Errorf("%w: %s: %w", types.ErrSolveTransport, op, err)
}

// finish is the single exit path of a job.
func (o *Orchestrator) finish(job *Job, out *Outcome, started time.Time) {
	job.cancel()

	job.update(func(info *types.SolveJob) {
		if out.Err == nil {
			info.Status = types.JobSuccess
		} else {
			info.Status = types.JobFailure
		}
	})
	out.Job = job.Info()

	o.mu.Lock()
	if o.current == job {
		o.current = nil
	}
	o.mu.Unlock()
	o.inFlight.Store(false)

	label := outcomeLabel(out.Err)
	o.metrics.RecordSolveFinished(label, o.clock.Now().Sub(started).Seconds())
	if out.Err != nil {
		o.logger.Warn("solve job failed", "job_id", out.Job.ID, "task_id", out.Job.TaskID, "outcome", label, "error", out.Err)
	} else {
		o.logger.Info("solve job finished", "job_id", out.Job.ID, "task_id", out.Job.TaskID, "placed", len(out.Assignment))
	}

	if o.onFinish != nil {
		o.onFinish(*out)
	}

	job.done <- *out
	close(job.done)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, types.ErrSolveTimeout):
		return "timeout"
	case errors.Is(err, types.ErrSolveCanceled):
		return "canceled"
	case errors.Is(err, types.ErrSolveTransport):
		return "transport"
	case errors.Is(err, types.ErrSolverFailure):
		return "failure"
	default:
		return "invalid"
	}
}
