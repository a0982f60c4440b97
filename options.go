package seatplan

// Option configures an Editor with optional dependencies.
type Option func(*editorOptions)

// editorOptions holds optional Editor configuration.
type editorOptions struct {
	hooks    *Hooks
	metrics  MetricsCollector
	logger   Logger
	solver   SolverBackend
	exporter ExportBackend
	roster   RosterSource
	fill     FillStrategy
	clock    Clock
}

// WithHooks sets editor event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewEditor
//
// Example:
//
//	hooks := &seatplan.Hooks{
//	    OnSolveFinished: func(ctx context.Context, job seatplan.SolveJob, err error) error {
//	        return notify(job, err)
//	    },
//	}
//	ed, err := seatplan.NewEditor(&cfg, seatplan.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *editorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewEditor
//
// Example:
//
//	collector := metrics.NewPrometheus(prometheus.DefaultRegisterer, "seatplan")
//	ed, err := seatplan.NewEditor(&cfg, seatplan.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *editorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
//
// Returns:
//   - Option: Functional option for NewEditor
func WithLogger(logger Logger) Option {
	return func(o *editorOptions) {
		o.logger = logger
	}
}

// WithSolverBackend sets the solver backend. Without one, StartSolve returns
// ErrSolverBackendRequired.
//
// Example:
//
//	client, _ := backend.NewHTTP("http://localhost:8000")
//	ed, err := seatplan.NewEditor(&cfg, seatplan.WithSolverBackend(client), seatplan.WithExportBackend(client))
func WithSolverBackend(solver SolverBackend) Option {
	return func(o *editorOptions) {
		o.solver = solver
	}
}

// WithExportBackend sets the export backend. Without one, Export returns
// ErrExportBackendRequired.
func WithExportBackend(exporter ExportBackend) Option {
	return func(o *editorOptions) {
		o.exporter = exporter
	}
}

// WithRosterSource sets the source read by LoadRoster.
func WithRosterSource(roster RosterSource) Option {
	return func(o *editorOptions) {
		o.roster = roster
	}
}

// WithFillStrategy sets the strategy used by AutoFill.
//
// Default: strategy.NewSequential()
func WithFillStrategy(fill FillStrategy) Option {
	return func(o *editorOptions) {
		o.fill = fill
	}
}

// WithClock replaces the wall clock driving solve polling and timeouts.
// Tests pass a fake clock to step through polls deterministically.
func WithClock(clock Clock) Option {
	return func(o *editorOptions) {
		o.clock = clock
	}
}
