package seatplan

import (
	"fmt"
	"time"

	"github.com/arloliu/seatplan/types"
)

// SolveConfig controls solver jobs.
type SolveConfig struct {
	// InitialPollDelay is the first delay between status polls and the lower bound of every delay.
	InitialPollDelay time.Duration `yaml:"initialPollDelay"`

	// MaxPollDelay caps the delay between status polls.
	MaxPollDelay time.Duration `yaml:"maxPollDelay"`

	// PollMultiplier grows the poll delay after each non-terminal status.
	PollMultiplier float64 `yaml:"pollMultiplier"`

	// Grace is added to the time budget before a job is declared timed out.
	//
	// Default: 5 seconds
	Grace time.Duration `yaml:"grace"`

	// DefaultBudget is the solver time budget used when SolveOptions.TimeBudgetMs is zero.
	DefaultBudget time.Duration `yaml:"defaultBudget"`

	// RequestTimeout bounds each HTTP request to the solver and export backends.
	// It does not bound the job as a whole.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// Solver is the solver engine name sent with every job ("asp" or "cpsat").
	Solver string `yaml:"solver"`
}

// LayoutConfig controls table repositioning.
type LayoutConfig struct {
	// NudgeStep is the displacement in pixels of one keyboard nudge.
	NudgeStep float64 `yaml:"nudgeStep"`
}

// ExportConfig controls rendered exports.
type ExportConfig struct {
	// NameView is the default name display of new sessions ("first", "last" or "both").
	NameView types.NameView `yaml:"nameView"`
}

// Config is the configuration for the Editor.
//
// All duration fields accept standard Go duration strings like "500ms", "4s", "1m".
type Config struct {
	Solve  SolveConfig  `yaml:"solve"`
	Layout LayoutConfig `yaml:"layout"`
	Export ExportConfig `yaml:"export"`
}

// Known solver engines.
var knownSolvers = map[string]struct{}{
	"asp":   {},
	"cpsat": {},
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		Solve: SolveConfig{
			InitialPollDelay: 500 * time.Millisecond,
			MaxPollDelay:     4 * time.Second,
			PollMultiplier:   1.5,
			Grace:            5 * time.Second,
			DefaultBudget:    60 * time.Second,
			RequestTimeout:   15 * time.Second,
			Solver:           "asp",
		},
		Layout: LayoutConfig{
			NudgeStep: 10,
		},
		Export: ExportConfig{
			NameView: types.NameViewBoth,
		},
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Solve.InitialPollDelay == 0 {
		cfg.Solve.InitialPollDelay = defaults.Solve.InitialPollDelay
	}
	if cfg.Solve.MaxPollDelay == 0 {
		cfg.Solve.MaxPollDelay = defaults.Solve.MaxPollDelay
	}
	if cfg.Solve.PollMultiplier == 0 {
		cfg.Solve.PollMultiplier = defaults.Solve.PollMultiplier
	}
	if cfg.Solve.Grace == 0 {
		cfg.Solve.Grace = defaults.Solve.Grace
	}
	if cfg.Solve.DefaultBudget == 0 {
		cfg.Solve.DefaultBudget = defaults.Solve.DefaultBudget
	}
	if cfg.Solve.RequestTimeout == 0 {
		cfg.Solve.RequestTimeout = defaults.Solve.RequestTimeout
	}
	if cfg.Solve.Solver == "" {
		cfg.Solve.Solver = defaults.Solve.Solver
	}
	if cfg.Layout.NudgeStep == 0 {
		cfg.Layout.NudgeStep = defaults.Layout.NudgeStep
	}
	if cfg.Export.NameView == "" {
		cfg.Export.NameView = defaults.Export.NameView
	}
}

// Validate checks configuration constraints.
//
// Returns:
//   - error: ErrInvalidConfig describing the first violated constraint
func (c *Config) Validate() error {
	if c.Solve.InitialPollDelay <= 0 {
		return fmt.Errorf("%w: solve.initialPollDelay must be positive", ErrInvalidConfig)
	}
	if c.Solve.MaxPollDelay < c.Solve.InitialPollDelay {
		return fmt.Errorf("%w: solve.maxPollDelay (%s) must be >= solve.initialPollDelay (%s)",
			ErrInvalidConfig, c.Solve.MaxPollDelay, c.Solve.InitialPollDelay)
	}
	if c.Solve.PollMultiplier < 1 {
		return fmt.Errorf("%w: solve.pollMultiplier must be >= 1, got %v", ErrInvalidConfig, c.Solve.PollMultiplier)
	}
	if c.Solve.Grace < 0 {
		return fmt.Errorf("%w: solve.grace must not be negative", ErrInvalidConfig)
	}
	if c.Solve.DefaultBudget <= 0 {
		return fmt.Errorf("%w: solve.defaultBudget must be positive", ErrInvalidConfig)
	}
	if c.Solve.RequestTimeout <= 0 {
		return fmt.Errorf("%w: solve.requestTimeout must be positive", ErrInvalidConfig)
	}
	if c.Layout.NudgeStep <= 0 {
		return fmt.Errorf("%w: layout.nudgeStep must be positive", ErrInvalidConfig)
	}
	if !c.Export.NameView.Valid() {
		return fmt.Errorf("%w: export.nameView %q is not one of first, last, both", ErrInvalidConfig, c.Export.NameView)
	}

	return nil
}

// ValidateWithWarnings validates the configuration and logs warnings for
// settings that work but are likely mistakes.
//
// Parameters:
//   - logger: Logger for warnings (nil disables warnings)
//
// Returns:
//   - error: Same as Validate
func (c *Config) ValidateWithWarnings(logger Logger) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if logger == nil {
		return nil
	}

	if _, ok := knownSolvers[c.Solve.Solver]; !ok {
		logger.Warn("unknown solver engine, the backend may reject jobs", "solver", c.Solve.Solver)
	}
	if c.Solve.RequestTimeout > c.Solve.DefaultBudget {
		logger.Warn("request timeout exceeds the default solve budget",
			"request_timeout", c.Solve.RequestTimeout.String(),
			"default_budget", c.Solve.DefaultBudget.String(),
		)
	}
	if c.Solve.InitialPollDelay > c.Solve.Grace && c.Solve.Grace > 0 {
		logger.Warn("first poll comes after the grace period; short budgets will time out after one poll",
			"initial_poll_delay", c.Solve.InitialPollDelay.String(),
			"grace", c.Solve.Grace.String(),
		)
	}

	return nil
}

// TestConfig returns a configuration with short delays for tests.
//
// Polls start at 10ms and cap at 50ms; the grace period is 200ms.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.Solve.InitialPollDelay = 10 * time.Millisecond
	cfg.Solve.MaxPollDelay = 50 * time.Millisecond
	cfg.Solve.Grace = 200 * time.Millisecond
	cfg.Solve.DefaultBudget = time.Second
	cfg.Solve.RequestTimeout = time.Second

	return cfg
}
