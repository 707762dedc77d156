package domain

import "time"

// OutputMode selects how much the core itself says on the caller's streams.
// Rendering of response bodies stays with the caller.
type OutputMode int

const (
	// ModeHuman allows human-oriented status notes (scenario progress,
	// load summary).
	ModeHuman OutputMode = iota
	// ModeJSON is the machine-readable mode: no status notes, no summary
	// block.
	ModeJSON
	// ModeQuiet suppresses everything.
	ModeQuiet
)

// ExecutionConfig carries timeouts, output mode and load-run options for one
// command invocation.
type ExecutionConfig struct {
	Output         OutputMode
	ConnTimeout    time.Duration
	RequestTimeout time.Duration
	UserAgent      string
	Verbose        bool

	// Count executes the spec N times. DurationSeconds > 0 takes precedence
	// and runs attempts until the wall-clock deadline instead.
	Count           uint
	DurationSeconds uint
	Concurrency     uint
}

// NewExecutionConfig returns a config with the default timeouts.
func NewExecutionConfig(userAgent string) ExecutionConfig {
	return ExecutionConfig{
		Output:         ModeHuman,
		ConnTimeout:    30 * time.Second,
		RequestTimeout: 300 * time.Second,
		UserAgent:      userAgent,
		Count:          1,
		Concurrency:    1,
	}
}

// DurationMode reports whether the run is bounded by wall-clock time rather
// than an attempt count.
func (c ExecutionConfig) DurationMode() bool {
	return c.DurationSeconds > 0
}

// NormalizedConcurrency maps the zero value to a single worker.
func (c ExecutionConfig) NormalizedConcurrency() uint {
	if c.Concurrency == 0 {
		return 1
	}
	return c.Concurrency
}
