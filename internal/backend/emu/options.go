package emu

import (
	"log/slog"

	"github.com/born-ml/pixops/internal/logging"
	"github.com/born-ml/pixops/internal/parallel"
)

// Option configures a Device during creation.
type Option func(*options)

type options struct {
	grid        parallel.Config
	memoryLimit int
	faults      Faults
	logger      *slog.Logger
}

func defaultOptions() options {
	return options{
		grid:   parallel.DefaultConfig(),
		logger: logging.Nop(),
	}
}

// WithWorkers sets how many groups may execute concurrently.
// Values below 1 run groups one at a time.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.grid.NumWorkers = n
		o.grid.Enabled = n > 1
	}
}

// WithMemoryLimit caps the total bytes that may be allocated at once.
// Zero means unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithFaults installs injected failures, see Faults.
func WithFaults(f Faults) Option {
	return func(o *options) {
		o.faults = f
	}
}

// WithLogger sets the logger for device diagnostics. Nil keeps the default
// silent logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrNop(l)
	}
}

// Faults injects deterministic device failures, for exercising error paths
// that real hardware produces only under memory pressure or driver faults.
type Faults struct {
	// FailAlloc makes every allocation fail.
	FailAlloc bool

	// FailLaunch makes every kernel launch fault.
	FailLaunch bool

	// FailCopy makes the FailCopy-th host<->device copy fail (1-based,
	// counted from construction or the last SetFaults). Zero disables.
	FailCopy int
}
