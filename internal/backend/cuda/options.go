//go:build linux

package cuda

import (
	"log/slog"

	"github.com/born-ml/pixops/internal/logging"
)

// DefaultArch is the virtual architecture kernels are compiled for unless
// WithArch overrides it. PTX for it is JIT-compiled to newer devices by the
// driver.
const DefaultArch = "compute_52"

// Option configures a Device during creation.
type Option func(*options)

type options struct {
	ordinal int
	arch    string
	logger  *slog.Logger
}

func defaultOptions() options {
	return options{
		arch:   DefaultArch,
		logger: logging.Nop(),
	}
}

// WithDevice selects the CUDA device by ordinal. Default 0.
func WithDevice(ordinal int) Option {
	return func(o *options) {
		o.ordinal = ordinal
	}
}

// WithArch sets the NVRTC target architecture, e.g. "compute_80".
func WithArch(arch string) Option {
	return func(o *options) {
		if arch != "" {
			o.arch = arch
		}
	}
}

// WithLogger sets the logger for device diagnostics. Nil keeps the default
// silent logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrNop(l)
	}
}
