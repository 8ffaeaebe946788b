package gpuimage

import (
	"log/slog"
	"sync/atomic"

	"github.com/born-ml/pixops/internal/logging"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the logger for image operations.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: launch configurations, allocations
//   - [slog.LevelWarn]: device memory release errors
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.OrNop(l))
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
