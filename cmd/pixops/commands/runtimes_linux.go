//go:build linux

package commands

import (
	"log/slog"

	"github.com/born-ml/pixops/backend/cuda"
	"github.com/born-ml/pixops/gpuimage"
)

func init() {
	backends = append(backends, backend{
		name:      "cuda",
		available: cuda.IsAvailable,
		open: func(_ Config, log *slog.Logger) (gpuimage.Runtime, error) {
			return cuda.New(cuda.WithLogger(log))
		},
	})
}
