//go:build windows

package commands

import (
	"log/slog"

	"github.com/born-ml/pixops/backend/webgpu"
	"github.com/born-ml/pixops/gpuimage"
)

func init() {
	backends = append(backends, backend{
		name:      "webgpu",
		available: webgpu.IsAvailable,
		open: func(_ Config, log *slog.Logger) (gpuimage.Runtime, error) {
			return webgpu.New(webgpu.WithLogger(log))
		},
	})
}
