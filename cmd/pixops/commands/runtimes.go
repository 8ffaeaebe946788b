package commands

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/born-ml/pixops/backend/emu"
	"github.com/born-ml/pixops/gpuimage"
)

// backend describes one selectable runtime. Platform files append to
// backends in init.
type backend struct {
	name      string
	available func() bool
	open      func(cfg Config, log *slog.Logger) (gpuimage.Runtime, error)
}

var backends = []backend{
	{
		name:      "emu",
		available: func() bool { return true },
		open: func(cfg Config, log *slog.Logger) (gpuimage.Runtime, error) {
			opts := []emu.Option{emu.WithLogger(log)}
			if cfg.Workers > 0 {
				opts = append(opts, emu.WithWorkers(cfg.Workers))
			}
			return emu.New(opts...), nil
		},
	},
}

func backendNames() []string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.name
	}
	return names
}

func openBackend(cfg Config, log *slog.Logger) (gpuimage.Runtime, error) {
	i := slices.IndexFunc(backends, func(b backend) bool { return b.name == cfg.Backend })
	if i < 0 {
		return nil, fmt.Errorf("unknown backend %q (have %v)", cfg.Backend, backendNames())
	}
	b := backends[i]
	if !b.available() {
		return nil, fmt.Errorf("backend %q is not available on this machine", b.name)
	}
	return b.open(cfg, log)
}
