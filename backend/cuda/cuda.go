//go:build linux

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cuda provides the CUDA runtime for NVIDIA GPUs.
//
// The CUDA driver and NVRTC are loaded at runtime, so binaries build without
// cgo and run on machines without a GPU; use [IsAvailable] to decide.
//
// Example:
//
//	if cuda.IsAvailable() {
//	    dev, err := cuda.New(cuda.WithDevice(0))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer dev.Close()
//	}
package cuda

import (
	"log/slog"

	"github.com/born-ml/pixops/gpuimage"
	internalcuda "github.com/born-ml/pixops/internal/backend/cuda"
)

// Device is a CUDA context on one GPU.
type Device = internalcuda.Device

// Compile-time check that Device implements gpuimage.Runtime.
var _ gpuimage.Runtime = (*Device)(nil)

// Option configures a Device.
type Option = internalcuda.Option

// Result is a CUDA driver status code.
type Result = internalcuda.Result

// New opens a CUDA device and compiles the kernels for it.
func New(opts ...Option) (*Device, error) {
	return internalcuda.New(opts...)
}

// IsAvailable reports whether the CUDA driver, NVRTC and a device are present.
func IsAvailable() bool {
	return internalcuda.IsAvailable()
}

// WithDevice selects the device ordinal.
func WithDevice(ordinal int) Option { return internalcuda.WithDevice(ordinal) }

// WithArch sets the compile target, e.g. "compute_80".
func WithArch(arch string) Option { return internalcuda.WithArch(arch) }

// WithLogger sets the device logger.
func WithLogger(l *slog.Logger) Option { return internalcuda.WithLogger(l) }
