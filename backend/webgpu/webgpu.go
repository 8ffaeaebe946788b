//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU runtime.
//
// Kernels run as WGSL compute shaders. Device buffers hold one 32-bit word
// per pixel; transfers widen and narrow rows on the host.
//
// Example:
//
//	if webgpu.IsAvailable() {
//	    dev, err := webgpu.New()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer dev.Close()
//	}
package webgpu

import (
	"log/slog"

	"github.com/born-ml/pixops/gpuimage"
	internalwebgpu "github.com/born-ml/pixops/internal/backend/webgpu"
)

// Device is a WebGPU device.
type Device = internalwebgpu.Device

// Compile-time check that Device implements gpuimage.Runtime.
var _ gpuimage.Runtime = (*Device)(nil)

// Option configures a Device.
type Option = internalwebgpu.Option

// New creates a WebGPU device.
// Returns an error if WebGPU initialization fails (e.g., no compatible GPU).
func New(opts ...Option) (*Device, error) {
	return internalwebgpu.New(opts...)
}

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}

// WithLogger sets the device logger.
func WithLogger(l *slog.Logger) Option { return internalwebgpu.WithLogger(l) }
