// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package emu provides the emulated device: a pure Go runtime that executes
// kernels with the same grid, block and shared-table structure as a GPU.
//
// It needs no hardware and is the default runtime. Fault injection makes
// allocation, launch and transfer failures reproducible in tests.
//
// Example:
//
//	dev := emu.New(emu.WithWorkers(4))
//	defer dev.Close()
//	img, err := gpuimage.New(dev, 1920, 1080)
package emu

import (
	"log/slog"

	"github.com/born-ml/pixops/gpuimage"
	internalemu "github.com/born-ml/pixops/internal/backend/emu"
)

// Device is the emulated device.
type Device = internalemu.Device

// Compile-time check that Device implements gpuimage.Runtime.
var _ gpuimage.Runtime = (*Device)(nil)

// Option configures a Device.
type Option = internalemu.Option

// Faults injects deterministic device failures.
type Faults = internalemu.Faults

// Stats counts allocations, launches and copies.
type Stats = internalemu.Stats

// Injected failure causes.
var (
	ErrInjectedAlloc  = internalemu.ErrInjectedAlloc
	ErrInjectedLaunch = internalemu.ErrInjectedLaunch
	ErrInjectedCopy   = internalemu.ErrInjectedCopy
)

// New creates an emulated device.
func New(opts ...Option) *Device {
	return internalemu.New(opts...)
}

// WithWorkers sets how many blocks may execute concurrently.
func WithWorkers(n int) Option { return internalemu.WithWorkers(n) }

// WithMemoryLimit caps live device memory in bytes. Zero means unlimited.
func WithMemoryLimit(bytes int) Option { return internalemu.WithMemoryLimit(bytes) }

// WithFaults installs injected failures.
func WithFaults(f Faults) Option { return internalemu.WithFaults(f) }

// WithLogger sets the device logger.
func WithLogger(l *slog.Logger) Option { return internalemu.WithLogger(l) }
