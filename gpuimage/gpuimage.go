// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gpuimage

import (
	"log/slog"

	"github.com/born-ml/pixops/internal/device"
	internal "github.com/born-ml/pixops/internal/gpuimage"
	"github.com/born-ml/pixops/internal/hostimage"
)

// Image is a grayscale image in device memory.
type Image = internal.Image

// Host is the host-side image contract used by transfers.
type Host = internal.Host

// Runtime is a device that owns memory and executes kernels.
// Implemented by backend/emu, backend/cuda and backend/webgpu.
type Runtime = device.Runtime

// Error describes a failed operation.
type Error = internal.Error

// Failure kinds.
var (
	ErrEmptyImage          = internal.ErrEmptyImage
	ErrDimensionMismatch   = internal.ErrDimensionMismatch
	ErrInvalidArgument     = internal.ErrInvalidArgument
	ErrAllocationFailure   = internal.ErrAllocationFailure
	ErrKernelLaunchFailure = internal.ErrKernelLaunchFailure
	ErrTransferFailure     = internal.ErrTransferFailure
)

// New allocates an uninitialized width x height image on rt.
// A zero dimension yields an empty image that owns no device memory.
func New(rt Runtime, width, height uint32) (*Image, error) {
	return internal.New(rt, width, height)
}

// SetLogger configures the logger for image operations. Nil silences it.
func SetLogger(l *slog.Logger) {
	internal.SetLogger(l)
}

// ConvertToDevice copies src into dst row by row.
func ConvertToDevice(src Host, dst *Image) error {
	return internal.ConvertToDevice(src, dst)
}

// ConvertToHost copies src into dst row by row, leaving dst's row padding
// untouched.
func ConvertToHost(src *Image, dst Host) error {
	return internal.ConvertToHost(src, dst)
}

// Upload allocates a device image on rt and fills it from src.
func Upload(rt Runtime, src Host) (*Image, error) {
	return internal.Upload(rt, src)
}

// Download copies src into a new unpadded host image.
func Download(src *Image) (*hostimage.Gray, error) {
	return internal.Download(src)
}
