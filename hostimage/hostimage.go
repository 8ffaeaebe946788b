// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package hostimage provides the host-side grayscale image used with
// gpuimage transfers. Rows may be padded beyond the image width.
package hostimage

import (
	"image"

	internal "github.com/born-ml/pixops/internal/hostimage"
)

// Gray is an 8-bit grayscale image in host memory.
type Gray = internal.Gray

// New allocates a zeroed, unpadded width x height image.
func New(width, height uint32) *Gray {
	return internal.New(width, height)
}

// NewPadded allocates a zeroed image whose rows are rowSize bytes apart.
func NewPadded(width, height, rowSize uint32) *Gray {
	return internal.NewPadded(width, height, rowSize)
}

// FromPixels wraps pix without copying.
func FromPixels(width, height, rowSize uint32, pix []byte) (*Gray, error) {
	return internal.FromPixels(width, height, rowSize, pix)
}

// FromImage converts any image to grayscale.
func FromImage(src image.Image) *Gray {
	return internal.FromImage(src)
}

// Scaled resamples src to a width x height grayscale image.
func Scaled(src image.Image, width, height uint32) *Gray {
	return internal.Scaled(src, width, height)
}
