// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gpuimage

import internal "github.com/born-ml/pixops/internal/gpuimage"

// AbsoluteDifference returns |a-b| per pixel.
func AbsoluteDifference(a, b *Image) (*Image, error) { return internal.AbsoluteDifference(a, b) }

// AbsoluteDifferenceInto writes |a-b| per pixel into out.
func AbsoluteDifferenceInto(a, b, out *Image) error { return internal.AbsoluteDifferenceInto(a, b, out) }

// BitwiseAnd returns a&b per pixel.
func BitwiseAnd(a, b *Image) (*Image, error) { return internal.BitwiseAnd(a, b) }

// BitwiseAndInto writes a&b per pixel into out.
func BitwiseAndInto(a, b, out *Image) error { return internal.BitwiseAndInto(a, b, out) }

// BitwiseOr returns a|b per pixel.
func BitwiseOr(a, b *Image) (*Image, error) { return internal.BitwiseOr(a, b) }

// BitwiseOrInto writes a|b per pixel into out.
func BitwiseOrInto(a, b, out *Image) error { return internal.BitwiseOrInto(a, b, out) }

// BitwiseXor returns a^b per pixel.
func BitwiseXor(a, b *Image) (*Image, error) { return internal.BitwiseXor(a, b) }

// BitwiseXorInto writes a^b per pixel into out.
func BitwiseXorInto(a, b, out *Image) error { return internal.BitwiseXorInto(a, b, out) }

// Maximum returns max(a,b) per pixel.
func Maximum(a, b *Image) (*Image, error) { return internal.Maximum(a, b) }

// MaximumInto writes max(a,b) per pixel into out.
func MaximumInto(a, b, out *Image) error { return internal.MaximumInto(a, b, out) }

// Minimum returns min(a,b) per pixel.
func Minimum(a, b *Image) (*Image, error) { return internal.Minimum(a, b) }

// MinimumInto writes min(a,b) per pixel into out.
func MinimumInto(a, b, out *Image) error { return internal.MinimumInto(a, b, out) }

// Subtract returns a-b per pixel, saturating at zero.
func Subtract(a, b *Image) (*Image, error) { return internal.Subtract(a, b) }

// SubtractInto writes a-b per pixel, saturating at zero, into out.
func SubtractInto(a, b, out *Image) error { return internal.SubtractInto(a, b, out) }

// Invert returns 255-v per pixel.
func Invert(src *Image) (*Image, error) { return internal.Invert(src) }

// InvertInto writes 255-v per pixel into out.
func InvertInto(src, out *Image) error { return internal.InvertInto(src, out) }

// GammaCorrection returns clamp(round(scale * v^gamma)) per pixel.
// scale and gamma must be finite and non-negative.
func GammaCorrection(src *Image, scale, gamma float32) (*Image, error) {
	return internal.GammaCorrection(src, scale, gamma)
}

// GammaCorrectionInto writes clamp(round(scale * v^gamma)) per pixel into out.
func GammaCorrectionInto(src, out *Image, scale, gamma float32) error {
	return internal.GammaCorrectionInto(src, out, scale, gamma)
}
