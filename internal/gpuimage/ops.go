package gpuimage

import (
	"runtime"

	"github.com/born-ml/pixops/internal/device"
	"github.com/born-ml/pixops/internal/kernel"
	"github.com/born-ml/pixops/internal/launch"
)

// run launches kernel k writing out. Participants must already be validated.
func run(op string, k kernel.Kind, out *Image, args device.Args) error {
	args.Dst = out.ptr
	args.N = uint32(out.Len())
	cfg := launch.Configure(args.N)

	Logger().Debug("gpuimage: launch", "op", op, "kernel", k, "config", cfg, "n", args.N)
	if err := out.rt.Launch(k, cfg, args); err != nil {
		return newError(op, ErrKernelLaunchFailure, err)
	}
	return nil
}

// binaryInto validates a, b and out, then computes out = k(a, b).
func binaryInto(op string, k kernel.Kind, a, b, out *Image) error {
	if err := validate(op, a, b, out); err != nil {
		return err
	}
	err := run(op, k, out, device.Args{Src1: a.ptr, Src2: b.ptr})
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
	runtime.KeepAlive(out)
	return err
}

// unaryInto validates src and out, then computes out = k(src).
func unaryInto(op string, k kernel.Kind, src, out *Image, scale, gamma float32) error {
	if err := validate(op, src, out); err != nil {
		return err
	}
	err := run(op, k, out, device.Args{Src1: src.ptr, Scale: scale, Gamma: gamma})
	runtime.KeepAlive(src)
	runtime.KeepAlive(out)
	return err
}

// allocate validates the inputs, then allocates a same-sized output on
// their runtime and fills it with into. The output is released on failure.
func allocate(op string, into func(out *Image) error, inputs ...*Image) (*Image, error) {
	if err := validate(op, inputs...); err != nil {
		return nil, err
	}
	first := inputs[0]
	out, err := New(first.rt, first.width, first.height)
	if err != nil {
		return nil, err
	}
	if err := into(out); err != nil {
		_ = out.Release()
		return nil, err
	}
	return out, nil
}

// AbsoluteDifference returns |a-b| per pixel in a new image.
func AbsoluteDifference(a, b *Image) (*Image, error) {
	return allocate("AbsoluteDifference", func(out *Image) error {
		return AbsoluteDifferenceInto(a, b, out)
	}, a, b)
}

// AbsoluteDifferenceInto writes |a-b| per pixel into out.
func AbsoluteDifferenceInto(a, b, out *Image) error {
	return binaryInto("AbsoluteDifference", kernel.AbsoluteDifference, a, b, out)
}

// BitwiseAnd returns a&b per pixel in a new image.
func BitwiseAnd(a, b *Image) (*Image, error) {
	return allocate("BitwiseAnd", func(out *Image) error {
		return BitwiseAndInto(a, b, out)
	}, a, b)
}

// BitwiseAndInto writes a&b per pixel into out.
func BitwiseAndInto(a, b, out *Image) error {
	return binaryInto("BitwiseAnd", kernel.BitwiseAnd, a, b, out)
}

// BitwiseOr returns a|b per pixel in a new image.
func BitwiseOr(a, b *Image) (*Image, error) {
	return allocate("BitwiseOr", func(out *Image) error {
		return BitwiseOrInto(a, b, out)
	}, a, b)
}

// BitwiseOrInto writes a|b per pixel into out.
func BitwiseOrInto(a, b, out *Image) error {
	return binaryInto("BitwiseOr", kernel.BitwiseOr, a, b, out)
}

// BitwiseXor returns a^b per pixel in a new image.
func BitwiseXor(a, b *Image) (*Image, error) {
	return allocate("BitwiseXor", func(out *Image) error {
		return BitwiseXorInto(a, b, out)
	}, a, b)
}

// BitwiseXorInto writes a^b per pixel into out.
func BitwiseXorInto(a, b, out *Image) error {
	return binaryInto("BitwiseXor", kernel.BitwiseXor, a, b, out)
}

// Maximum returns max(a,b) per pixel in a new image.
func Maximum(a, b *Image) (*Image, error) {
	return allocate("Maximum", func(out *Image) error {
		return MaximumInto(a, b, out)
	}, a, b)
}

// MaximumInto writes max(a,b) per pixel into out.
func MaximumInto(a, b, out *Image) error {
	return binaryInto("Maximum", kernel.Maximum, a, b, out)
}

// Minimum returns min(a,b) per pixel in a new image.
func Minimum(a, b *Image) (*Image, error) {
	return allocate("Minimum", func(out *Image) error {
		return MinimumInto(a, b, out)
	}, a, b)
}

// MinimumInto writes min(a,b) per pixel into out.
func MinimumInto(a, b, out *Image) error {
	return binaryInto("Minimum", kernel.Minimum, a, b, out)
}

// Subtract returns a-b per pixel in a new image, saturating at zero.
func Subtract(a, b *Image) (*Image, error) {
	return allocate("Subtract", func(out *Image) error {
		return SubtractInto(a, b, out)
	}, a, b)
}

// SubtractInto writes a-b per pixel into out, saturating at zero.
func SubtractInto(a, b, out *Image) error {
	return binaryInto("Subtract", kernel.Subtract, a, b, out)
}

// Invert returns the bitwise complement of src in a new image.
func Invert(src *Image) (*Image, error) {
	return allocate("Invert", func(out *Image) error {
		return InvertInto(src, out)
	}, src)
}

// InvertInto writes the bitwise complement of src into out.
func InvertInto(src, out *Image) error {
	return unaryInto("Invert", kernel.Invert, src, out, 0, 0)
}

// GammaCorrection returns clamp(round(scale * src^gamma), 0, 255) per pixel
// in a new image. scale and gamma must be finite and non-negative.
func GammaCorrection(src *Image, scale, gamma float32) (*Image, error) {
	const op = "GammaCorrection"
	if err := checkGamma(op, scale, gamma); err != nil {
		return nil, err
	}
	return allocate(op, func(out *Image) error {
		return GammaCorrectionInto(src, out, scale, gamma)
	}, src)
}

// GammaCorrectionInto writes clamp(round(scale * src^gamma), 0, 255) per
// pixel into out.
func GammaCorrectionInto(src, out *Image, scale, gamma float32) error {
	const op = "GammaCorrection"
	if err := checkGamma(op, scale, gamma); err != nil {
		return err
	}
	return unaryInto(op, kernel.GammaCorrection, src, out, scale, gamma)
}

func checkGamma(op string, scale, gamma float32) error {
	if !kernel.ValidGamma(scale, gamma) {
		return errorf(op, ErrInvalidArgument, "scale %g and gamma %g must be finite and >= 0", scale, gamma)
	}
	return nil
}
