// Package kernel defines the elementwise pixel kernels: their identities,
// arity and per-pixel semantics on unsigned 8-bit samples.
//
// Device runtimes carry their own rendition of each kernel (Go closures on
// the emulated device, CUDA C, WGSL). The functions here are the reference
// every rendition must agree with.
package kernel

import "fmt"

// Kind identifies an elementwise kernel.
type Kind uint8

// Kernel kinds.
const (
	AbsoluteDifference Kind = iota
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	Invert
	Maximum
	Minimum
	Subtract
	GammaCorrection
)

// Kinds lists every kernel in declaration order.
var Kinds = []Kind{
	AbsoluteDifference,
	BitwiseAnd,
	BitwiseOr,
	BitwiseXor,
	Invert,
	Maximum,
	Minimum,
	Subtract,
	GammaCorrection,
}

var kindNames = [...]string{
	AbsoluteDifference: "absolute_difference",
	BitwiseAnd:         "bitwise_and",
	BitwiseOr:          "bitwise_or",
	BitwiseXor:         "bitwise_xor",
	Invert:             "invert",
	Maximum:            "maximum",
	Minimum:            "minimum",
	Subtract:           "subtract",
	GammaCorrection:    "gamma_correction",
}

// String returns the kernel's entry-point name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kernel(%d)", uint8(k))
}

// Valid reports whether k names a known kernel.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Arity returns the number of input buffers the kernel reads.
func (k Kind) Arity() int {
	switch k {
	case Invert, GammaCorrection:
		return 1
	default:
		return 2
	}
}

// Apply computes one output sample of a non-table kernel.
// b is ignored by unary kernels. GammaCorrection is table driven, see GammaTable.
func Apply(k Kind, a, b uint8) uint8 {
	switch k {
	case AbsoluteDifference:
		if a > b {
			return a - b
		}
		return b - a
	case BitwiseAnd:
		return a & b
	case BitwiseOr:
		return a | b
	case BitwiseXor:
		return a ^ b
	case Invert:
		return ^a
	case Maximum:
		return max(a, b)
	case Minimum:
		return min(a, b)
	case Subtract:
		if a > b {
			return a - b
		}
		return 0
	default:
		panic(fmt.Sprintf("kernel: Apply: %v is not a pointwise kernel", k))
	}
}
