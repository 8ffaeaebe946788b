// Package device defines the contract between device-resident images and the
// runtimes that own device memory and execute kernels.
package device

import (
	"errors"
	"fmt"

	"github.com/born-ml/pixops/internal/kernel"
	"github.com/born-ml/pixops/internal/launch"
)

// Ptr is an opaque device address. Zero is the null pointer.
// Offsets into an allocation are passed separately because not every runtime
// exposes byte-addressable device memory.
type Ptr uintptr

// Null is the null device pointer.
const Null Ptr = 0

// Args is the argument block of one kernel launch.
// Src2 is ignored by unary kernels; Scale and Gamma only by GammaCorrection.
type Args struct {
	Src1, Src2, Dst Ptr
	N               uint32
	Scale, Gamma    float32
}

// Runtime owns device memory and executes kernels on it.
//
// Copies are synchronous: CopyToHost returns after all previously launched
// work touching src has completed. Launch returns once the launch has been
// accepted; a non-nil error means the launch itself faulted.
type Runtime interface {
	// Name returns a human-readable device name.
	Name() string

	// Alloc reserves size bytes of device memory.
	Alloc(size int) (Ptr, error)

	// Free releases an allocation returned by Alloc.
	Free(p Ptr) error

	// CopyToDevice copies src into the allocation dst starting at byte offset.
	CopyToDevice(dst Ptr, offset int, src []byte) error

	// CopyToHost fills dst from the allocation src starting at byte offset.
	CopyToHost(dst []byte, src Ptr, offset int) error

	// CopyDeviceToDevice copies size bytes between two allocations.
	CopyDeviceToDevice(dst, src Ptr, size int) error

	// Launch runs kernel k over the grid cfg.
	Launch(k kernel.Kind, cfg launch.Config, args Args) error

	// Synchronize blocks until all issued work has completed.
	Synchronize() error

	// Close releases the runtime. Outstanding allocations become invalid.
	Close() error
}

// Common runtime errors.
var (
	ErrNullPointer   = errors.New("null device pointer")
	ErrInvalidPtr    = errors.New("unknown device allocation")
	ErrOutOfBounds   = errors.New("access beyond device allocation")
	ErrOutOfMemory   = errors.New("device out of memory")
	ErrClosed        = errors.New("device runtime closed")
	ErrUnknownKernel = errors.New("unknown kernel")
)

// CheckLaunch validates a launch request against the kernel's contract:
// known kernel, grid covering N, and non-null buffers for every operand.
func CheckLaunch(k kernel.Kind, cfg launch.Config, args Args) error {
	if !k.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownKernel, k)
	}
	if cfg.ThreadsPerBlock == 0 || cfg.BlocksPerGrid == 0 {
		return fmt.Errorf("%v: empty grid %v", k, cfg)
	}
	if cfg.ThreadsPerBlock > launch.MaxThreadsPerBlock {
		return fmt.Errorf("%v: %d threads per block exceeds %d", k, cfg.ThreadsPerBlock, launch.MaxThreadsPerBlock)
	}
	if !cfg.Covers(args.N) {
		return fmt.Errorf("%v: grid %v does not cover %d elements", k, cfg, args.N)
	}
	if args.Src1 == Null || args.Dst == Null || (k.Arity() == 2 && args.Src2 == Null) {
		return fmt.Errorf("%v: %w", k, ErrNullPointer)
	}
	return nil
}
