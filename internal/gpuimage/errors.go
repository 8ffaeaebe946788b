package gpuimage

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrEmptyImage          = errors.New("empty image")
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrAllocationFailure   = errors.New("device allocation failed")
	ErrKernelLaunchFailure = errors.New("kernel launch failed")
	ErrTransferFailure     = errors.New("host/device transfer failed")
)

// Error describes a failed operation.
type Error struct {
	Op   string // Operation that failed (e.g. "BitwiseAnd", "ConvertToDevice")
	Kind error  // One of the Err* failure kinds
	Err  error  // Underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpuimage: %s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gpuimage: %s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func errorf(op string, kind error, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}
