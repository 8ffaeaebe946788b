//go:build linux

package cuda

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/born-ml/pixops/internal/device"
	"github.com/ebitengine/purego"
)

// Result is a CUDA driver API status code.
type Result int32

// Driver status codes this package inspects.
const (
	Success            Result = 0
	ErrorInvalidValue  Result = 1
	ErrorOutOfMemory   Result = 2
	ErrorNotInit       Result = 3
	ErrorNoDevice      Result = 100
	ErrorInvalidDevice Result = 101
	ErrorInvalidImage  Result = 200
	ErrorInvalidCtx    Result = 201
	ErrorInvalidPTX    Result = 218
	ErrorNotFound      Result = 500
	ErrorLaunchFailed  Result = 719
)

var resultNames = map[Result]string{
	ErrorInvalidValue:  "INVALID_VALUE",
	ErrorOutOfMemory:   "OUT_OF_MEMORY",
	ErrorNotInit:       "NOT_INITIALIZED",
	ErrorNoDevice:      "NO_DEVICE",
	ErrorInvalidDevice: "INVALID_DEVICE",
	ErrorInvalidImage:  "INVALID_IMAGE",
	ErrorInvalidCtx:    "INVALID_CONTEXT",
	ErrorInvalidPTX:    "INVALID_PTX",
	ErrorNotFound:      "NOT_FOUND",
	ErrorLaunchFailed:  "LAUNCH_FAILED",
}

// Error implements the error interface.
func (r Result) Error() string {
	if r == Success {
		return "CUDA_SUCCESS"
	}
	if name, ok := resultNames[r]; ok {
		return fmt.Sprintf("CUDA_ERROR_%s (%d)", name, int32(r))
	}
	return fmt.Sprintf("CUDA_ERROR(%d)", int32(r))
}

// Is lets an out-of-memory status match device.ErrOutOfMemory.
func (r Result) Is(target error) bool {
	return r == ErrorOutOfMemory && target == device.ErrOutOfMemory
}

// check converts a driver status into an error naming the failed call.
func check(call string, r Result) error {
	if r == Success {
		return nil
	}
	return fmt.Errorf("%s: %w", call, r)
}

var (
	driverOnce sync.Once
	driverErr  error

	cuInit          func(flags uint32) Result
	cuDeviceGet     func(dev *int32, ordinal int32) Result
	cuDeviceGetName func(name *byte, size int32, dev int32) Result

	cuCtxCreate      func(ctx *uintptr, flags uint32, dev int32) Result
	cuCtxSetCurrent  func(ctx uintptr) Result
	cuCtxDestroy     func(ctx uintptr) Result
	cuCtxSynchronize func() Result

	cuMemAlloc   func(dptr *uintptr, size uint64) Result
	cuMemFree    func(dptr uintptr) Result
	cuMemcpyHtoD func(dst uintptr, src unsafe.Pointer, size uint64) Result
	cuMemcpyDtoH func(dst unsafe.Pointer, src uintptr, size uint64) Result
	cuMemcpyDtoD func(dst, src uintptr, size uint64) Result

	cuModuleLoadData    func(module *uintptr, image unsafe.Pointer) Result
	cuModuleGetFunction func(fn *uintptr, module uintptr, name *byte) Result
	cuModuleUnload      func(module uintptr) Result
	cuLaunchKernel      func(
		fn uintptr,
		gridX, gridY, gridZ uint32,
		blockX, blockY, blockZ uint32,
		sharedMem uint32,
		stream uintptr,
		params unsafe.Pointer,
		extra unsafe.Pointer,
	) Result
)

// ErrNoDriver is returned when libcuda cannot be loaded.
var ErrNoDriver = errors.New("cuda: driver library not available")

// loadDriver opens libcuda and binds the driver entry points once.
func loadDriver() error {
	driverOnce.Do(func() {
		lib, err := dlopen("libcuda.so.1", "libcuda.so")
		if err != nil {
			driverErr = fmt.Errorf("%w: %v", ErrNoDriver, err)
			return
		}

		purego.RegisterLibFunc(&cuInit, lib, "cuInit")
		purego.RegisterLibFunc(&cuDeviceGet, lib, "cuDeviceGet")
		purego.RegisterLibFunc(&cuDeviceGetName, lib, "cuDeviceGetName")
		purego.RegisterLibFunc(&cuCtxCreate, lib, "cuCtxCreate_v2")
		purego.RegisterLibFunc(&cuCtxSetCurrent, lib, "cuCtxSetCurrent")
		purego.RegisterLibFunc(&cuCtxDestroy, lib, "cuCtxDestroy_v2")
		purego.RegisterLibFunc(&cuCtxSynchronize, lib, "cuCtxSynchronize")
		purego.RegisterLibFunc(&cuMemAlloc, lib, "cuMemAlloc_v2")
		purego.RegisterLibFunc(&cuMemFree, lib, "cuMemFree_v2")
		purego.RegisterLibFunc(&cuMemcpyHtoD, lib, "cuMemcpyHtoD_v2")
		purego.RegisterLibFunc(&cuMemcpyDtoH, lib, "cuMemcpyDtoH_v2")
		purego.RegisterLibFunc(&cuMemcpyDtoD, lib, "cuMemcpyDtoD_v2")
		purego.RegisterLibFunc(&cuModuleLoadData, lib, "cuModuleLoadData")
		purego.RegisterLibFunc(&cuModuleGetFunction, lib, "cuModuleGetFunction")
		purego.RegisterLibFunc(&cuModuleUnload, lib, "cuModuleUnload")
		purego.RegisterLibFunc(&cuLaunchKernel, lib, "cuLaunchKernel")

		driverErr = check("cuInit", cuInit(0))
	})
	return driverErr
}

// dlopen tries each library name in turn.
func dlopen(names ...string) (uintptr, error) {
	var errs []error
	for _, name := range names {
		lib, err := purego.Dlopen(name, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
		if err == nil {
			return lib, nil
		}
		errs = append(errs, err)
	}
	return 0, errors.Join(errs...)
}

// cstring returns s as a NUL-terminated byte slice.
func cstring(s string) []byte {
	return append([]byte(s), 0)
}

// gostring converts a NUL-terminated buffer.
func gostring(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
