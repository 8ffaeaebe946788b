//go:build linux

package cuda

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// ErrNoCompiler is returned when libnvrtc cannot be loaded.
var ErrNoCompiler = errors.New("cuda: nvrtc library not available")

var (
	nvrtcOnce sync.Once
	nvrtcErr  error

	nvrtcCreateProgram      func(prog *uintptr, src *byte, name *byte, numHeaders int32, headers, includeNames unsafe.Pointer) int32
	nvrtcCompileProgram     func(prog uintptr, numOptions int32, options unsafe.Pointer) int32
	nvrtcGetPTXSize         func(prog uintptr, size *uint64) int32
	nvrtcGetPTX             func(prog uintptr, ptx *byte) int32
	nvrtcGetProgramLogSize  func(prog uintptr, size *uint64) int32
	nvrtcGetProgramLog      func(prog uintptr, log *byte) int32
	nvrtcDestroyProgram     func(prog *uintptr) int32
	nvrtcGetErrorStringFunc func(result int32) string
)

func loadNVRTC() error {
	nvrtcOnce.Do(func() {
		lib, err := dlopen("libnvrtc.so", "libnvrtc.so.12", "libnvrtc.so.11.2")
		if err != nil {
			nvrtcErr = fmt.Errorf("%w: %v", ErrNoCompiler, err)
			return
		}
		purego.RegisterLibFunc(&nvrtcCreateProgram, lib, "nvrtcCreateProgram")
		purego.RegisterLibFunc(&nvrtcCompileProgram, lib, "nvrtcCompileProgram")
		purego.RegisterLibFunc(&nvrtcGetPTXSize, lib, "nvrtcGetPTXSize")
		purego.RegisterLibFunc(&nvrtcGetPTX, lib, "nvrtcGetPTX")
		purego.RegisterLibFunc(&nvrtcGetProgramLogSize, lib, "nvrtcGetProgramLogSize")
		purego.RegisterLibFunc(&nvrtcGetProgramLog, lib, "nvrtcGetProgramLog")
		purego.RegisterLibFunc(&nvrtcDestroyProgram, lib, "nvrtcDestroyProgram")
		purego.RegisterLibFunc(&nvrtcGetErrorStringFunc, lib, "nvrtcGetErrorString")
	})
	return nvrtcErr
}

func nvrtcCheck(call string, status int32) error {
	if status == 0 {
		return nil
	}
	return fmt.Errorf("%s: %s (%d)", call, nvrtcGetErrorStringFunc(status), status)
}

// compilePTX compiles CUDA C source to PTX for the given virtual architecture
// (e.g. "compute_52"). On a compile error the program log is included.
func compilePTX(src, name, arch string) ([]byte, error) {
	if err := loadNVRTC(); err != nil {
		return nil, err
	}

	csrc, cname := cstring(src), cstring(name)
	var prog uintptr
	if err := nvrtcCheck("nvrtcCreateProgram",
		nvrtcCreateProgram(&prog, &csrc[0], &cname[0], 0, nil, nil)); err != nil {
		return nil, err
	}
	defer nvrtcDestroyProgram(&prog)

	flags := [][]byte{cstring("--gpu-architecture=" + arch), cstring("--fmad=false")}
	opts := make([]*byte, len(flags))
	for i, f := range flags {
		opts[i] = &f[0]
	}
	if status := nvrtcCompileProgram(prog, int32(len(opts)), unsafe.Pointer(&opts[0])); status != 0 {
		err := nvrtcCheck("nvrtcCompileProgram", status)
		if log := programLog(prog); log != "" {
			err = fmt.Errorf("%w\n%s", err, log)
		}
		return nil, err
	}

	var size uint64
	if err := nvrtcCheck("nvrtcGetPTXSize", nvrtcGetPTXSize(prog, &size)); err != nil {
		return nil, err
	}
	ptx := make([]byte, size)
	if err := nvrtcCheck("nvrtcGetPTX", nvrtcGetPTX(prog, &ptx[0])); err != nil {
		return nil, err
	}
	return ptx, nil
}

func programLog(prog uintptr) string {
	var size uint64
	if nvrtcGetProgramLogSize(prog, &size) != 0 || size <= 1 {
		return ""
	}
	buf := make([]byte, size)
	if nvrtcGetProgramLog(prog, &buf[0]) != 0 {
		return ""
	}
	return strings.TrimSpace(gostring(buf))
}
