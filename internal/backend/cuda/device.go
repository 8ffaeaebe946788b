//go:build linux

// Package cuda runs the elementwise kernels on an NVIDIA GPU. Kernels are
// compiled from CUDA C with NVRTC when the device is opened and launched
// through the driver API. Both libraries are loaded at runtime with purego,
// so no cgo or CUDA toolkit is needed at build time.
package cuda

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/born-ml/pixops/internal/device"
	"github.com/born-ml/pixops/internal/kernel"
	"github.com/born-ml/pixops/internal/launch"
)

// Device is a CUDA context on one GPU with the kernel module loaded.
// It is safe for concurrent use; calls are serialized on the context.
type Device struct {
	mu      sync.Mutex
	name    string
	ordinal int
	ctx     uintptr
	module  uintptr
	funcs   map[kernel.Kind]uintptr
	sizes   map[device.Ptr]int
	log     *slog.Logger
	closed  bool
}

// IsAvailable reports whether the CUDA driver, NVRTC and at least one
// device are present.
func IsAvailable() bool {
	if loadDriver() != nil || loadNVRTC() != nil {
		return false
	}
	var dev int32
	return cuDeviceGet(&dev, 0) == Success
}

// New opens the selected device, creates a context on it and compiles the
// kernel module.
func New(opts ...Option) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := loadDriver(); err != nil {
		return nil, err
	}

	var dev int32
	if err := check("cuDeviceGet", cuDeviceGet(&dev, int32(o.ordinal))); err != nil {
		return nil, fmt.Errorf("cuda: device %d: %w", o.ordinal, err)
	}
	nameBuf := make([]byte, 256)
	if err := check("cuDeviceGetName", cuDeviceGetName(&nameBuf[0], int32(len(nameBuf)), dev)); err != nil {
		return nil, fmt.Errorf("cuda: device %d: %w", o.ordinal, err)
	}

	d := &Device{
		name:    gostring(nameBuf),
		ordinal: o.ordinal,
		funcs:   make(map[kernel.Kind]uintptr, len(kernel.Kinds)),
		sizes:   make(map[device.Ptr]int),
		log:     o.logger,
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := check("cuCtxCreate", cuCtxCreate(&d.ctx, 0, dev)); err != nil {
		return nil, fmt.Errorf("cuda: %w", err)
	}
	if err := d.loadModule(o.arch); err != nil {
		cuCtxDestroy(d.ctx)
		return nil, err
	}

	d.log.Info("cuda: device opened", "ordinal", d.ordinal, "name", d.name, "arch", o.arch)
	return d, nil
}

// loadModule compiles kernelSource and resolves every kernel entry point.
// The context must be current.
func (d *Device) loadModule(arch string) error {
	src, err := kernelSource()
	if err != nil {
		return err
	}
	ptx, err := compilePTX(src, "pixops.cu", arch)
	if err != nil {
		return fmt.Errorf("cuda: compile kernels: %w", err)
	}
	d.log.Debug("cuda: kernels compiled", "arch", arch, "ptx_bytes", len(ptx))

	if err := check("cuModuleLoadData", cuModuleLoadData(&d.module, unsafe.Pointer(&ptx[0]))); err != nil {
		return fmt.Errorf("cuda: %w", err)
	}
	for _, k := range kernel.Kinds {
		name := cstring(entryPoint(k))
		var fn uintptr
		if err := check("cuModuleGetFunction", cuModuleGetFunction(&fn, d.module, &name[0])); err != nil {
			cuModuleUnload(d.module)
			return fmt.Errorf("cuda: kernel %v: %w", k, err)
		}
		d.funcs[k] = fn
	}
	return nil
}

// enter locks d and makes its context current on the calling OS thread.
// The returned func undoes both.
func (d *Device) enter() (func(), error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, device.ErrClosed
	}
	runtime.LockOSThread()
	if err := check("cuCtxSetCurrent", cuCtxSetCurrent(d.ctx)); err != nil {
		runtime.UnlockOSThread()
		d.mu.Unlock()
		return nil, fmt.Errorf("cuda: %w", err)
	}
	return func() {
		runtime.UnlockOSThread()
		d.mu.Unlock()
	}, nil
}

// Name returns the GPU's product name and ordinal.
func (d *Device) Name() string {
	return fmt.Sprintf("CUDA device %d: %s", d.ordinal, d.name)
}

// Alloc reserves size bytes of device memory.
func (d *Device) Alloc(size int) (device.Ptr, error) {
	if size <= 0 {
		return device.Null, fmt.Errorf("cuda: invalid allocation size %d", size)
	}
	leave, err := d.enter()
	if err != nil {
		return device.Null, err
	}
	defer leave()

	var p uintptr
	if err := check("cuMemAlloc", cuMemAlloc(&p, uint64(size))); err != nil {
		return device.Null, fmt.Errorf("cuda: %d bytes: %w", size, err)
	}
	d.sizes[device.Ptr(p)] = size
	d.log.Debug("cuda: alloc", "ptr", fmt.Sprintf("%#x", p), "bytes", size)
	return device.Ptr(p), nil
}

// Free releases an allocation.
func (d *Device) Free(p device.Ptr) error {
	leave, err := d.enter()
	if err != nil {
		return err
	}
	defer leave()

	if _, ok := d.sizes[p]; !ok {
		return fmt.Errorf("cuda: free %#x: %w", uintptr(p), device.ErrInvalidPtr)
	}
	delete(d.sizes, p)
	return check("cuMemFree", cuMemFree(uintptr(p)))
}

// CopyToDevice copies src into allocation dst at offset.
func (d *Device) CopyToDevice(dst device.Ptr, offset int, src []byte) error {
	leave, err := d.enter()
	if err != nil {
		return err
	}
	defer leave()

	addr, err := d.span(dst, offset, len(src))
	if err != nil || len(src) == 0 {
		return err
	}
	return check("cuMemcpyHtoD", cuMemcpyHtoD(addr, unsafe.Pointer(&src[0]), uint64(len(src))))
}

// CopyToHost fills dst from allocation src at offset. It waits for
// preceding kernels on the context.
func (d *Device) CopyToHost(dst []byte, src device.Ptr, offset int) error {
	leave, err := d.enter()
	if err != nil {
		return err
	}
	defer leave()

	addr, err := d.span(src, offset, len(dst))
	if err != nil || len(dst) == 0 {
		return err
	}
	return check("cuMemcpyDtoH", cuMemcpyDtoH(unsafe.Pointer(&dst[0]), addr, uint64(len(dst))))
}

// CopyDeviceToDevice copies size bytes from src to dst.
func (d *Device) CopyDeviceToDevice(dst, src device.Ptr, size int) error {
	leave, err := d.enter()
	if err != nil {
		return err
	}
	defer leave()

	to, err := d.span(dst, 0, size)
	if err != nil {
		return err
	}
	from, err := d.span(src, 0, size)
	if err != nil {
		return err
	}
	return check("cuMemcpyDtoD", cuMemcpyDtoD(to, from, uint64(size)))
}

// Launch runs kernel k over cfg and waits for it, so faults inside the
// kernel surface here rather than on a later call.
func (d *Device) Launch(k kernel.Kind, cfg launch.Config, args device.Args) error {
	if err := device.CheckLaunch(k, cfg, args); err != nil {
		return err
	}
	leave, err := d.enter()
	if err != nil {
		return err
	}
	defer leave()

	fn, ok := d.funcs[k]
	if !ok {
		return fmt.Errorf("cuda: %w: %v", device.ErrUnknownKernel, k)
	}
	n := int(args.N)
	if _, err := d.span(args.Src1, 0, n); err != nil {
		return fmt.Errorf("cuda: %v: src1: %w", k, err)
	}
	if k.Arity() == 2 {
		if _, err := d.span(args.Src2, 0, n); err != nil {
			return fmt.Errorf("cuda: %v: src2: %w", k, err)
		}
	} else {
		args.Src2 = device.Null
	}
	if _, err := d.span(args.Dst, 0, n); err != nil {
		return fmt.Errorf("cuda: %v: dst: %w", k, err)
	}

	src1, src2, dst := uintptr(args.Src1), uintptr(args.Src2), uintptr(args.Dst)
	count, scale, gamma := args.N, args.Scale, args.Gamma
	params := []unsafe.Pointer{
		unsafe.Pointer(&src1),
		unsafe.Pointer(&src2),
		unsafe.Pointer(&dst),
		unsafe.Pointer(&count),
		unsafe.Pointer(&scale),
		unsafe.Pointer(&gamma),
	}

	d.log.Debug("cuda: launch", "kernel", k, "config", cfg, "n", args.N)
	r := cuLaunchKernel(fn,
		cfg.BlocksPerGrid, 1, 1,
		cfg.ThreadsPerBlock, 1, 1,
		0, 0,
		unsafe.Pointer(&params[0]), nil)
	if err := check("cuLaunchKernel", r); err != nil {
		return fmt.Errorf("cuda: %v %v: %w", k, cfg, err)
	}
	if err := check("cuCtxSynchronize", cuCtxSynchronize()); err != nil {
		return fmt.Errorf("cuda: %v %v: %w", k, cfg, err)
	}
	return nil
}

// Synchronize waits for all work on the context.
func (d *Device) Synchronize() error {
	leave, err := d.enter()
	if err != nil {
		return err
	}
	defer leave()
	return check("cuCtxSynchronize", cuCtxSynchronize())
}

// Close frees remaining allocations, unloads the kernels and destroys the
// context. Further calls fail with device.ErrClosed.
func (d *Device) Close() error {
	leave, err := d.enter()
	if errors.Is(err, device.ErrClosed) {
		return nil
	}
	if err != nil {
		return err
	}
	defer leave()

	if n := len(d.sizes); n > 0 {
		d.log.Warn("cuda: closing with live allocations", "count", n)
		for p := range d.sizes {
			cuMemFree(uintptr(p))
		}
		clear(d.sizes)
	}
	cuModuleUnload(d.module)
	d.closed = true
	return check("cuCtxDestroy", cuCtxDestroy(d.ctx))
}

// span returns the device address of size bytes of allocation p at offset.
// Caller must hold d.mu.
func (d *Device) span(p device.Ptr, offset, size int) (uintptr, error) {
	if p == device.Null {
		return 0, device.ErrNullPointer
	}
	n, ok := d.sizes[p]
	if !ok {
		return 0, fmt.Errorf("%#x: %w", uintptr(p), device.ErrInvalidPtr)
	}
	if offset < 0 || size < 0 || offset+size > n {
		return 0, fmt.Errorf("[%d:%d] of %d bytes: %w", offset, offset+size, n, device.ErrOutOfBounds)
	}
	return uintptr(p) + uintptr(offset), nil
}
