// Package emu implements an emulated compute device in pure Go.
//
// Device memory is a set of Go byte slices addressed by opaque pointers, and
// kernel grids execute on goroutines: groups run concurrently, threads of a
// group run in barrier-separated phases. The emulated device follows the
// same launch contract as the GPU runtimes (bounds-checked global index,
// group-shared tables published by a barrier), so it doubles as the
// reference runtime for tests and for hosts without a GPU.
package emu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/born-ml/pixops/internal/device"
	"github.com/born-ml/pixops/internal/kernel"
	"github.com/born-ml/pixops/internal/launch"
	"github.com/born-ml/pixops/internal/parallel"
)

// Injected failure errors.
var (
	ErrInjectedAlloc  = errors.New("emu: injected allocation failure")
	ErrInjectedLaunch = errors.New("emu: injected launch fault")
	ErrInjectedCopy   = errors.New("emu: injected copy failure")
)

// allocAlign keeps allocations apart in the pointer space so an offset past
// the end of one allocation never lands in the next.
const allocAlign = 256

// Device is an emulated compute device. It is safe for concurrent use.
type Device struct {
	log   *slog.Logger
	grid  parallel.Config
	limit int

	mu     sync.Mutex
	allocs map[device.Ptr][]byte
	next   device.Ptr
	faults Faults
	closed bool
	stats  Stats
}

// Stats counts device activity since creation.
type Stats struct {
	Allocs    int // successful allocations
	Frees     int // successful frees
	Live      int // allocations not yet freed
	LiveBytes int // bytes held by live allocations
	PeakBytes int // high-water mark of LiveBytes
	Launches  int // kernel launches accepted for execution
	Copies    int // host<->device copies attempted
}

// Compile-time check that Device implements device.Runtime.
var _ device.Runtime = (*Device)(nil)

// New creates an emulated device.
func New(opts ...Option) *Device {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Device{
		log:    o.logger,
		grid:   o.grid,
		limit:  o.memoryLimit,
		allocs: make(map[device.Ptr][]byte),
		next:   allocAlign,
		faults: o.faults,
	}
	d.log.Info("emu: device created", "workers", d.grid.NumWorkers, "memory_limit", d.limit)
	return d
}

// Name returns the device name.
func (d *Device) Name() string {
	return fmt.Sprintf("Emulated device (%d workers)", max(d.grid.NumWorkers, 1))
}

// SetFaults replaces the injected failures and restarts the copy counter.
func (d *Device) SetFaults(f Faults) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faults = f
	d.stats.Copies = 0
}

// Stats returns a snapshot of device activity.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Alloc reserves size bytes of zeroed device memory.
func (d *Device) Alloc(size int) (device.Ptr, error) {
	if size <= 0 {
		return device.Null, fmt.Errorf("emu: invalid allocation size %d", size)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return device.Null, device.ErrClosed
	}
	if d.faults.FailAlloc {
		return device.Null, ErrInjectedAlloc
	}
	if d.limit > 0 && d.stats.LiveBytes+size > d.limit {
		return device.Null, fmt.Errorf("emu: %d bytes requested, %d of %d in use: %w",
			size, d.stats.LiveBytes, d.limit, device.ErrOutOfMemory)
	}

	p := d.next
	d.next += device.Ptr((size + allocAlign - 1) / allocAlign * allocAlign)
	d.allocs[p] = make([]byte, size)

	d.stats.Allocs++
	d.stats.Live++
	d.stats.LiveBytes += size
	d.stats.PeakBytes = max(d.stats.PeakBytes, d.stats.LiveBytes)

	d.log.Debug("emu: alloc", "ptr", fmt.Sprintf("%#x", uintptr(p)), "bytes", size)
	return p, nil
}

// Free releases an allocation.
func (d *Device) Free(p device.Ptr) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p == device.Null {
		return device.ErrNullPointer
	}
	buf, ok := d.allocs[p]
	if !ok {
		return fmt.Errorf("emu: free %#x: %w", uintptr(p), device.ErrInvalidPtr)
	}
	delete(d.allocs, p)

	d.stats.Frees++
	d.stats.Live--
	d.stats.LiveBytes -= len(buf)
	return nil
}

// CopyToDevice copies src into allocation dst at offset.
func (d *Device) CopyToDevice(dst device.Ptr, offset int, src []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.copyFault(); err != nil {
		return err
	}
	buf, err := d.span(dst, offset, len(src))
	if err != nil {
		return err
	}
	copy(buf, src)
	return nil
}

// CopyToHost fills dst from allocation src at offset.
func (d *Device) CopyToHost(dst []byte, src device.Ptr, offset int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.copyFault(); err != nil {
		return err
	}
	buf, err := d.span(src, offset, len(dst))
	if err != nil {
		return err
	}
	copy(dst, buf)
	return nil
}

// CopyDeviceToDevice copies size bytes from src to dst.
func (d *Device) CopyDeviceToDevice(dst, src device.Ptr, size int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return device.ErrClosed
	}
	to, err := d.span(dst, 0, size)
	if err != nil {
		return err
	}
	from, err := d.span(src, 0, size)
	if err != nil {
		return err
	}
	copy(to, from)
	return nil
}

// Launch executes kernel k over the grid cfg and returns when the grid has
// finished. A panic inside a group is reported as a launch fault.
func (d *Device) Launch(k kernel.Kind, cfg launch.Config, args device.Args) error {
	if err := device.CheckLaunch(k, cfg, args); err != nil {
		return err
	}
	run, ok := kernels[k]
	if !ok {
		return fmt.Errorf("emu: %w: %v", device.ErrUnknownKernel, k)
	}

	op, err := d.resolve(k, args)
	if err != nil {
		return err
	}

	d.log.Debug("emu: launch", "kernel", k, "config", cfg, "n", args.N)

	return parallel.For(int(cfg.BlocksPerGrid), func(block int) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("emu: %v: fault in block %d: %v", k, block, r)
			}
		}()
		run(&Group{Index: uint32(block), Size: cfg.ThreadsPerBlock}, op)
		return nil
	}, d.grid)
}

// Synchronize is a no-op: launches and copies complete before returning.
func (d *Device) Synchronize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrClosed
	}
	return nil
}

// Close releases all device memory. Further calls fail with device.ErrClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	if n := len(d.allocs); n > 0 {
		d.log.Warn("emu: closing with live allocations", "count", n, "bytes", d.stats.LiveBytes)
	}
	d.allocs = nil
	d.closed = true
	return nil
}

// resolve maps the launch arguments onto device memory under the lock and
// counts the launch. Buffers must hold at least N bytes.
func (d *Device) resolve(k kernel.Kind, args device.Args) (*operands, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, device.ErrClosed
	}
	if d.faults.FailLaunch {
		return nil, ErrInjectedLaunch
	}

	n := int(args.N)
	op := &operands{n: args.N, scale: args.Scale, gamma: args.Gamma}
	var err error
	if op.src1, err = d.span(args.Src1, 0, n); err != nil {
		return nil, fmt.Errorf("emu: %v: src1: %w", k, err)
	}
	if k.Arity() == 2 {
		if op.src2, err = d.span(args.Src2, 0, n); err != nil {
			return nil, fmt.Errorf("emu: %v: src2: %w", k, err)
		}
	}
	if op.dst, err = d.span(args.Dst, 0, n); err != nil {
		return nil, fmt.Errorf("emu: %v: dst: %w", k, err)
	}

	d.stats.Launches++
	return op, nil
}

// span returns the size bytes of allocation p starting at offset.
// Caller must hold d.mu.
func (d *Device) span(p device.Ptr, offset, size int) ([]byte, error) {
	if d.closed {
		return nil, device.ErrClosed
	}
	if p == device.Null {
		return nil, device.ErrNullPointer
	}
	buf, ok := d.allocs[p]
	if !ok {
		return nil, fmt.Errorf("%#x: %w", uintptr(p), device.ErrInvalidPtr)
	}
	if offset < 0 || size < 0 || offset+size > len(buf) {
		return nil, fmt.Errorf("[%d:%d] of %d bytes: %w", offset, offset+size, len(buf), device.ErrOutOfBounds)
	}
	return buf[offset : offset+size], nil
}

// copyFault counts a host<->device copy and reports an injected failure.
// Caller must hold d.mu.
func (d *Device) copyFault() error {
	if d.closed {
		return device.ErrClosed
	}
	d.stats.Copies++
	if d.faults.FailCopy > 0 && d.stats.Copies == d.faults.FailCopy {
		return ErrInjectedCopy
	}
	return nil
}
