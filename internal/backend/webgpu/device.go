//go:build windows

// Package webgpu runs the elementwise kernels as WGSL compute shaders.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/born-ml/pixops/internal/device"
	"github.com/born-ml/pixops/internal/logging"
	"github.com/go-webgpu/webgpu/wgpu"
)

// pixelSize is the device footprint of one 8-bit pixel.
const pixelSize = 4

const imageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// Option configures a Device during creation.
type Option func(*Device)

// WithLogger sets the logger for device diagnostics. Nil keeps the default
// silent logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		d.log = logging.OrNop(l)
	}
}

// allocation is one image buffer. size counts pixels.
type allocation struct {
	buffer *wgpu.Buffer
	size   int
}

// Device is a WebGPU device with its queue and compiled kernels.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     *wgpu.AdapterInfoGo

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	cacheMu   sync.RWMutex

	// Image allocations by handle. Handles are not addresses: WebGPU
	// buffers are opaque.
	mu     sync.Mutex
	allocs map[device.Ptr]*allocation
	next   device.Ptr
	closed bool

	pool *bufferPool
	log  *slog.Logger
}

// New creates a WebGPU device on the high-performance adapter.
// Returns an error if WebGPU is not available or initialization fails.
func New(opts ...Option) (d *Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("webgpu: failed to create instance: %w", err)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", err)
	}

	gpu, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", err)
	}

	queue := gpu.GetQueue()
	if queue == nil {
		gpu.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	d = &Device{
		instance:  instance,
		adapter:   adapter,
		device:    gpu,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		allocs:    make(map[device.Ptr]*allocation),
		next:      1,
		pool:      newBufferPool(gpu),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	// Adapter info only names the device; a failure is not fatal.
	if d.info, err = adapter.GetInfo(); err != nil {
		d.log.Warn("webgpu: adapter info unavailable", "error", err)
	}

	d.log.Info("webgpu: device opened", "name", d.Name())
	return d, nil
}

// IsAvailable checks if a WebGPU adapter can be obtained.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return false
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Name returns the adapter's device and vendor.
func (d *Device) Name() string {
	if d.info == nil || d.info.Device == "" {
		return "WebGPU device"
	}
	return fmt.Sprintf("WebGPU: %s (%s)", d.info.Device, d.info.Vendor)
}

// Alloc creates a zeroed image buffer for size pixels.
func (d *Device) Alloc(size int) (p device.Ptr, err error) {
	if size <= 0 {
		return device.Null, fmt.Errorf("webgpu: invalid allocation size %d", size)
	}
	defer recoverInto("alloc", &err)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.Null, device.ErrClosed
	}

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: imageUsage,
		Size:  uint64(size) * pixelSize,
	})
	if buffer == nil {
		return device.Null, fmt.Errorf("webgpu: %d pixels: %w", size, device.ErrOutOfMemory)
	}

	p = d.next
	d.next++
	d.allocs[p] = &allocation{buffer: buffer, size: size}
	d.log.Debug("webgpu: alloc", "handle", uintptr(p), "pixels", size)
	return p, nil
}

// Free releases an image buffer.
func (d *Device) Free(p device.Ptr) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrClosed
	}

	a, ok := d.allocs[p]
	if !ok {
		return fmt.Errorf("webgpu: free %d: %w", uintptr(p), device.ErrInvalidPtr)
	}
	delete(d.allocs, p)
	a.buffer.Release()
	return nil
}

// CopyToDevice widens src to one u32 per pixel and copies it into dst at
// pixel offset through a mapped staging buffer.
func (d *Device) CopyToDevice(dst device.Ptr, offset int, src []byte) (err error) {
	defer recoverInto("copy to device", &err)

	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := d.span(dst, offset, len(src))
	if err != nil || len(src) == 0 {
		return err
	}

	size := uint64(len(src)) * pixelSize
	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer staging.Release()

	mapped := unsafe.Slice((*uint32)(staging.GetMappedRange(0, size)), len(src))
	for i, v := range src {
		mapped[i] = uint32(v)
	}
	staging.Unmap()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(staging, 0, a.buffer, uint64(offset)*pixelSize, size)
	d.queue.Submit(encoder.Finish(nil))
	return nil
}

// CopyToHost narrows len(dst) pixels of src at offset into dst.
// Mapping the staging buffer waits for all submitted work.
func (d *Device) CopyToHost(dst []byte, src device.Ptr, offset int) (err error) {
	defer recoverInto("copy to host", &err)

	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := d.span(src, offset, len(dst))
	if err != nil || len(dst) == 0 {
		return err
	}

	size := uint64(len(dst)) * pixelSize
	const usage = wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	staging := d.pool.acquire(size, usage)
	defer d.pool.release(staging, size, usage)

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(a.buffer, uint64(offset)*pixelSize, staging, 0, size)
	d.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("webgpu: failed to map staging buffer: %w", err)
	}
	mapped := unsafe.Slice((*uint32)(staging.GetMappedRange(0, size)), len(dst))
	for i, v := range mapped {
		dst[i] = uint8(v)
	}
	staging.Unmap()
	return nil
}

// CopyDeviceToDevice copies size pixels from src to dst.
func (d *Device) CopyDeviceToDevice(dst, src device.Ptr, size int) (err error) {
	defer recoverInto("copy device to device", &err)

	d.mu.Lock()
	defer d.mu.Unlock()

	to, err := d.span(dst, 0, size)
	if err != nil {
		return err
	}
	from, err := d.span(src, 0, size)
	if err != nil || size == 0 {
		return err
	}

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(from.buffer, 0, to.buffer, 0, uint64(size)*pixelSize)
	d.queue.Submit(encoder.Finish(nil))
	return nil
}

// Synchronize waits for all submitted work.
func (d *Device) Synchronize() (err error) {
	defer recoverInto("synchronize", &err)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return device.ErrClosed
	}
	return d.fence()
}

// fence submits a 4-byte copy behind all queued work and waits for it to
// map. Caller must hold d.mu.
func (d *Device) fence() error {
	const usage = wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	src := d.pool.acquire(pixelSize, wgpu.BufferUsageCopySrc)
	defer d.pool.release(src, pixelSize, wgpu.BufferUsageCopySrc)
	staging := d.pool.acquire(pixelSize, usage)
	defer d.pool.release(staging, pixelSize, usage)

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, pixelSize)
	d.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, pixelSize); err != nil {
		return fmt.Errorf("webgpu: fence: %w", err)
	}
	staging.Unmap()
	return nil
}

// Close releases every image buffer, cached pipeline and the device.
// Further calls fail with device.ErrClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	if n := len(d.allocs); n > 0 {
		d.log.Warn("webgpu: closing with live allocations", "count", n)
	}
	for _, a := range d.allocs {
		a.buffer.Release()
	}
	clear(d.allocs)
	d.pool.clear()

	d.cacheMu.Lock()
	for _, p := range d.pipelines {
		p.Release()
	}
	for _, s := range d.shaders {
		s.Release()
	}
	clear(d.pipelines)
	clear(d.shaders)
	d.cacheMu.Unlock()

	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	return nil
}

// span looks up size pixels of allocation p starting at offset.
// Caller must hold d.mu.
func (d *Device) span(p device.Ptr, offset, size int) (*allocation, error) {
	if d.closed {
		return nil, device.ErrClosed
	}
	if p == device.Null {
		return nil, device.ErrNullPointer
	}
	a, ok := d.allocs[p]
	if !ok {
		return nil, fmt.Errorf("handle %d: %w", uintptr(p), device.ErrInvalidPtr)
	}
	if offset < 0 || size < 0 || offset+size > a.size {
		return nil, fmt.Errorf("[%d:%d] of %d pixels: %w", offset, offset+size, a.size, device.ErrOutOfBounds)
	}
	return a, nil
}

// recoverInto turns a panic from the bindings into an error.
func recoverInto(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("webgpu: %s: %v", op, r)
	}
}
