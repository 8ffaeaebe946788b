// Package gpuimage implements device-resident 8-bit grayscale images, the
// host/device transfer protocol and the elementwise pixel operations.
package gpuimage

import (
	"fmt"
	"math"
	"runtime"

	"github.com/born-ml/pixops/internal/device"
)

// Image is a grayscale image in device memory: width*height bytes, one
// byte per pixel, rows packed without padding.
//
// An Image is the sole owner of its device buffer. Release frees it; a
// handle that becomes unreachable without Release is freed by the garbage
// collector as a last resort. Images are not safe for concurrent writes.
type Image struct {
	rt      device.Runtime
	width   uint32
	height  uint32
	ptr     device.Ptr
	cleanup runtime.Cleanup
}

// New allocates a width x height image on rt.
// A zero dimension yields an empty image without touching the device.
func New(rt device.Runtime, width, height uint32) (*Image, error) {
	const op = "New"
	if rt == nil {
		return nil, errorf(op, ErrInvalidArgument, "nil runtime")
	}
	img := &Image{rt: rt, width: width, height: height}
	if img.Empty() {
		return img, nil
	}
	if uint64(width)*uint64(height) > math.MaxUint32 {
		return nil, errorf(op, ErrInvalidArgument, "%dx%d exceeds %d pixels", width, height, uint32(math.MaxUint32))
	}

	ptr, err := rt.Alloc(img.Len())
	if err != nil {
		return nil, newError(op, ErrAllocationFailure, err)
	}
	img.own(ptr)

	Logger().Debug("gpuimage: allocated", "width", width, "height", height, "device", rt.Name())
	return img, nil
}

// own takes ownership of ptr and arms the collector safety net.
func (img *Image) own(ptr device.Ptr) {
	img.ptr = ptr
	rt := img.rt
	img.cleanup = runtime.AddCleanup(img, func(p device.Ptr) { _ = rt.Free(p) }, ptr)
}

// disown forgets the buffer without freeing it.
func (img *Image) disown() {
	img.cleanup.Stop()
	img.ptr = device.Null
	img.width, img.height = 0, 0
}

// Width returns the image width in pixels.
func (img *Image) Width() uint32 { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() uint32 { return img.height }

// Len returns the number of pixels (and bytes) in the image.
func (img *Image) Len() int { return int(img.width) * int(img.height) }

// Ptr returns the device pointer of the pixel buffer, device.Null if empty.
func (img *Image) Ptr() device.Ptr { return img.ptr }

// Runtime returns the device runtime owning the buffer.
func (img *Image) Runtime() device.Runtime { return img.rt }

// Empty reports whether the image has no pixels.
func (img *Image) Empty() bool { return img.width == 0 || img.height == 0 }

// SameSize reports whether two images have identical dimensions.
func (img *Image) SameSize(other *Image) bool {
	return img.width == other.width && img.height == other.height
}

// Release frees the device buffer and leaves the image empty.
// Calling Release more than once is a no-op.
func (img *Image) Release() error {
	if img == nil || img.ptr == device.Null {
		return nil
	}
	ptr := img.ptr
	img.disown()
	if err := img.rt.Free(ptr); err != nil {
		Logger().Warn("gpuimage: failed to release device memory", "error", err)
		return newError("Release", ErrAllocationFailure, err)
	}
	return nil
}

// Clone returns a deep copy backed by a fresh device allocation.
func (img *Image) Clone() (*Image, error) {
	const op = "Clone"
	out, err := New(img.rt, img.width, img.height)
	if err != nil {
		return nil, err
	}
	if out.Empty() {
		return out, nil
	}
	err = img.rt.CopyDeviceToDevice(out.ptr, img.ptr, img.Len())
	runtime.KeepAlive(img)
	if err != nil {
		_ = out.Release()
		return nil, newError(op, ErrTransferFailure, err)
	}
	return out, nil
}

// Move transfers ownership of the buffer to a new handle and leaves img empty.
func (img *Image) Move() *Image {
	m := &Image{rt: img.rt, width: img.width, height: img.height}
	if img.ptr != device.Null {
		ptr := img.ptr
		img.disown()
		m.own(ptr)
	}
	img.width, img.height = 0, 0
	return m
}

// String implements fmt.Stringer.
func (img *Image) String() string {
	if img.Empty() {
		return fmt.Sprintf("Image(%dx%d, empty)", img.width, img.height)
	}
	return fmt.Sprintf("Image(%dx%d @ %#x)", img.width, img.height, uintptr(img.ptr))
}
