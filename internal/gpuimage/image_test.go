package gpuimage

import (
	"math"
	"testing"

	"github.com/born-ml/pixops/internal/backend/emu"
	"github.com/born-ml/pixops/internal/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d := newDevice(t)

	img, err := New(d, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), img.Width())
	assert.Equal(t, uint32(3), img.Height())
	assert.Equal(t, 12, img.Len())
	assert.False(t, img.Empty())
	assert.NotEqual(t, device.Null, img.Ptr())
	assert.Same(t, d, img.Runtime())
	assert.Equal(t, 12, d.Stats().LiveBytes, "no padding on the device")

	require.NoError(t, img.Release())
	assert.True(t, img.Empty())
	assert.Equal(t, device.Null, img.Ptr())
	assert.Equal(t, 0, d.Stats().Live)

	require.NoError(t, img.Release(), "release is idempotent")
	assert.Equal(t, 1, d.Stats().Frees, "device memory released exactly once")
}

func TestRelease_Failure(t *testing.T) {
	d := newDevice(t)
	img, err := New(d, 4, 3)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	err = img.Release()
	require.ErrorIs(t, err, ErrAllocationFailure)
	assert.ErrorIs(t, err, device.ErrInvalidPtr)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Release", e.Op)

	assert.True(t, img.Empty())
	assert.NoError(t, img.Release())
}

func TestNew_Empty(t *testing.T) {
	d := newDevice(t)

	for _, dims := range [][2]uint32{{0, 0}, {0, 5}, {5, 0}} {
		img, err := New(d, dims[0], dims[1])
		require.NoError(t, err)
		assert.True(t, img.Empty())
		assert.Equal(t, device.Null, img.Ptr())
		assert.NoError(t, img.Release())
	}
	assert.Equal(t, 0, d.Stats().Allocs)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	d := newDevice(t)
	_, err = New(d, math.MaxUint32, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	d = newDevice(t, emu.WithMemoryLimit(10))
	_, err = New(d, 4, 4)
	assert.ErrorIs(t, err, ErrAllocationFailure)
	assert.ErrorIs(t, err, device.ErrOutOfMemory, "runtime cause stays visible")

	var ie *Error
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "New", ie.Op)
}

func TestClone(t *testing.T) {
	d := newDevice(t)
	src := fromPixels(t, d, 3, 2, []byte{1, 2, 3, 4, 5, 6})

	cp, err := src.Clone()
	require.NoError(t, err)
	release(t, cp)

	assert.NotEqual(t, src.Ptr(), cp.Ptr(), "deep copy")
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, pixels(t, cp))

	require.NoError(t, InvertInto(src, src))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, pixels(t, cp), "clone is independent")
}

func TestClone_Empty(t *testing.T) {
	d := newDevice(t)
	img, err := New(d, 0, 3)
	require.NoError(t, err)

	cp, err := img.Clone()
	require.NoError(t, err)
	assert.True(t, cp.Empty())
}

func TestMove(t *testing.T) {
	d := newDevice(t)
	src := fromPixels(t, d, 2, 1, []byte{7, 8})
	ptr := src.Ptr()

	dst := release(t, src.Move())
	assert.True(t, src.Empty())
	assert.Equal(t, device.Null, src.Ptr())
	assert.Equal(t, ptr, dst.Ptr())
	assert.Equal(t, []byte{7, 8}, pixels(t, dst))

	require.NoError(t, src.Release())
	assert.Equal(t, 1, d.Stats().Live, "moved-from handle frees nothing")
	require.NoError(t, dst.Release())
	assert.Equal(t, 0, d.Stats().Live)
}

func TestString(t *testing.T) {
	d := newDevice(t)
	img, err := New(d, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, "Image(0x2, empty)", img.String())

	img, err = New(d, 2, 2)
	require.NoError(t, err)
	defer img.Release()
	assert.Contains(t, img.String(), "Image(2x2 @ 0x")
}
