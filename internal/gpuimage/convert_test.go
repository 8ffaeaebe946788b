package gpuimage

import (
	"math/rand"
	"testing"

	"github.com/born-ml/pixops/internal/backend/emu"
	"github.com/born-ml/pixops/internal/hostimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	tests := []struct {
		name                   string
		width, height, rowSize uint32
	}{
		{"unpadded", 17, 9, 17},
		{"padded", 17, 9, 32},
		{"single row", 300, 1, 320},
		{"single column", 1, 40, 4},
		{"single pixel", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDevice(t)

			src := hostimage.NewPadded(tt.width, tt.height, tt.rowSize)
			r.Read(src.Data())

			img, err := Upload(d, src)
			require.NoError(t, err)
			defer img.Release()
			assert.Equal(t, int(tt.width*tt.height), d.Stats().LiveBytes)

			dst := hostimage.NewPadded(tt.width, tt.height, tt.rowSize+3)
			require.NoError(t, ConvertToHost(img, dst))
			assert.Equal(t, src.Pixels(), dst.Pixels())

			back, err := Download(img)
			require.NoError(t, err)
			assert.Equal(t, src.Pixels(), back.Pixels())
		})
	}
}

func TestConvertToHost_KeepsPadding(t *testing.T) {
	d := newDevice(t)
	img := fromPixels(t, d, 2, 2, []byte{1, 2, 3, 4})

	dst := hostimage.NewPadded(2, 2, 3)
	for i := range dst.Data() {
		dst.Data()[i] = 0xEE
	}
	require.NoError(t, ConvertToHost(img, dst))
	assert.Equal(t, []byte{1, 2, 0xEE, 3, 4, 0xEE}, dst.Data())
}

func TestConvert_Validation(t *testing.T) {
	d := newDevice(t)
	img, err := New(d, 4, 2)
	require.NoError(t, err)
	defer img.Release()

	err = ConvertToDevice(hostimage.New(4, 3), img)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	err = ConvertToHost(img, hostimage.New(5, 2))
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	err = ConvertToDevice(hostimage.New(0, 2), img)
	assert.ErrorIs(t, err, ErrEmptyImage)

	empty, err := New(d, 0, 0)
	require.NoError(t, err)
	err = ConvertToHost(empty, hostimage.New(4, 2))
	assert.ErrorIs(t, err, ErrEmptyImage)

	short, err := hostimage.FromPixels(4, 2, 4, make([]byte, 8))
	require.NoError(t, err)
	err = ConvertToDevice(&truncated{Gray: short}, img)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = ConvertToDevice(nil, img)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Zero(t, d.Stats().Copies, "no row copied on validation failure")
}

func TestConvert_NilHost(t *testing.T) {
	d := newDevice(t)
	img, err := New(d, 4, 2)
	require.NoError(t, err)
	defer img.Release()

	var g *hostimage.Gray
	assert.ErrorIs(t, ConvertToDevice(g, img), ErrEmptyImage)
	assert.ErrorIs(t, ConvertToHost(img, g), ErrEmptyImage)
	_, err = Upload(d, g)
	assert.ErrorIs(t, err, ErrEmptyImage)

	var b *bareHost
	assert.ErrorIs(t, ConvertToDevice(b, img), ErrEmptyImage)
	_, err = Upload(d, b)
	assert.ErrorIs(t, err, ErrEmptyImage)

	assert.Zero(t, d.Stats().Copies)
	assert.Equal(t, 1, d.Stats().Allocs)
}

// bareHost is a Host whose accessors dereference the receiver; only Empty
// accepts nil.
type bareHost struct {
	w, h uint32
	pix  []byte
}

func (b *bareHost) Width() uint32   { return b.w }
func (b *bareHost) Height() uint32  { return b.h }
func (b *bareHost) RowSize() uint32 { return b.w }
func (b *bareHost) Data() []byte    { return b.pix }
func (b *bareHost) Empty() bool     { return b == nil || b.w == 0 || b.h == 0 }

// truncated reports a host buffer one byte shorter than its layout needs.
type truncated struct {
	*hostimage.Gray
}

func (t *truncated) Data() []byte {
	data := t.Gray.Data()
	return data[:len(data)-1]
}

func TestConvert_PartialFailure(t *testing.T) {
	d := newDevice(t)
	img, err := New(d, 3, 4)
	require.NoError(t, err)
	defer img.Release()

	src := hostimage.New(3, 4)
	for i := range src.Data() {
		src.Data()[i] = byte(i + 1)
	}

	// Third row copy fails: rows 0 and 1 land, rows 2 and 3 do not.
	d.SetFaults(emu.Faults{FailCopy: 3})
	err = ConvertToDevice(src, img)
	require.ErrorIs(t, err, ErrTransferFailure)
	assert.ErrorIs(t, err, emu.ErrInjectedCopy)
	assert.Contains(t, err.Error(), "row 2")
	assert.Equal(t, 3, d.Stats().Copies, "stopped at the failing row")

	d.SetFaults(emu.Faults{})
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 0, 0, 0, 0, 0, 0}, pixels(t, img), "no rollback")

	// Device to host: second row fails, the first row is already copied.
	dst := hostimage.New(3, 4)
	d.SetFaults(emu.Faults{FailCopy: 2})
	err = ConvertToHost(img, dst)
	require.ErrorIs(t, err, ErrTransferFailure)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0}, dst.Data())
}

func TestUpload_ReleasesOnFailure(t *testing.T) {
	d := newDevice(t, emu.WithFaults(emu.Faults{FailCopy: 1}))

	_, err := Upload(d, hostimage.New(8, 8))
	require.ErrorIs(t, err, ErrTransferFailure)
	assert.Equal(t, 0, d.Stats().Live, "no device memory leaked")
}

func TestUpload_Empty(t *testing.T) {
	d := newDevice(t)
	_, err := Upload(d, hostimage.New(0, 8))
	assert.ErrorIs(t, err, ErrEmptyImage)
	assert.Zero(t, d.Stats().Allocs)
}
