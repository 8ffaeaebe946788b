package gpuimage

import (
	"math/rand"
	"testing"

	"github.com/born-ml/pixops/internal/backend/emu"
	"github.com/born-ml/pixops/internal/hostimage"
	"github.com/stretchr/testify/require"
)

// newDevice returns an emulated device that is closed when the test ends.
func newDevice(t testing.TB, opts ...emu.Option) *emu.Device {
	t.Helper()
	d := emu.New(opts...)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// fromPixels uploads a width x height image with the given packed pixels.
func fromPixels(t testing.TB, d *emu.Device, width, height uint32, pix []byte) *Image {
	t.Helper()
	h, err := hostimage.FromPixels(width, height, width, pix)
	require.NoError(t, err)
	img, err := Upload(d, h)
	require.NoError(t, err)
	t.Cleanup(func() { _ = img.Release() })
	return img
}

// randomImage uploads a width x height image of random pixels.
func randomImage(t testing.TB, d *emu.Device, r *rand.Rand, width, height uint32) (*Image, []byte) {
	t.Helper()
	pix := make([]byte, int(width)*int(height))
	r.Read(pix)
	return fromPixels(t, d, width, height, pix), pix
}

// pixels downloads img as packed pixels.
func pixels(t testing.TB, img *Image) []byte {
	t.Helper()
	h, err := Download(img)
	require.NoError(t, err)
	return h.Pixels()
}

// release registers img for release at test end and returns it.
func release(t testing.TB, img *Image) *Image {
	t.Helper()
	t.Cleanup(func() { _ = img.Release() })
	return img
}
