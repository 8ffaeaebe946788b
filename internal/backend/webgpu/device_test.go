//go:build windows

package webgpu

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/born-ml/pixops/internal/device"
	"github.com/born-ml/pixops/internal/gpuimage"
	"github.com/born-ml/pixops/internal/hostimage"
	"github.com/born-ml/pixops/internal/kernel"
	"github.com/born-ml/pixops/internal/launch"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T) *Device {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available")
	}
	d, err := New()
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestIsAvailable(t *testing.T) {
	t.Logf("WebGPU available: %v", IsAvailable())
}

func TestName(t *testing.T) {
	assert.Equal(t, "WebGPU device", (&Device{}).Name())
	assert.Equal(t, "WebGPU device", (&Device{info: &wgpu.AdapterInfoGo{Vendor: "acme"}}).Name())

	d := &Device{info: &wgpu.AdapterInfoGo{Device: "RTX 4070", Vendor: "nvidia"}}
	assert.Equal(t, "WebGPU: RTX 4070 (nvidia)", d.Name())

	if IsAvailable() {
		gpu := newDevice(t)
		assert.True(t, strings.HasPrefix(gpu.Name(), "WebGPU"), gpu.Name())
	}
}

func TestShaderSource(t *testing.T) {
	for _, k := range kernel.Kinds {
		src, err := shaderSource(k, 64)
		require.NoError(t, err, k)
		assert.Contains(t, src, "@workgroup_size(64)", k)
		assert.NotContains(t, src, "%!", k)
		if k.Arity() == 1 {
			assert.NotContains(t, src, "src2", k)
		}
	}
	_, err := shaderSource(kernel.Kind(200), 64)
	assert.Error(t, err)

	gamma, _ := shaderSource(kernel.GammaCorrection, 256)
	assert.True(t, strings.Contains(gamma, "workgroupBarrier()"))
}

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		blocks, x, y uint32
	}{
		{1, 1, 1},
		{maxWorkgroups, maxWorkgroups, 1},
		{maxWorkgroups + 1, maxWorkgroups, 2},
		{3 * maxWorkgroups, maxWorkgroups, 3},
	}
	for _, tt := range tests {
		x, y := dispatchSize(tt.blocks)
		assert.Equal(t, tt.x, x, "blocks=%d", tt.blocks)
		assert.Equal(t, tt.y, y, "blocks=%d", tt.blocks)
		assert.GreaterOrEqual(t, uint64(x)*uint64(y), uint64(tt.blocks))
	}
}

func TestDevice_Kernels(t *testing.T) {
	d := newDevice(t)
	r := rand.New(rand.NewSource(1))

	for _, n := range []int{1, 100, 256, 1000} {
		a, b := make([]byte, n), make([]byte, n)
		r.Read(a)
		r.Read(b)
		pa, pb := alloc(t, d, a), alloc(t, d, b)
		dst := alloc(t, d, make([]byte, n))
		cfg := launch.Configure(uint32(n))

		for _, k := range kernel.Kinds {
			args := device.Args{Src1: pa, Src2: pb, Dst: dst, N: uint32(n), Scale: 1, Gamma: 2}
			require.NoError(t, d.Launch(k, cfg, args), k)

			got := make([]byte, n)
			require.NoError(t, d.CopyToHost(got, dst, 0))
			for i := range got {
				want := kernel.GammaEntry(a[i], 1, 2)
				if k != kernel.GammaCorrection {
					want = kernel.Apply(k, a[i], b[i])
				}
				require.InDelta(t, want, got[i], 1, "%v n=%d [%d]", k, n, i)
			}
		}
	}
}

func TestDevice_Aliased(t *testing.T) {
	d := newDevice(t)
	a := alloc(t, d, []byte{10, 20, 30, 40})
	b := alloc(t, d, []byte{5, 25, 30, 0})

	args := device.Args{Src1: a, Src2: b, Dst: a, N: 4}
	require.NoError(t, d.Launch(kernel.Subtract, launch.Configure(4), args))

	got := make([]byte, 4)
	require.NoError(t, d.CopyToHost(got, a, 0))
	assert.Equal(t, []byte{5, 0, 0, 40}, got)
}

func TestDevice_Rows(t *testing.T) {
	d := newDevice(t)
	p := alloc(t, d, make([]byte, 12))

	require.NoError(t, d.CopyToDevice(p, 4, []byte{1, 2, 3, 4}))
	got := make([]byte, 6)
	require.NoError(t, d.CopyToHost(got, p, 2))
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 4}, got)

	assert.ErrorIs(t, d.CopyToDevice(p, 10, make([]byte, 4)), device.ErrOutOfBounds)
	assert.ErrorIs(t, d.Free(p+100), device.ErrInvalidPtr)
	require.NoError(t, d.Synchronize())
}

func TestDevice_Images(t *testing.T) {
	d := newDevice(t)

	src := hostimage.NewPadded(97, 13, 128)
	for i := range src.Data() {
		src.Data()[i] = byte(i * 3)
	}
	img, err := gpuimage.Upload(d, src)
	require.NoError(t, err)
	defer img.Release()

	twice, err := gpuimage.Invert(img)
	require.NoError(t, err)
	defer twice.Release()
	require.NoError(t, gpuimage.InvertInto(twice, twice))

	back, err := gpuimage.Download(twice)
	require.NoError(t, err)
	assert.Equal(t, src.Pixels(), back.Pixels())
}

func TestBufferPool(t *testing.T) {
	d := newDevice(t)

	buf := d.pool.acquire(1024, imageUsage)
	d.pool.release(buf, 1024, imageUsage)
	again := d.pool.acquire(512, imageUsage)
	d.pool.release(again, 512, imageUsage)

	created, hits, pooled := d.pool.stats()
	assert.Equal(t, uint64(1), created)
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, 1, pooled)

	d.pool.clear()
	_, _, pooled = d.pool.stats()
	assert.Zero(t, pooled)
}

func alloc(t *testing.T, d *Device, data []byte) device.Ptr {
	t.Helper()
	p, err := d.Alloc(len(data))
	require.NoError(t, err)
	require.NoError(t, d.CopyToDevice(p, 0, data))
	t.Cleanup(func() { _ = d.Free(p) })
	return p
}
