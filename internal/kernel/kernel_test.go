package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "absolute_difference", AbsoluteDifference.String())
	assert.Equal(t, "gamma_correction", GammaCorrection.String())
	assert.Equal(t, "kernel(200)", Kind(200).String())
	assert.False(t, Kind(200).Valid())
	assert.Len(t, Kinds, len(kindNames))
}

func TestArity(t *testing.T) {
	for _, k := range Kinds {
		want := 2
		if k == Invert || k == GammaCorrection {
			want = 1
		}
		assert.Equal(t, want, k.Arity(), k.String())
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		kind Kind
		a, b uint8
		want uint8
	}{
		{AbsoluteDifference, 10, 255, 245},
		{AbsoluteDifference, 255, 10, 245},
		{AbsoluteDifference, 30, 170, 140},
		{BitwiseAnd, 10, 255, 10},
		{BitwiseAnd, 30, 170, 10},
		{BitwiseOr, 0x0f, 0xf0, 0xff},
		{BitwiseXor, 0xff, 0x0f, 0xf0},
		{Invert, 0, 0, 255},
		{Invert, 200, 0, 55},
		{Maximum, 3, 9, 9},
		{Minimum, 3, 9, 3},
		{Subtract, 9, 3, 6},
		{Subtract, 3, 9, 0},
		{Subtract, 7, 7, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Apply(tt.kind, tt.a, tt.b), "%v(%d, %d)", tt.kind, tt.a, tt.b)
	}
}

func TestApply_Exhaustive(t *testing.T) {
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			x, y := uint8(a), uint8(b)
			ad := Apply(AbsoluteDifference, x, y)
			if int(ad) != int(math.Abs(float64(a-b))) {
				t.Fatalf("absdiff(%d,%d) = %d", a, b, ad)
			}
			sub := Apply(Subtract, x, y)
			if a <= b && sub != 0 || a > b && int(sub) != a-b {
				t.Fatalf("subtract(%d,%d) = %d", a, b, sub)
			}
			if Apply(Minimum, x, y) > Apply(Maximum, x, y) {
				t.Fatalf("min > max at (%d,%d)", a, b)
			}
		}
	}
}

func TestApply_PanicsOnGamma(t *testing.T) {
	assert.Panics(t, func() { Apply(GammaCorrection, 1, 1) })
}

func TestGammaTable_Identity(t *testing.T) {
	tbl := make([]uint8, TableSize)
	GammaTable(tbl, 1, 1)
	for v := range tbl {
		require.Equal(t, uint8(v), tbl[v])
	}
}

func TestGammaEntry(t *testing.T) {
	assert.Equal(t, uint8(1), GammaEntry(0, 1, 0), "0^0 is 1")
	assert.Equal(t, uint8(0), GammaEntry(0, 1, 2))
	assert.Equal(t, uint8(255), GammaEntry(200, 2, 1), "clamped high")
	assert.Equal(t, uint8(0), GammaEntry(200, 0, 1))
	assert.Equal(t, uint8(16), GammaEntry(4, 1, 2))
	assert.Equal(t, uint8(64), GammaEntry(128, 0.5, 1))
}

func TestValidGamma(t *testing.T) {
	assert.True(t, ValidGamma(0, 0))
	assert.True(t, ValidGamma(1, 2.2))
	assert.False(t, ValidGamma(-1, 1))
	assert.False(t, ValidGamma(1, -0.5))
	assert.False(t, ValidGamma(float32(math.Inf(1)), 1))
	assert.False(t, ValidGamma(1, float32(math.NaN())))
}
