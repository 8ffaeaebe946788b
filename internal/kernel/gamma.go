package kernel

import "math"

// TableSize is the number of entries in a per-sample lookup table.
const TableSize = 256

// ValidGamma reports whether (scale, gamma) are acceptable gamma parameters:
// both finite and non-negative.
func ValidGamma(scale, gamma float32) bool {
	s, g := float64(scale), float64(gamma)
	return s >= 0 && g >= 0 && !math.IsInf(s, 0) && !math.IsInf(g, 0)
}

// GammaEntry computes clamp(round(scale * v^gamma), 0, 255) in single
// precision, the arithmetic the device kernels use. 0^0 is 1.
func GammaEntry(v uint8, scale, gamma float32) uint8 {
	p := float32(math.Pow(float64(v), float64(gamma)))
	r := math.Round(float64(scale * p))
	switch {
	case r <= 0 || math.IsNaN(r):
		return 0
	case r >= 255:
		return 255
	default:
		return uint8(r)
	}
}

// GammaTable fills tbl with GammaEntry for every sample value.
func GammaTable(tbl []uint8, scale, gamma float32) {
	for v := range tbl[:TableSize] {
		tbl[v] = GammaEntry(uint8(v), scale, gamma)
	}
}
