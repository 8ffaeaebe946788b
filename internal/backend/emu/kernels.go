package emu

import "github.com/born-ml/pixops/internal/kernel"

// operands are the resolved buffers of one launch.
type operands struct {
	src1, src2, dst []byte
	n               uint32
	scale, gamma    float32
}

// body is the per-group code of a kernel.
type body func(g *Group, op *operands)

var kernels = map[kernel.Kind]body{
	kernel.AbsoluteDifference: pointwise(kernel.AbsoluteDifference),
	kernel.BitwiseAnd:         pointwise(kernel.BitwiseAnd),
	kernel.BitwiseOr:          pointwise(kernel.BitwiseOr),
	kernel.BitwiseXor:         pointwise(kernel.BitwiseXor),
	kernel.Invert:             pointwise(kernel.Invert),
	kernel.Maximum:            pointwise(kernel.Maximum),
	kernel.Minimum:            pointwise(kernel.Minimum),
	kernel.Subtract:           pointwise(kernel.Subtract),
	kernel.GammaCorrection:    gammaCorrection,
}

// pointwise maps one thread to one sample of a unary or binary kernel.
func pointwise(k kernel.Kind) body {
	unary := k.Arity() == 1
	return func(g *Group, op *operands) {
		g.Threads(func(t Thread) {
			id := t.Global
			if id >= op.n {
				return
			}
			var b uint8
			if !unary {
				b = op.src2[id]
			}
			op.dst[id] = kernel.Apply(k, op.src1[id], b)
		})
	}
}

// gammaCorrection builds the lookup table once per group, then maps samples.
func gammaCorrection(g *Group, op *operands) {
	lut := BuildOnce(g, kernel.TableSize, func(tbl []uint8) {
		kernel.GammaTable(tbl, op.scale, op.gamma)
	})
	g.Threads(func(t Thread) {
		id := t.Global
		if id >= op.n {
			return
		}
		op.dst[id] = lut[op.src1[id]]
	})
}
