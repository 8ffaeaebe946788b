//go:build windows

package webgpu

import (
	"fmt"

	"github.com/born-ml/pixops/internal/kernel"
)

// WGSL compute shaders for the elementwise kernels.
// WGSL has no 8-bit storage type, so device buffers hold one u32 per pixel.
// Workgroup size is baked into the source, one shader per block size.
// Grids wider than maxWorkgroups are folded into a second dispatch
// dimension; shaders recover the linear block index from it.

const paramsStruct = `
struct Params {
    n: u32,
    scale: f32,
    gamma: f32,
    _pad: u32,
}
`

// binaryTemplate: dst = expr(a, b)
const binaryTemplate = paramsStruct + `
@group(0) @binding(0) var<storage, read> src1: array<u32>;
@group(0) @binding(1) var<storage, read> src2: array<u32>;
@group(0) @binding(2) var<storage, read_write> dst: array<u32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(%[1]d)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) groups: vec3<u32>,
        @builtin(local_invocation_index) lid: u32) {
    let i = (wid.y * groups.x + wid.x) * %[1]du + lid;
    if (i >= params.n) {
        return;
    }
    let a = src1[i];
    let b = src2[i];
    dst[i] = %[2]s;
}
`

// unaryTemplate: dst = expr(a)
const unaryTemplate = paramsStruct + `
@group(0) @binding(0) var<storage, read> src1: array<u32>;
@group(0) @binding(1) var<storage, read_write> dst: array<u32>;
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(%[1]d)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) groups: vec3<u32>,
        @builtin(local_invocation_index) lid: u32) {
    let i = (wid.y * groups.x + wid.x) * %[1]du + lid;
    if (i >= params.n) {
        return;
    }
    let a = src1[i];
    dst[i] = %[2]s;
}
`

// gammaTemplate has invocation 0 build a 256-entry table in workgroup
// memory; after the barrier every invocation maps its pixel through it.
// pow(0, y) is undefined in WGSL, so sample 0 is handled explicitly.
// round() is half-to-even, so rounding is floor(x+0.5).
const gammaTemplate = paramsStruct + `
@group(0) @binding(0) var<storage, read> src1: array<u32>;
@group(0) @binding(1) var<storage, read_write> dst: array<u32>;
@group(0) @binding(2) var<uniform> params: Params;

var<workgroup> lut: array<u32, 256>;

@compute @workgroup_size(%[1]d)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(num_workgroups) groups: vec3<u32>,
        @builtin(local_invocation_index) lid: u32) {
    if (lid == 0u) {
        for (var v = 0u; v < 256u; v = v + 1u) {
            var p = 0.0;
            if (v == 0u) {
                p = select(0.0, 1.0, params.gamma == 0.0);
            } else {
                p = pow(f32(v), params.gamma);
            }
            var r = floor(params.scale * p + 0.5);
            if (params.scale == 0.0) {
                r = 0.0;
            }
            lut[v] = u32(clamp(r, 0.0, 255.0));
        }
    }
    workgroupBarrier();

    let i = (wid.y * groups.x + wid.x) * %[1]du + lid;
    if (i < params.n) {
        dst[i] = lut[src1[i]];
    }
}
`

var expressions = map[kernel.Kind]string{
	kernel.AbsoluteDifference: "select(b - a, a - b, a > b)",
	kernel.BitwiseAnd:         "a & b",
	kernel.BitwiseOr:          "a | b",
	kernel.BitwiseXor:         "a ^ b",
	kernel.Invert:             "255u - a",
	kernel.Maximum:            "max(a, b)",
	kernel.Minimum:            "min(a, b)",
	kernel.Subtract:           "select(0u, a - b, a > b)",
}

// shaderSource returns the WGSL for kernel k at the given workgroup size.
func shaderSource(k kernel.Kind, threads uint32) (string, error) {
	if k == kernel.GammaCorrection {
		return fmt.Sprintf(gammaTemplate, threads), nil
	}
	expr, ok := expressions[k]
	if !ok {
		return "", fmt.Errorf("webgpu: no shader for %v", k)
	}
	if k.Arity() == 1 {
		return fmt.Sprintf(unaryTemplate, threads, expr), nil
	}
	return fmt.Sprintf(binaryTemplate, threads, expr), nil
}

// shaderKey names a compiled shader in the cache.
func shaderKey(k kernel.Kind, threads uint32) string {
	return fmt.Sprintf("%v/%d", k, threads)
}
