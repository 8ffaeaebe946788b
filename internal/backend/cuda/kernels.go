//go:build linux

package cuda

import (
	"fmt"
	"strings"

	"github.com/born-ml/pixops/internal/kernel"
)

// All entry points share one parameter list so a launch can pass the same
// argument block to any of them: (src1, src2, dst, n, scale, gamma).
// Unary kernels get a null src2.
const pointwiseMacro = `
#define POINTWISE(name, expr)                                               \
extern "C" __global__ void name(const unsigned char* src1,                  \
                                const unsigned char* src2,                  \
                                unsigned char* dst, unsigned int n,         \
                                float scale, float gamma)                   \
{                                                                           \
    unsigned int i = blockIdx.x * blockDim.x + threadIdx.x;                 \
    if (i >= n) return;                                                     \
    int a = src1[i];                                                        \
    int b = src2 ? src2[i] : 0;                                             \
    dst[i] = (unsigned char)(expr);                                         \
}
`

const gammaKernel = `
extern "C" __global__ void %s(const unsigned char* src1,
                              const unsigned char* src2,
                              unsigned char* dst, unsigned int n,
                              float scale, float gamma)
{
    __shared__ unsigned char lut[256];
    if (threadIdx.x == 0) {
        for (int v = 0; v < 256; v++) {
            float r = roundf(scale * powf((float)v, gamma));
            lut[v] = !(r > 0.0f) ? 0 : (r >= 255.0f ? 255 : (unsigned char)r);
        }
    }
    __syncthreads();

    unsigned int i = blockIdx.x * blockDim.x + threadIdx.x;
    if (i < n) {
        dst[i] = lut[src1[i]];
    }
}
`

// expressions holds the per-pixel body of each pointwise kernel over the
// input values a and b.
var expressions = map[kernel.Kind]string{
	kernel.AbsoluteDifference: "a > b ? a - b : b - a",
	kernel.BitwiseAnd:         "a & b",
	kernel.BitwiseOr:          "a | b",
	kernel.BitwiseXor:         "a ^ b",
	kernel.Invert:             "255 - a",
	kernel.Maximum:            "a > b ? a : b",
	kernel.Minimum:            "a < b ? a : b",
	kernel.Subtract:           "a > b ? a - b : 0",
}

// kernelSource returns the CUDA C translation unit holding every kernel in
// kernel.Kinds, each named by entryPoint.
func kernelSource() (string, error) {
	var b strings.Builder
	b.WriteString(pointwiseMacro)
	for _, k := range kernel.Kinds {
		if k == kernel.GammaCorrection {
			fmt.Fprintf(&b, gammaKernel, entryPoint(k))
			continue
		}
		expr, ok := expressions[k]
		if !ok {
			return "", fmt.Errorf("cuda: no kernel for %v", k)
		}
		fmt.Fprintf(&b, "POINTWISE(%s, %s)\n", entryPoint(k), expr)
	}
	return b.String(), nil
}

// entryPoint returns the kernel's function name in kernelSource.
func entryPoint(k kernel.Kind) string {
	return k.String()
}
