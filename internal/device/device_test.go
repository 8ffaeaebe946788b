package device

import (
	"testing"

	"github.com/born-ml/pixops/internal/kernel"
	"github.com/born-ml/pixops/internal/launch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLaunch(t *testing.T) {
	binary := Args{Src1: 1, Src2: 2, Dst: 3, N: 300}
	require.NoError(t, CheckLaunch(kernel.BitwiseAnd, launch.Configure(300), binary))

	unary := Args{Src1: 1, Dst: 3, N: 10}
	require.NoError(t, CheckLaunch(kernel.Invert, launch.Configure(10), unary))

	err := CheckLaunch(kernel.BitwiseAnd, launch.Configure(10), unary)
	assert.ErrorIs(t, err, ErrNullPointer)

	err = CheckLaunch(kernel.Kind(99), launch.Configure(10), unary)
	assert.ErrorIs(t, err, ErrUnknownKernel)

	assert.Error(t, CheckLaunch(kernel.Invert, launch.Config{ThreadsPerBlock: 4, BlocksPerGrid: 1}, unary),
		"grid smaller than N")
	assert.Error(t, CheckLaunch(kernel.Invert, launch.Config{ThreadsPerBlock: 512, BlocksPerGrid: 1}, unary),
		"oversized block")
	assert.Error(t, CheckLaunch(kernel.Invert, launch.Configure(0), Args{Src1: 1, Dst: 2}),
		"empty grid")
}
