// Package launch sizes kernel grids for elementwise image kernels.
package launch

import "fmt"

// MaxThreadsPerBlock is the largest group size handed to any kernel.
// Matches the workgroup size of the elementwise shaders.
const MaxThreadsPerBlock = 256

// Config is the (threads-per-block, blocks-per-grid) pair of one launch.
type Config struct {
	ThreadsPerBlock uint32
	BlocksPerGrid   uint32
}

// Configure maps an element count to a launch configuration.
//
// Counts below MaxThreadsPerBlock run as a single block of exactly n threads.
// Larger counts use full blocks and round the block count up, so the grid may
// overshoot n and every kernel must bounds-check its global index.
func Configure(n uint32) Config {
	if n < MaxThreadsPerBlock {
		return Config{ThreadsPerBlock: n, BlocksPerGrid: 1}
	}
	blocks := n / MaxThreadsPerBlock
	if n%MaxThreadsPerBlock != 0 {
		blocks++ // n+255 would wrap near MaxUint32
	}
	return Config{ThreadsPerBlock: MaxThreadsPerBlock, BlocksPerGrid: blocks}
}

// Threads returns the total number of execution units in the grid.
func (c Config) Threads() uint64 {
	return uint64(c.ThreadsPerBlock) * uint64(c.BlocksPerGrid)
}

// Covers reports whether the grid has at least one unit per element.
func (c Config) Covers(n uint32) bool {
	return c.Threads() >= uint64(n)
}

// String implements fmt.Stringer.
func (c Config) String() string {
	return fmt.Sprintf("<<<%d, %d>>>", c.BlocksPerGrid, c.ThreadsPerBlock)
}
