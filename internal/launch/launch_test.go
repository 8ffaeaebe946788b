package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	tests := []struct {
		n       uint32
		threads uint32
		blocks  uint32
	}{
		{0, 0, 1},
		{1, 1, 1},
		{255, 255, 1},
		{256, 256, 1},
		{257, 256, 2},
		{512, 256, 2},
		{100000, 256, 391},
	}

	for _, tt := range tests {
		cfg := Configure(tt.n)
		assert.Equal(t, tt.threads, cfg.ThreadsPerBlock, "n=%d", tt.n)
		assert.Equal(t, tt.blocks, cfg.BlocksPerGrid, "n=%d", tt.n)
		assert.True(t, cfg.Covers(tt.n), "grid must cover n=%d", tt.n)
		assert.LessOrEqual(t, cfg.ThreadsPerBlock, uint32(MaxThreadsPerBlock))
	}
}

func TestConfigure_OvershootBounded(t *testing.T) {
	// Overshoot is always less than one block.
	for n := uint32(1); n < 4096; n += 7 {
		cfg := Configure(n)
		over := cfg.Threads() - uint64(n)
		if over >= uint64(cfg.ThreadsPerBlock) {
			t.Errorf("n=%d: overshoot %d >= block size %d", n, over, cfg.ThreadsPerBlock)
		}
	}
}

func TestConfigure_Large(t *testing.T) {
	cfg := Configure(^uint32(0))
	assert.True(t, cfg.Covers(^uint32(0)))
	assert.Equal(t, uint32(1<<24), cfg.BlocksPerGrid)
}

func TestConfigString(t *testing.T) {
	assert.Equal(t, "<<<2, 256>>>", Configure(300).String())
}

func BenchmarkConfigure(b *testing.B) {
	var sink Config
	for i := 0; i < b.N; i++ {
		sink = Configure(uint32(i))
	}
	_ = sink
}
