package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pixops "+Version+"\n", out)
}

func TestDevices(t *testing.T) {
	out, err := run(t, "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "BACKEND")
	assert.Contains(t, out, "emu")
	assert.Contains(t, out, "Emulated device")
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "--backend", "emu", "--width", "33", "--height", "5", "--pad", "3", "--iterations", "2")
	require.NoError(t, err)
	for _, op := range benchOps {
		assert.Contains(t, out, op.name)
	}
	assert.Contains(t, out, "33x5")
	assert.Contains(t, out, "download")
}

func TestBench_Env(t *testing.T) {
	t.Setenv("PIXOPS_WIDTH", "17")
	t.Setenv("PIXOPS_HEIGHT", "2")
	t.Setenv("PIXOPS_ITERATIONS", "1")

	out, err := run(t, "bench")
	require.NoError(t, err)
	assert.Contains(t, out, "17x2")
}

func TestBench_Errors(t *testing.T) {
	_, err := run(t, "bench", "--backend", "nope")
	assert.ErrorContains(t, err, `unknown backend "nope"`)

	_, err = run(t, "bench", "--iterations", "0")
	assert.ErrorContains(t, err, "iterations")

	_, err = run(t, "bench", "--width", "0", "--iterations", "1")
	assert.ErrorContains(t, err, "empty image")

	_, err = run(t, "--log-level", "loud", "version")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestGradient(t *testing.T) {
	g := gradient(3, 2, 1, false)
	assert.Equal(t, uint32(4), g.RowSize())
	assert.Equal(t, []byte{0, 127, 255, 0, 127, 255}, g.Pixels())

	v := gradient(2, 3, 0, true)
	assert.Equal(t, []byte{0, 0, 127, 127, 255, 255}, v.Pixels())
}
