package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/born-ml/pixops/gpuimage"
	"github.com/born-ml/pixops/hostimage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// benchOp is one timed operation writing into out.
type benchOp struct {
	name string
	run  func(a, b, out *gpuimage.Image) error
}

var benchOps = []benchOp{
	{"absolute_difference", gpuimage.AbsoluteDifferenceInto},
	{"bitwise_and", gpuimage.BitwiseAndInto},
	{"bitwise_or", gpuimage.BitwiseOrInto},
	{"bitwise_xor", gpuimage.BitwiseXorInto},
	{"maximum", gpuimage.MaximumInto},
	{"minimum", gpuimage.MinimumInto},
	{"subtract", gpuimage.SubtractInto},
	{"invert", func(a, _, out *gpuimage.Image) error { return gpuimage.InvertInto(a, out) }},
	{"gamma_correction", func(a, _, out *gpuimage.Image) error {
		return gpuimage.GammaCorrectionInto(a, out, 1, 2.2)
	}},
}

func newBenchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time every operation on synthetic images",
		Long: `Upload two synthetic gradients, run every operation the requested number
of times and report the mean time per call. The transfer round trip is
timed too; --pad adds row padding to the host images.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return runBench(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.String("backend", "emu", fmt.Sprintf("device runtime %v", backendNames()))
	f.Uint32("width", 1920, "image width in pixels")
	f.Uint32("height", 1080, "image height in pixels")
	f.Uint32("pad", 0, "extra bytes per host row")
	f.Int("iterations", 10, "calls per operation")
	f.Int("workers", 0, "emu: concurrent blocks (0 = GOMAXPROCS)")
	for _, name := range []string{"backend", "width", "height", "pad", "iterations", "workers"} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

func runBench(cmd *cobra.Command, cfg Config) (err error) {
	if cfg.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", cfg.Iterations)
	}
	log := logger(cmd, cfg)

	rt, err := openBackend(cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, rt.Close()) }()

	hostA := gradient(cfg.Width, cfg.Height, cfg.Pad, false)
	hostB := gradient(cfg.Width, cfg.Height, cfg.Pad, true)

	start := time.Now()
	a, err := gpuimage.Upload(rt, hostA)
	if err != nil {
		return err
	}
	defer a.Release()
	b, err := gpuimage.Upload(rt, hostB)
	if err != nil {
		return err
	}
	defer b.Release()
	upload := time.Since(start) / 2

	out, err := gpuimage.New(rt, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer out.Release()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%dx%d\t(pad %d, %d iterations)\t\n", rt.Name(), cfg.Width, cfg.Height, cfg.Pad, cfg.Iterations)
	fmt.Fprintln(w, "OPERATION\tTIME/CALL\tMPIX/S\t")
	pixels := float64(out.Len())
	report := func(name string, d time.Duration) {
		fmt.Fprintf(w, "%s\t%v\t%.1f\t\n", name, d.Round(time.Microsecond), pixels/d.Seconds()/1e6)
	}
	report("upload", upload)

	for _, op := range benchOps {
		start := time.Now()
		for range cfg.Iterations {
			if err := op.run(a, b, out); err != nil {
				return fmt.Errorf("%s: %w", op.name, err)
			}
		}
		if err := rt.Synchronize(); err != nil {
			return err
		}
		report(op.name, time.Since(start)/time.Duration(cfg.Iterations))
	}

	dst := hostimage.NewPadded(cfg.Width, cfg.Height, cfg.Width+cfg.Pad)
	start = time.Now()
	if err := gpuimage.ConvertToHost(out, dst); err != nil {
		return err
	}
	report("download", time.Since(start))
	return w.Flush()
}

// gradient builds a horizontal (or vertical) ramp with padded rows.
func gradient(width, height, pad uint32, vertical bool) *hostimage.Gray {
	g := hostimage.NewPadded(width, height, width+pad)
	for y := range int(height) {
		for x := range int(width) {
			v := x * 255 / max(int(width)-1, 1)
			if vertical {
				v = y * 255 / max(int(height)-1, 1)
			}
			g.Set(x, y, uint8(v))
		}
	}
	return g
}
