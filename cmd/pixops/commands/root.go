// Package commands implements the pixops command tree.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/born-ml/pixops/gpuimage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the pixops release, overridden at link time.
var Version = "v0.1.0-dev"

// Config is the resolved command configuration: flags, PIXOPS_* environment
// variables and the optional config file, in that order of precedence.
type Config struct {
	Backend    string `mapstructure:"backend"`
	Width      uint32 `mapstructure:"width"`
	Height     uint32 `mapstructure:"height"`
	Pad        uint32 `mapstructure:"pad"`
	Iterations int    `mapstructure:"iterations"`
	Workers    int    `mapstructure:"workers"`
	LogLevel   string `mapstructure:"log-level"`
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "pixops",
		Short: "Elementwise grayscale image arithmetic on GPUs",
		Long: `pixops runs per-pixel arithmetic (absolute difference, bitwise logic,
min/max, saturating subtract, invert, gamma) on 8-bit grayscale images
held in device memory.

Devices: emu (pure Go, always available), cuda (NVIDIA, Linux),
webgpu (Windows).`,
		Version:       Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config: %w", err)
				}
			}
			level, err := parseLevel(v.GetString("log-level"))
			if err != nil {
				return err
			}
			gpuimage.SetLogger(newLogger(cmd.ErrOrStderr(), level))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))

	v.SetEnvPrefix("PIXOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newDevicesCmd(v),
		newBenchCmd(v),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves the configuration for a command run.
func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// logger returns the CLI logger for the configured level.
func logger(cmd *cobra.Command, cfg Config) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return newLogger(cmd.ErrOrStderr(), level)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pixops version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pixops %s\n", Version)
		},
	}
}
