package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newDevicesCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List device runtimes and whether they are usable",
		Long: `Probe every runtime compiled into this binary. Available runtimes are
opened briefly to report the device name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			log := logger(cmd, cfg)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BACKEND\tAVAILABLE\tDEVICE")
			for _, b := range backends {
				if !b.available() {
					fmt.Fprintf(w, "%s\tno\t-\n", b.name)
					continue
				}
				rt, err := b.open(cfg, log)
				if err != nil {
					fmt.Fprintf(w, "%s\tno\t%v\n", b.name, err)
					continue
				}
				fmt.Fprintf(w, "%s\tyes\t%s\n", b.name, rt.Name())
				if err := rt.Close(); err != nil {
					log.Warn("close runtime", "backend", b.name, "err", err)
				}
			}
			return w.Flush()
		},
	}
}
