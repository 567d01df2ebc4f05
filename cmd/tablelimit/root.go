package main

import (
	"github.com/spf13/cobra"

	"github.com/manojoshi/tablelimit/config"
)

// Version is set at link time.
var Version = "dev"

type rootOpts struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOpts{}
	cmd := &cobra.Command{
		Use:           "tablelimit",
		Short:         "filter, sort and page tables of rows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			config.SetLogrus(cfg.Log)
			opts.cfg = cfg
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(newQueryCmd(opts), newServeCmd(opts), newVersionCmd())
	return cmd
}
