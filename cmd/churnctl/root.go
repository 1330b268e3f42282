package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/churnboard/internal/config"
	"github.com/okian/churnboard/pkg/logger"
)

type rootOptions struct {
	noColor bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "churnctl",
		Short:         "Employee churn prediction from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(cfg.LogLevel)
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(newPredictCmd(opts), newProbeCmd(opts))
	return cmd
}
