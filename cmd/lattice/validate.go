package main

import (
	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every grammar of the profile without writing outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		report, err := cli.Compile(ctx, cfg, cli.CompileOptions{Logger: logger, DryRun: true})
		if err != nil {
			return err
		}
		if err := tui.WriteMarkdown(cmd.OutOrStdout(), tui.ValidationReport(report.Result, report.BuildErr)); err != nil {
			return err
		}
		return report.BuildErr
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
