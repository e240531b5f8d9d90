package main

import (
	"errors"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the profile grammars into intent.fst",
	Long: `Compiles every grammar of the profile (grammars/*.gram and sentences.ini),
writes the merged automaton, one automaton per intent and the vocabulary.
Grammars that fail are reported and left out; the command then exits non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.Training.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if cmd.Flags().Changed("whitelist") {
			cfg.Training.Whitelist, _ = cmd.Flags().GetStringSlice("whitelist")
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := cli.CompileOptions{Logger: logger, DryRun: dryRun}
		if publish, _ := cmd.Flags().GetBool("publish"); publish {
			opts.Publish = cli.ArtifactStore(cfg)
			if opts.Publish == nil {
				return errors.New("--publish needs redis.addr in the profile")
			}
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		report, err := cli.Compile(ctx, cfg, opts)
		if err != nil {
			return err
		}
		if !quiet {
			tui.PrintBuildSummary(cmd.ErrOrStderr(), report.Result, report.BuildErr, report.Elapsed)
		}
		for _, path := range report.Written {
			logger.Debug("wrote", "path", path)
		}
		return report.BuildErr
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Int("workers", 0, "Parallel grammar compilations (0 = number of CPUs)")
	compileCmd.Flags().StringSlice("whitelist", nil, "Only build these grammars and their dependencies")
	compileCmd.Flags().Bool("dry-run", false, "Compile without writing outputs")
	compileCmd.Flags().Bool("publish", false, "Also publish the merged automaton to the configured Redis store")
	compileCmd.Flags().BoolP("quiet", "q", false, "Do not print the build summary")
}
