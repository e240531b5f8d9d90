package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the grammar dependency graph as Mermaid",
	Long: `Resolves every grammar of the profile and prints a Mermaid flowchart of
rules, slots and cross-grammar references. Failed grammars are highlighted.`,
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
		overlay := &graph.GraphOverlay{}
		var be *compiler.BuildError
		if errors.As(report.BuildErr, &be) {
			overlay.Failed = be.Grammars()
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(report.Result.Graphs, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
