package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lattice",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if tui.IsTerminal(out) {
			tui.PrintBanner(out)
		}
		fmt.Fprintf(out, "lattice version %s\n", strings.TrimSpace(lattice.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
