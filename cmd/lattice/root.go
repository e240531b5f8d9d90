package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice compiles intent grammars into a finite-state recognizer",
	Long: `Lattice turns a profile of JSGF-style grammars, slot lists and sentences
into one merged transducer, then recognizes intents and slots in text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("profile", ".", "Profile directory containing profile.yml")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// setup loads the profile named by --profile and the logger for --debug.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	dir, _ := cmd.Flags().GetString("profile")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Setup(dir, debug)
}
