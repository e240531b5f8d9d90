package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/sentences"
	"github.com/spf13/cobra"
)

var sentencesCmd = &cobra.Command{
	Use:   "sentences [file]",
	Short: "Convert a sentences file into grammars",
	Long: `Parses an ini-style sentences file (default: the profile's sentences.ini)
and prints one grammar per intent, or writes <Intent>.gram files into --out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		path := cfg.Path(cfg.Training.SentencesFile)
		if len(args) == 1 {
			path = args[0]
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open sentences: %w", err)
		}
		defer f.Close()
		intents, err := sentences.Parse(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			for n, intent := range intents {
				if n > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprint(cmd.OutOrStdout(), intent.Grammar())
			}
			return nil
		}

		if err := os.MkdirAll(out, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		for _, intent := range intents {
			src := intent.Grammar()
			target := filepath.Join(out, intent.Name+file.GrammarExtension)
			err := file.WriteAtomic(target, func(f *os.File) error {
				_, err := io.WriteString(f, src)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "wrote", target)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sentencesCmd)
	sentencesCmd.Flags().StringP("out", "o", "", "Write <Intent>.gram files into this directory")
}
