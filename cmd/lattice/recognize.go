package main

import (
	"encoding/json"
	"errors"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize [text...]",
	Short: "Recognize intents in text",
	Long: `Recognizes each argument, or every line of stdin when no arguments are
given. Stdin lines are raw text or JSON objects with a "text" field. One JSON
result is printed per utterance; failures are reported inline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		applyRecognitionFlags(cmd, &cfg.Recognition.Config.Fuzzy, "fuzzy")
		applyRecognitionFlags(cmd, &cfg.Recognition.Config.SkipUnknown, "skip-unknown")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		store, err := recognitionStore(cmd, cfg)
		if err != nil {
			return err
		}
		rec, err := cli.OpenRecognizer(ctx, cfg, store, logger)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return cli.RecognizeLines(ctx, rec, cmd.InOrStdin(), cmd.OutOrStdout())
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, text := range args {
			if err := enc.Encode(cli.RecognizeText(rec, text)); err != nil {
				return err
			}
		}
		return nil
	},
}

// recognitionStore returns the shared store when --redis is set.
func recognitionStore(cmd *cobra.Command, cfg *config.Config) (ports.ArtifactStore, error) {
	if useRedis, _ := cmd.Flags().GetBool("redis"); !useRedis {
		return nil, nil
	}
	store := cli.ArtifactStore(cfg)
	if store == nil {
		return nil, errors.New("--redis needs redis.addr in the profile")
	}
	return store, nil
}

func applyRecognitionFlags(cmd *cobra.Command, target *bool, name string) {
	if cmd.Flags().Changed(name) {
		*target, _ = cmd.Flags().GetBool(name)
	}
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
	recognizeCmd.Flags().Bool("fuzzy", false, "Fall back to fuzzy matching when exact matching fails")
	recognizeCmd.Flags().Bool("skip-unknown", false, "Drop words outside the vocabulary")
	recognizeCmd.Flags().Bool("redis", false, "Load the automaton from the configured Redis store")
}
