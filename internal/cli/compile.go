package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/sentences"
)

// IntentArtifact names the merged automaton in artifact stores.
const IntentArtifact = "intent"

// CompileOptions carries the collaborators of Compile.
type CompileOptions struct {
	Logger   *slog.Logger
	Observer compiler.Observer
	// Publish, when set, also receives the merged automaton as IntentArtifact.
	Publish ports.ArtifactStore
	// DryRun skips writing outputs.
	DryRun bool
}

// CompileReport describes a finished compile.
type CompileReport struct {
	Result *compiler.Result
	// BuildErr holds per-grammar failures; outputs are still written.
	BuildErr error
	Elapsed  time.Duration
	// Written lists the files and artifacts produced.
	Written []string
}

// Compile builds the grammars of a profile and writes the merged automaton,
// one automaton per intent and the vocabulary.
func Compile(ctx context.Context, cfg *config.Config, opts CompileOptions) (*CompileReport, error) {
	begin := time.Now()
	loader := &file.Loader{
		GrammarDir: cfg.Path(cfg.Training.GrammarDir),
		SlotDir:    cfg.Path(cfg.Training.SlotsDir),
	}

	extra, err := sentenceSources(cfg.Path(cfg.Training.SentencesFile))
	if err != nil {
		return nil, err
	}
	whitelist, err := cfg.Whitelist()
	if err != nil {
		return nil, err
	}

	buildOpts := []lattice.Option{
		lattice.WithSlots(loader.SlotDir, loader),
		lattice.WithSources(extra...),
		lattice.WithWorkers(cfg.Training.Workers),
		lattice.WithWhitelist(whitelist...),
		lattice.WithLogger(opts.Logger),
	}
	if opts.Observer != nil {
		buildOpts = append(buildOpts, lattice.WithCompileObserver(opts.Observer))
	}

	res, err := lattice.Compile(ctx, loader, buildOpts...)
	var be *compiler.BuildError
	if err != nil && !errors.As(err, &be) {
		return nil, err
	}
	report := &CompileReport{Result: res, BuildErr: err}

	if !opts.DryRun {
		if report.Written, err = writeOutputs(ctx, cfg, res, opts.Publish); err != nil {
			return nil, err
		}
	}
	report.Elapsed = time.Since(begin)
	return report, nil
}

func sentenceSources(path string) ([]lattice.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open sentences: %w", err)
	}
	defer f.Close()

	intents, err := sentences.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sources := make([]lattice.Source, len(intents))
	for i, intent := range intents {
		sources[i] = lattice.Source{Name: intent.Name, Text: intent.Grammar()}
	}
	return sources, nil
}

func writeOutputs(ctx context.Context, cfg *config.Config, res *compiler.Result, publish ports.ArtifactStore) ([]string, error) {
	var written []string

	intentPath := cfg.Path(cfg.Training.IntentFST)
	if err := file.WriteAtomic(intentPath, func(w *os.File) error { return res.Merged.Encode(w) }); err != nil {
		return nil, fmt.Errorf("failed to write intent automaton: %w", err)
	}
	written = append(written, intentPath)

	if cfg.Training.VocabularyFile != "" {
		vocabPath := cfg.Path(cfg.Training.VocabularyFile)
		err := file.WriteAtomic(vocabPath, func(w *os.File) error {
			return compiler.WriteVocabulary(w, res.Vocabulary)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write vocabulary: %w", err)
		}
		written = append(written, vocabPath)
	}

	if cfg.Training.FSTDir != "" {
		store := file.NewStore(cfg.Path(cfg.Training.FSTDir))
		if err := mirror(ctx, store, res); err != nil {
			return nil, err
		}
		names := make([]string, 0, len(res.Intents))
		for name := range res.Intents {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			written = append(written, store.Path(name))
		}
	}

	if publish != nil {
		if err := publish.Save(ctx, IntentArtifact, res.Merged); err != nil {
			return nil, fmt.Errorf("failed to publish intent automaton: %w", err)
		}
		written = append(written, "store:"+IntentArtifact)
	}
	return written, nil
}

// mirror saves every intent automaton and removes artifacts of intents that
// no longer exist.
func mirror(ctx context.Context, store ports.ArtifactStore, res *compiler.Result) error {
	existing, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range existing {
		if _, ok := res.Intents[name]; !ok {
			if err := store.Delete(ctx, name); err != nil {
				return err
			}
		}
	}
	for name, f := range res.Intents {
		if err := store.Save(ctx, name, f); err != nil {
			return fmt.Errorf("failed to write automaton for %s: %w", name, err)
		}
	}
	return nil
}
