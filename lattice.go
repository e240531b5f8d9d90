package lattice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/recognizer"
)

// Result is the outcome of a build. See Compile.
type Result = compiler.Result

// BuildError aggregates per-grammar failures.
type BuildError = compiler.BuildError

// Source is one grammar's text.
type Source = compiler.Source

// CompileObserver receives per-grammar compile outcomes.
type CompileObserver = compiler.Observer

type options struct {
	logger     *slog.Logger
	workers    int
	whitelist  []string
	slots      []compiler.SlotSource
	observer   compiler.Observer
	extra      []Source
	recognizer recognizer.Config
	recOpts    []recognizer.Option
}

// Option configures Compile, CompileDir and the recognizers built from them.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
		o.recOpts = append(o.recOpts, recognizer.WithLogger(logger))
	}
}

// WithWorkers bounds parallel grammar compilation.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithWhitelist restricts the build to the named grammars and their dependencies.
func WithWhitelist(names ...string) Option {
	return func(o *options) { o.whitelist = append(o.whitelist, names...) }
}

// WithSlots adds a slot source. Sources are consulted in order; a slot
// defined differently by two sources fails the grammars using it.
func WithSlots(name string, loader ports.SlotLoader) Option {
	return func(o *options) {
		o.slots = append(o.slots, compiler.SlotSource{Name: name, Loader: loader})
	}
}

// WithSources adds grammar sources next to the ones read from the loader.
func WithSources(sources ...Source) Option {
	return func(o *options) { o.extra = append(o.extra, sources...) }
}

// WithCompileObserver reports every grammar compilation to obs.
func WithCompileObserver(obs CompileObserver) Option {
	return func(o *options) { o.observer = obs }
}

// WithRecognizer sets the configuration used by Open and Load.
func WithRecognizer(cfg recognizer.Config, opts ...recognizer.Option) Option {
	return func(o *options) {
		o.recognizer = cfg
		o.recOpts = append(o.recOpts, opts...)
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sources reads every grammar the loader lists.
func Sources(ctx context.Context, loader ports.GrammarLoader) ([]Source, error) {
	names, err := loader.ListGrammars(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list grammars: %w", err)
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		text, err := loader.LoadGrammar(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load grammar %s: %w", name, err)
		}
		sources = append(sources, Source{Name: name, Text: text})
	}
	return sources, nil
}

// Compile builds every grammar the loader provides into one merged
// automaton. The result is returned even when some grammars failed, with a
// *BuildError listing them.
func Compile(ctx context.Context, loader ports.GrammarLoader, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	sources, err := Sources(ctx, loader)
	if err != nil {
		return nil, err
	}
	sources = append(sources, o.extra...)

	return compiler.Build(ctx, sources, compiler.Options{
		Workers:   o.workers,
		Whitelist: o.whitelist,
		Slots:     o.slots,
		Logger:    o.logger,
		Observer:  o.observer,
	})
}

// CompileDir compiles a profile directory laid out as grammars/<Name>.gram
// and slots/<name>. Slot sources given as options are consulted after the
// directory's own slots.
func CompileDir(ctx context.Context, dir string, opts ...Option) (*Result, error) {
	loader := file.NewLoader(dir)
	all := append([]Option{WithSlots(filepath.Join(dir, "slots"), loader)}, opts...)
	return Compile(ctx, loader, all...)
}

// Open creates a recognizer over a compiled automaton.
func Open(f *fst.FST, opts ...Option) *recognizer.Recognizer {
	o := newOptions(opts)
	return recognizer.New(f, o.recognizer, o.recOpts...)
}

// Load reads a stored automaton and opens a recognizer over it.
func Load(ctx context.Context, store ports.ArtifactStore, name string, opts ...Option) (*recognizer.Recognizer, error) {
	f, err := store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return Open(f, opts...), nil
}
