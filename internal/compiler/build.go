package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/jsgf"
)

// Source is one grammar's text. Name is used when the text declares no
// grammar name (usually the file stem).
type Source struct {
	Name string
	Text string
}

// Observer receives per-grammar compile outcomes.
type Observer interface {
	GrammarCompiled(grammar string, elapsed time.Duration, err error)
}

// Options configures Build.
type Options struct {
	// Workers bounds parallel grammar compilation. Zero means runtime.NumCPU().
	Workers int
	// Whitelist restricts the build to the named grammars and the grammars
	// they reference. Empty builds everything.
	Whitelist []string
	Slots     []SlotSource
	Logger    *slog.Logger
	Observer  Observer
}

// Result is the outcome of Build. It is returned even when some grammars
// failed; Intents and Merged then hold the grammars that compiled.
type Result struct {
	Context  *Context
	Grammars map[string]*CompiledGrammar
	Graphs   map[string]*DependencyGraph
	// Intents maps intent names to their epsilon-free automata.
	Intents    map[string]*fst.FST
	Merged     *fst.FST
	Vocabulary []string
	// Skipped lists grammars left out by the whitelist.
	Skipped []string
}

// BuildError aggregates per-grammar failures.
type BuildError struct {
	Failures map[string]error
}

// Grammars returns the failed grammar names, sorted.
func (e *BuildError) Grammars() []string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *BuildError) Error() string {
	names := e.Grammars()
	if len(names) == 1 {
		return e.Failures[names[0]].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d grammars failed:\n", len(names))
	for i, name := range names {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, e.Failures[name])
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, name := range e.Grammars() {
		errs = append(errs, e.Failures[name])
	}
	return errs
}

type job struct {
	name  string
	g     *jsgf.Grammar
	dg    *DependencyGraph
	done  chan struct{}
	out   *CompiledGrammar
	err   error
	start time.Time
}

type builder struct {
	cctx     *Context
	opts     Options
	logger   *slog.Logger
	slots    *SlotCache
	jobs     map[string]*job
	failures map[string]error
}

// Build parses, resolves and compiles every source and merges the intents.
// Grammars are compiled in parallel, each waiting for the grammars it
// references. A failing grammar fails its dependents but nothing else.
// The returned error is a *BuildError, or ctx's error if ctx ends first.
func Build(ctx context.Context, sources []Source, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	cctx := NewContext()
	b := &builder{
		cctx:     cctx,
		opts:     opts,
		logger:   opts.Logger,
		slots:    NewSlotCache(cctx, opts.Slots...),
		jobs:     make(map[string]*job),
		failures: make(map[string]error),
	}

	b.parse(sources)
	skipped := b.applyWhitelist()
	b.checkRemote()
	order := b.order()

	var slotNames []string
	for _, j := range b.jobs {
		if j.err != nil {
			continue
		}
		for _, n := range j.dg.Slots() {
			slotNames = append(slotNames, n.Name)
		}
	}
	sort.Strings(slotNames)
	if err := b.slots.Prepare(ctx, slotNames); err != nil {
		return nil, err
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for _, name := range order {
		j := b.jobs[name]
		eg.Go(func() error {
			defer close(j.done)
			return b.run(egctx, j)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Context:  cctx,
		Grammars: make(map[string]*CompiledGrammar),
		Graphs:   make(map[string]*DependencyGraph),
		Intents:  make(map[string]*fst.FST),
		Skipped:  skipped,
	}
	for name, j := range b.jobs {
		res.Graphs[name] = j.dg
		if j.err != nil {
			b.failures[name] = j.err
			continue
		}
		res.Grammars[name] = j.out
		res.Intents[name] = j.out.Intent
	}
	res.Merged = Assemble(cctx, res.Intents)
	res.Vocabulary = Vocabulary(res.Merged)

	for _, name := range sortedKeys(b.failures) {
		b.logger.Error("grammar failed", "grammar", name, "error", b.failures[name])
	}
	b.logger.Info("build finished",
		"intents", len(res.Intents),
		"failed", len(b.failures),
		"states", res.Merged.NumStates(),
		"arcs", res.Merged.NumArcs(),
		"vocabulary", len(res.Vocabulary),
	)

	if len(b.failures) > 0 {
		return res, &BuildError{Failures: b.failures}
	}
	return res, nil
}

func (b *builder) parse(sources []Source) {
	for _, src := range sources {
		g, err := jsgf.Parse(src.Name, src.Text)
		if err != nil {
			b.fail(src.Name, err)
			continue
		}
		if _, dup := b.jobs[g.Name]; dup {
			b.fail(g.Name+" ("+src.Name+")", &domain.SyntaxError{Grammar: g.Name, Line: 1, Column: 1, Msg: "grammar defined by more than one source"})
			continue
		}
		dg, err := Resolve(g)
		if err != nil {
			b.fail(g.Name, err)
			continue
		}
		b.jobs[g.Name] = &job{name: g.Name, g: g, dg: dg, done: make(chan struct{})}
	}
}

// applyWhitelist applies the whitelist and returns the grammars left out.
func (b *builder) applyWhitelist() []string {
	if len(b.opts.Whitelist) == 0 {
		return nil
	}
	keep := make(map[string]bool)
	queue := append([]string(nil), b.opts.Whitelist...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if keep[name] {
			continue
		}
		keep[name] = true
		j, ok := b.jobs[name]
		if !ok {
			if _, failed := b.failures[name]; !failed {
				b.fail(name, &domain.UnresolvedReferenceError{Grammar: name, Reference: name, Kind: domain.KindGrammar, Err: domain.ErrGrammarNotFound})
			}
			continue
		}
		queue = append(queue, j.dg.RemoteGrammars()...)
	}

	var skipped []string
	for name := range b.jobs {
		if !keep[name] {
			skipped = append(skipped, name)
			delete(b.jobs, name)
		}
	}
	for name := range b.failures {
		if !keep[name] {
			delete(b.failures, name)
		}
	}
	sort.Strings(skipped)
	for _, name := range skipped {
		b.logger.Debug("grammar skipped by whitelist", "grammar", name)
	}
	return skipped
}

// checkRemote fails grammars whose remote rules do not exist.
func (b *builder) checkRemote() {
	for _, name := range sortedKeys(b.jobs) {
		j := b.jobs[name]
		for _, n := range j.dg.RemoteRules() {
			target, ok := b.jobs[n.Grammar]
			if !ok {
				cause, failed := b.failures[n.Grammar]
				if !failed {
					cause = domain.ErrGrammarNotFound
				}
				j.err = &domain.UnresolvedReferenceError{Grammar: name, Reference: n.Grammar, Kind: domain.KindGrammar, Err: cause}
				break
			}
			if _, ok := target.g.Rule(n.Rule); !ok {
				j.err = &domain.UnresolvedReferenceError{Grammar: name, Reference: n.Symbol(), Kind: domain.KindRemoteRule}
				break
			}
		}
	}
}

// order returns every job with referenced grammars first. Grammars in a
// reference cycle are failed.
func (b *builder) order() []string {
	names := sortedKeys(b.jobs)
	next := func(n string) []string {
		j := b.jobs[n]
		if j == nil || j.err != nil {
			return nil
		}
		var deps []string
		for _, d := range j.dg.RemoteGrammars() {
			if _, ok := b.jobs[d]; ok {
				deps = append(deps, d)
			}
		}
		return deps
	}
	for {
		order, cycle := topoSort(names, next)
		if cycle == nil {
			return order
		}
		for i, n := range cycle[:len(cycle)-1] {
			b.jobs[n].err = &domain.UnresolvedReferenceError{Grammar: n, Reference: cycle[i+1], Kind: domain.KindGrammar, Cycle: cycle}
		}
	}
}

func (b *builder) run(ctx context.Context, j *job) error {
	if j.err != nil {
		return nil
	}
	for _, dep := range j.dg.RemoteGrammars() {
		d := b.jobs[dep]
		select {
		case <-d.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		if d.err != nil {
			j.err = &domain.UnresolvedReferenceError{Grammar: j.name, Reference: dep, Kind: domain.KindGrammar, Err: d.err}
			return nil
		}
	}

	j.start = time.Now()
	j.out, j.err = b.compile(j)
	if b.opts.Observer != nil {
		b.opts.Observer.GrammarCompiled(j.name, time.Since(j.start), j.err)
	}
	if j.err == nil {
		b.logger.Debug("grammar compiled",
			"grammar", j.name,
			"states", j.out.Intent.NumStates(),
			"arcs", j.out.Intent.NumArcs(),
			"elapsed", time.Since(j.start),
		)
	}
	return nil
}

func (b *builder) compile(j *job) (*CompiledGrammar, error) {
	refs := make(map[string]*fst.FST)
	for _, n := range j.dg.Slots() {
		f, err := b.slots.Get(n.Name)
		if err != nil {
			return nil, slotFailure(j.name, n.Name, err)
		}
		refs[n.Name] = f
	}
	for _, n := range j.dg.RemoteRules() {
		refs[n.Symbol()] = b.jobs[n.Grammar].out.Rules[n.Symbol()]
	}
	return CompileGrammar(b.cctx, j.g, j.dg, refs)
}

// slotFailure attributes a cached slot error to grammar without mutating it.
func slotFailure(grammar, slot string, err error) error {
	var ure *domain.UnresolvedReferenceError
	if errors.As(err, &ure) && ure.Reference == slot && ure.Grammar == "" && len(ure.Cycle) == 0 {
		attributed := *ure
		attributed.Grammar = grammar
		return &attributed
	}
	return fmt.Errorf("grammar %s: slot %s: %w", grammar, slot, err)
}

func (b *builder) fail(name string, err error) {
	b.failures[name] = err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
