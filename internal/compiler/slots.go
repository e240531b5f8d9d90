package compiler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/jsgf"
	"github.com/aretw0/lattice/pkg/ports"
)

// SlotSource supplies slot word lists. Name identifies it in conflict reports.
type SlotSource struct {
	Name   string
	Loader ports.SlotLoader
}

type slotVersion struct {
	source string
	exprs  []jsgf.Expr
}

type slotDef struct {
	versions []slotVersion
	deps     []string
	err      error
}

type slotResult struct {
	f   *fst.FST
	err error
}

// SlotCache loads and compiles slots once per compilation. Every caller of
// Get for the same slot receives the same automaton instance.
type SlotCache struct {
	ctx     *Context
	sources []SlotSource

	mu    sync.Mutex
	defs  map[string]*slotDef
	done  map[string]slotResult
	group singleflight.Group

	compilations atomic.Int64
}

// NewSlotCache creates a cache reading from sources in order.
func NewSlotCache(ctx *Context, sources ...SlotSource) *SlotCache {
	return &SlotCache{
		ctx:     ctx,
		sources: sources,
		defs:    make(map[string]*slotDef),
		done:    make(map[string]slotResult),
	}
}

// Prepare loads the named slots and every slot they reference, and rejects
// reference cycles among them. It must run before Get; failures are kept
// per slot and reported by Get.
func (c *SlotCache) Prepare(ctx context.Context, names []string) error {
	queue := append([]string(nil), names...)
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := domain.SlotSymbol(queue[0])
		queue = queue[1:]

		c.mu.Lock()
		_, known := c.defs[name]
		c.mu.Unlock()
		if known {
			continue
		}

		def := c.load(ctx, name)
		c.mu.Lock()
		c.defs[name] = def
		c.mu.Unlock()
		queue = append(queue, def.deps...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		var names []string
		for name, def := range c.defs {
			if def.err == nil {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		_, cycle := topoSort(names, func(n string) []string {
			if def := c.defs[n]; def != nil && def.err == nil {
				return def.deps
			}
			return nil
		})
		if cycle == nil {
			return nil
		}
		for _, n := range cycle {
			c.defs[n].err = &domain.UnresolvedReferenceError{Grammar: n, Reference: n, Kind: domain.KindSlot, Cycle: cycle}
		}
	}
}

func (c *SlotCache) load(ctx context.Context, name string) *slotDef {
	def := &slotDef{}
	bare := strings.TrimPrefix(name, "$")
	var lastMiss error
	seenDep := make(map[string]bool)

	for _, src := range c.sources {
		lines, err := src.Loader.LoadSlot(ctx, bare)
		if errors.Is(err, domain.ErrSlotNotFound) {
			lastMiss = err
			continue
		}
		if err != nil {
			def.err = &domain.UnresolvedReferenceError{Grammar: name, Reference: name, Kind: domain.KindSlot, Err: fmt.Errorf("%s: %w", src.Name, err)}
			return def
		}

		version := slotVersion{source: src.Name}
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			e, err := jsgf.ParseExpression(line)
			if err != nil {
				var se *domain.SyntaxError
				if errors.As(err, &se) {
					se.Grammar, se.Line = name, i+1
				}
				def.err = err
				return def
			}
			deps, err := slotDeps(name, i+1, e)
			if err != nil {
				def.err = err
				return def
			}
			for _, d := range deps {
				if !seenDep[d] {
					seenDep[d] = true
					def.deps = append(def.deps, d)
				}
			}
			version.exprs = append(version.exprs, e)
		}
		def.versions = append(def.versions, version)
	}

	if len(def.versions) == 0 {
		if lastMiss == nil {
			lastMiss = domain.ErrSlotNotFound
		}
		def.err = &domain.UnresolvedReferenceError{Reference: name, Kind: domain.KindSlot, Err: lastMiss}
	}
	return def
}

// slotDeps returns the slots referenced by a slot value line. Rule
// references are not allowed inside slots.
func slotDeps(slot string, line int, e jsgf.Expr) ([]string, error) {
	var deps []string
	var err error
	var walk func(jsgf.Expr)
	walk = func(e jsgf.Expr) {
		switch n := e.(type) {
		case jsgf.SlotRef:
			deps = append(deps, domain.SlotSymbol(n.Name))
		case jsgf.RuleRef:
			if err == nil {
				err = &domain.SyntaxError{Grammar: slot, Line: line, Column: 1, Msg: fmt.Sprintf("rule reference <%s> not allowed in a slot", n.Rule)}
			}
		case jsgf.Sequence:
			for _, item := range n.Items {
				walk(item)
			}
		case jsgf.Alternative:
			for _, item := range n.Items {
				walk(item)
			}
		case jsgf.Optional:
			walk(n.Item)
		case jsgf.Tagged:
			walk(n.Item)
		case jsgf.Substituted:
			walk(n.Item)
		case jsgf.Repeat:
			walk(n.Item)
		}
	}
	walk(e)
	return deps, err
}

// Get returns the compiled automaton for a slot ("colors" or "$colors").
func (c *SlotCache) Get(name string) (*fst.FST, error) {
	name = domain.SlotSymbol(name)
	c.mu.Lock()
	if r, ok := c.done[name]; ok {
		c.mu.Unlock()
		return r.f, r.err
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.Lock()
		if r, ok := c.done[name]; ok {
			c.mu.Unlock()
			return r.f, r.err
		}
		c.mu.Unlock()

		f, err := c.compile(name)
		c.mu.Lock()
		c.done[name] = slotResult{f: f, err: err}
		c.mu.Unlock()
		return f, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*fst.FST), nil
}

// Compilations returns how many slot automata were built.
func (c *SlotCache) Compilations() int64 {
	return c.compilations.Load()
}

func (c *SlotCache) compile(name string) (*fst.FST, error) {
	c.mu.Lock()
	def := c.defs[name]
	c.mu.Unlock()
	if def == nil {
		return nil, &domain.UnresolvedReferenceError{Reference: name, Kind: domain.KindSlot, Err: errors.New("slot was not prepared")}
	}
	if def.err != nil {
		return nil, def.err
	}

	refs := make(map[string]*fst.FST, len(def.deps))
	for _, dep := range def.deps {
		f, err := c.Get(dep)
		if err != nil {
			return nil, &domain.UnresolvedReferenceError{Grammar: name, Reference: dep, Kind: domain.KindSlot, Err: err}
		}
		refs[dep] = f
	}

	var first *fst.FST
	for _, v := range def.versions {
		f, err := c.build(name, v, refs)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = f
			continue
		}
		if !fst.Equal(first, f) {
			sources := make([]string, len(def.versions))
			for i, v := range def.versions {
				sources[i] = v.source
			}
			return nil, &domain.DuplicateSlotConflictError{Slot: name, Sources: sources}
		}
	}
	return first, nil
}

func (c *SlotCache) build(name string, v slotVersion, refs map[string]*fst.FST) (*fst.FST, error) {
	c.compilations.Add(1)
	if len(v.exprs) == 0 {
		return c.ctx.NewFST(), nil
	}
	members := make([]*fst.FST, 0, len(v.exprs))
	for _, e := range v.exprs {
		f, err := compileExpr(c.ctx, name, 0, e)
		if err != nil {
			return nil, err
		}
		members = append(members, f)
	}
	spliced, err := fst.Replace(fst.Union(members...), refs)
	if err != nil {
		return nil, attribute(name, err)
	}
	return fst.RmEpsilon(spliced), nil
}
