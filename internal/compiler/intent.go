package compiler

import (
	"sort"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
)

// Assemble merges per-intent automata behind one start state. The arc into
// each intent emits __label__<Intent> and consumes nothing; intents are
// entered in lexicographic order. Intent automata are copied, not shared.
func Assemble(ctx *Context, intents map[string]*fst.FST) *fst.FST {
	names := make([]string, 0, len(intents))
	for name := range intents {
		names = append(names, name)
	}
	sort.Strings(names)

	branches := make([]fst.Labeled, 0, len(names))
	for _, name := range names {
		branches = append(branches, fst.Labeled{Label: domain.LabelMarker(name), FST: intents[name]})
	}
	return fst.Connect(fst.LabeledUnion(ctx.In, ctx.Out, branches))
}
