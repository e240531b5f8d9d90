package fst

import (
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Path is one walk from the start state to a final state.
type Path struct {
	Arcs   []Arc
	Weight float32
}

// Walk enumerates start-to-final paths depth first, in arc order, calling fn
// for each. Enumeration stops when fn returns false or after limit paths
// (limit <= 0 means no limit). Arcs leading back to a state already on the
// current path are not followed. Returns the number of paths visited.
//
// Walk is the traversal hook used for sentence sampling; fn must not retain
// p.Arcs beyond the call.
func (f *FST) Walk(limit int, fn func(p Path) bool) int {
	if f.start == NoState {
		return 0
	}
	count := 0
	stop := false
	onPath := make([]bool, len(f.states))
	var arcs []Arc

	var visit func(s StateID, w float32)
	visit = func(s StateID, w float32) {
		if stop {
			return
		}
		if f.states[s].final {
			count++
			if !fn(Path{Arcs: arcs, Weight: w}) || (limit > 0 && count >= limit) {
				stop = true
				return
			}
		}
		onPath[s] = true
		for _, a := range f.states[s].arcs {
			if onPath[a.Next] {
				continue
			}
			arcs = append(arcs, a)
			visit(a.Next, w*a.Weight)
			arcs = arcs[:len(arcs)-1]
			if stop {
				break
			}
		}
		onPath[s] = false
	}
	visit(f.start, 1)
	return count
}

// InputWords returns the non-epsilon input symbols along p.
func (f *FST) InputWords(p Path) []string {
	var words []string
	for _, a := range p.Arcs {
		if a.In != 0 {
			words = append(words, f.in.Symbol(a.In))
		}
	}
	return words
}

// OutputWords returns the non-epsilon output symbols along p.
func (f *FST) OutputWords(p Path) []string {
	var words []string
	for _, a := range p.Arcs {
		if a.Out != 0 {
			words = append(words, f.out.Symbol(a.Out))
		}
	}
	return words
}

// Sentences returns the input side of up to limit accepted paths, each
// joined with single spaces.
func (f *FST) Sentences(limit int) []string {
	var out []string
	f.Walk(limit, func(p Path) bool {
		out = append(out, strings.Join(f.InputWords(p), " "))
		return true
	})
	return out
}

// OutputSentences is Sentences for the output side, meta markers included.
func (f *FST) OutputSentences(limit int) []string {
	var out []string
	f.Walk(limit, func(p Path) bool {
		out = append(out, strings.Join(f.OutputWords(p), " "))
		return true
	})
	return out
}

// Words returns the distinct literal input words on f's arcs, sorted.
// Epsilon, meta markers and replace symbols are excluded.
func (f *FST) Words() []string {
	seen := make(map[string]bool)
	var words []string
	for _, st := range f.states {
		for _, a := range st.arcs {
			if a.In == 0 {
				continue
			}
			w := f.in.Symbol(a.In)
			if !seen[w] && domain.IsWord(w) {
				seen[w] = true
				words = append(words, w)
			}
		}
	}
	sort.Strings(words)
	return words
}
