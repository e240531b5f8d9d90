package recognizer

import (
	"github.com/aretw0/lattice/pkg/fst"
)

// exactSearch enumerates accepting paths for tokens depth first, in arc
// order. Input-epsilon arcs are free; every other arc consumes one token.
type exactSearch struct {
	f        *fst.FST
	ids      []int
	budget   int
	explored int
	paths    [][]fst.Arc
	arcs     []fst.Arc
	onPath   map[[2]int]bool
	stopped  bool
}

// acceptExact returns the arcs of every accepting path, in discovery order.
// truncated is set when the search ran out of budget before finishing.
func acceptExact(f *fst.FST, tokens []string, budget int) (paths [][]fst.Arc, truncated bool) {
	if f.Start() == fst.NoState {
		return nil, false
	}
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		id, ok := f.InputSymbols().Find(tok)
		if !ok || id == 0 {
			// No arc can consume an unknown token.
			return nil, false
		}
		ids[i] = id
	}

	s := &exactSearch{f: f, ids: ids, budget: budget, onPath: make(map[[2]int]bool)}
	s.visit(f.Start(), 0)
	return s.paths, s.stopped
}

func (s *exactSearch) visit(state fst.StateID, pos int) {
	key := [2]int{int(state), pos}
	if s.onPath[key] {
		return
	}
	s.onPath[key] = true
	defer delete(s.onPath, key)

	accepted := pos == len(s.ids) && s.f.IsFinal(state)
	if accepted {
		s.paths = append(s.paths, append([]fst.Arc(nil), s.arcs...))
	}

	followed := false
	for _, a := range s.f.Arcs(state) {
		if s.stopped {
			return
		}
		next := pos
		switch {
		case a.In == 0:
		case pos < len(s.ids) && a.In == s.ids[pos]:
			next++
		default:
			continue
		}
		followed = true
		s.arcs = append(s.arcs, a)
		s.visit(a.Next, next)
		s.arcs = s.arcs[:len(s.arcs)-1]
	}

	// Accepting and dead-end visits both end an explored path.
	if accepted || !followed {
		s.explored++
		if s.budget > 0 && s.explored >= s.budget {
			s.stopped = true
		}
	}
}
