package recognizer

import (
	"github.com/aretw0/lattice/pkg/fst"
)

// trail is a persistent arc list shared between search configurations.
type trail struct {
	arc  fst.Arc
	prev *trail
}

func (t *trail) push(a fst.Arc) *trail { return &trail{arc: a, prev: t} }

func (t *trail) arcs() []fst.Arc {
	var n int
	for p := t; p != nil; p = p.prev {
		n++
	}
	out := make([]fst.Arc, n)
	for p := t; p != nil; p = p.prev {
		n--
		out[n] = p.arc
	}
	return out
}

type configuration struct {
	state fst.StateID
	score int
	path  *trail
}

type fuzzyMatch struct {
	arcs  []fst.Arc
	score int
}

// acceptFuzzy walks tokens breadth first. Per token a configuration may
// consume it on a matching arc (+1) or, for stop words and skippable unknown
// words, stay put (+0). A token nobody can use is dropped as noise. After
// each token only configurations tied for the best score survive, one per
// (state, score). The survivors are completed to a final state along the
// cheapest arcs; their order follows arc order, which keeps branch order.
func acceptFuzzy(g *Graph, tokens []string, skippable func(string) bool) []fuzzyMatch {
	f := g.f
	if f.Start() == fst.NoState {
		return nil
	}
	frontier := []configuration{{state: f.Start()}}

	for _, tok := range tokens {
		id, known := f.InputSymbols().Find(tok)
		skip := skippable(tok)

		var next []configuration
		for _, c := range frontier {
			if known && id != 0 {
				next = append(next, g.advance(c, id)...)
			}
			if skip {
				next = append(next, c)
			}
		}
		if len(next) == 0 {
			continue
		}
		frontier = prune(next)
	}

	var matches []fuzzyMatch
	for _, c := range frontier {
		tail, ok := g.complete(c.state)
		if !ok {
			continue
		}
		arcs := c.path.arcs()
		matches = append(matches, fuzzyMatch{arcs: append(arcs, tail...), score: c.score})
	}
	return matches
}

// advance consumes token id from c, following input-epsilon arcs first.
func (g *Graph) advance(c configuration, id int) []configuration {
	var out []configuration
	visited := make(map[fst.StateID]bool)

	var walk func(s fst.StateID, path *trail)
	walk = func(s fst.StateID, path *trail) {
		if visited[s] {
			return
		}
		visited[s] = true
		for _, a := range g.f.Arcs(s) {
			switch {
			case a.In == id:
				if g.Reachable(a.Next) {
					out = append(out, configuration{state: a.Next, score: c.score + 1, path: path.push(a)})
				}
			case a.In == 0:
				if g.Reachable(a.Next) {
					walk(a.Next, path.push(a))
				}
			}
		}
	}
	walk(c.state, c.path)
	return out
}

// prune keeps the first configuration per (state, score) among those with
// the highest score.
func prune(configs []configuration) []configuration {
	best := 0
	for _, c := range configs {
		if c.score > best {
			best = c.score
		}
	}
	type key struct {
		state fst.StateID
		score int
	}
	seen := make(map[key]bool)
	kept := configs[:0:0]
	for _, c := range configs {
		k := key{c.state, c.score}
		if c.score != best || seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, c)
	}
	return kept
}
