package recognizer

import (
	"math"

	"github.com/aretw0/lattice/pkg/fst"
)

const unreachable = math.MaxInt32

// Graph pairs an automaton with the completion cost of each state for fuzzy
// search. It is built once per automaton and only read afterwards.
type Graph struct {
	f *fst.FST
	// cost[s] is the fewest words that must still be consumed to reach a final state.
	cost []int
}

// NewGraph computes the completion costs of f.
func NewGraph(f *fst.FST) *Graph {
	n := f.NumStates()
	g := &Graph{
		f:    f,
		cost: make([]int, n),
	}
	reverse := make([][]fst.Arc, n)
	for s := 0; s < n; s++ {
		for _, a := range f.Arcs(fst.StateID(s)) {
			// Reverse arcs keep their source in Next.
			reverse[a.Next] = append(reverse[a.Next], fst.Arc{In: a.In, Next: fst.StateID(s)})
		}
	}

	// 0-1 BFS backwards from the finals.
	deque := make([]fst.StateID, 0, n)
	for s := 0; s < n; s++ {
		g.cost[s] = unreachable
		if f.IsFinal(fst.StateID(s)) {
			g.cost[s] = 0
			deque = append(deque, fst.StateID(s))
		}
	}
	for len(deque) > 0 {
		s := deque[0]
		deque = deque[1:]
		for _, r := range reverse[s] {
			w := 1
			if r.In == 0 {
				w = 0
			}
			if c := g.cost[s] + w; c < g.cost[r.Next] {
				g.cost[r.Next] = c
				if w == 0 {
					deque = append([]fst.StateID{r.Next}, deque...)
				} else {
					deque = append(deque, r.Next)
				}
			}
		}
	}
	return g
}

// Reachable reports whether a final state can be reached from s.
func (g *Graph) Reachable(s fst.StateID) bool {
	return g.cost[s] < unreachable
}

// complete returns the cheapest arcs from s to a final state, preferring
// earlier arcs on ties. It returns false when no final state is reachable.
func (g *Graph) complete(s fst.StateID) ([]fst.Arc, bool) {
	if !g.Reachable(s) {
		return nil, false
	}
	var arcs []fst.Arc
	for steps := 0; !g.f.IsFinal(s); steps++ {
		if steps > len(g.cost) {
			return nil, false
		}
		advanced := false
		for _, a := range g.f.Arcs(s) {
			w := 1
			if a.In == 0 {
				w = 0
			}
			if g.cost[a.Next] < unreachable && g.cost[a.Next]+w == g.cost[s] {
				arcs = append(arcs, a)
				s = a.Next
				advanced = true
				break
			}
		}
		if !advanced {
			return nil, false
		}
	}
	return arcs, true
}
