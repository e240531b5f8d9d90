package fst

// RmEpsilon returns an equivalent FST without arcs that are epsilon on both
// sides. Arcs that emit output without consuming input (entity and intent
// markers) are kept. The relative order of the remaining arcs follows the
// order in which the original paths would have been explored, so branch
// order survives the collapse.
//
// States reached only through epsilon arcs become unreachable and are
// trimmed by a final Connect.
func RmEpsilon(f *FST) *FST {
	out := New(f.in, f.out)
	for range f.states {
		out.AddState()
	}
	if f.start == NoState {
		return out
	}
	out.start = f.start

	for s := range f.states {
		visited := make(map[StateID]bool)
		var arcs []Arc
		final := false

		var expand func(q StateID, w float32)
		expand = func(q StateID, w float32) {
			if visited[q] {
				return
			}
			visited[q] = true
			if f.states[q].final {
				final = true
			}
			for _, a := range f.states[q].arcs {
				if IsEpsilon(a) {
					expand(a.Next, w*a.Weight)
					continue
				}
				a.Weight *= w
				arcs = append(arcs, a)
			}
		}
		expand(StateID(s), 1)

		out.states[s].arcs = arcs
		out.states[s].final = final
	}

	return Connect(out)
}
