package fst

// Connect returns f restricted to states that are reachable from the start
// and can reach a final state. States are renumbered in breadth-first order
// from the start (which becomes state 0); arc order is preserved.
// When no final state is reachable the result has no states.
func Connect(f *FST) *FST {
	out := New(f.in, f.out)
	if f.start == NoState {
		return out
	}

	// Backward reachability from finals.
	reverse := make([][]StateID, len(f.states))
	for s, st := range f.states {
		for _, a := range st.arcs {
			reverse[a.Next] = append(reverse[a.Next], StateID(s))
		}
	}
	coaccessible := make([]bool, len(f.states))
	var stack []StateID
	for _, fin := range f.Finals() {
		coaccessible[fin] = true
		stack = append(stack, fin)
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range reverse[s] {
			if !coaccessible[p] {
				coaccessible[p] = true
				stack = append(stack, p)
			}
		}
	}
	if !coaccessible[f.start] {
		return out
	}

	// Forward BFS assigns the new ids.
	ids := make(map[StateID]StateID)
	order := []StateID{f.start}
	ids[f.start] = 0
	for i := 0; i < len(order); i++ {
		for _, a := range f.states[order[i]].arcs {
			if !coaccessible[a.Next] {
				continue
			}
			if _, ok := ids[a.Next]; !ok {
				ids[a.Next] = StateID(len(order))
				order = append(order, a.Next)
			}
		}
	}

	out.states = make([]state, len(order))
	for newID, old := range order {
		st := f.states[old]
		ns := state{final: st.final}
		for _, a := range st.arcs {
			if next, ok := ids[a.Next]; ok {
				a.Next = next
				ns.arcs = append(ns.arcs, a)
			}
		}
		out.states[newID] = ns
	}
	out.start = 0
	return out
}
