package fst

// Concat returns an FST accepting a followed by b.
// Finals of a are joined to the start of b by epsilon arcs.
func Concat(a, b *FST) *FST {
	out := a.Copy()
	if a.start == NoState || b.start == NoState {
		return New(a.in, a.out)
	}
	finals := out.Finals()
	offset := out.Insert(b)
	for _, s := range finals {
		out.SetFinal(s, false)
		out.AddArc(s, Arc{Weight: DefaultWeight, Next: b.start + offset})
	}
	return out
}

// Union returns an FST accepting the language of any member.
// A fresh start state gets one epsilon arc per member, in argument order.
func Union(members ...*FST) *FST {
	if len(members) == 0 {
		return New(nil, nil)
	}
	out := New(members[0].in, members[0].out)
	start := out.AddState()
	out.SetStart(start)
	for _, m := range members {
		if m.start == NoState {
			continue
		}
		offset := out.Insert(m)
		out.AddArc(start, Arc{Weight: DefaultWeight, Next: m.start + offset})
	}
	return out
}

// Labeled is one branch of a LabeledUnion.
type Labeled struct {
	Label string
	FST   *FST
}

// LabeledUnion is Union where the arc entering each branch emits the branch
// label as output (input epsilon), so the label is the first output symbol
// on every path through that branch.
func LabeledUnion(in, out *SymbolTable, branches []Labeled) *FST {
	u := New(in, out)
	start := u.AddState()
	u.SetStart(start)
	for _, b := range branches {
		if b.FST == nil || b.FST.start == NoState {
			continue
		}
		offset := u.Insert(b.FST)
		u.AddArc(start, Arc{In: 0, Out: u.out.Add(b.Label), Weight: DefaultWeight, Next: b.FST.start + offset})
	}
	return u
}

// Equal reports whether a and b have the same start, states, finals and arcs,
// comparing symbols by value.
func Equal(a, b *FST) bool {
	if a.start != b.start || len(a.states) != len(b.states) {
		return false
	}
	for i := range a.states {
		sa, sb := a.states[i], b.states[i]
		if sa.final != sb.final || len(sa.arcs) != len(sb.arcs) {
			return false
		}
		for j := range sa.arcs {
			x, y := sa.arcs[j], sb.arcs[j]
			if x.Next != y.Next || x.Weight != y.Weight {
				return false
			}
			if a.in.Symbol(x.In) != b.in.Symbol(y.In) || a.out.Symbol(x.Out) != b.out.Symbol(y.Out) {
				return false
			}
		}
	}
	return true
}
