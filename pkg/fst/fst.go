package fst

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
)

// StateID addresses a state inside one FST.
type StateID int

// NoState marks an unset start state.
const NoState StateID = -1

// DefaultWeight is the weight given to arcs created without one.
const DefaultWeight float32 = 1

// Arc is a labeled transition. In and Out are symbol ids in the FST's
// input and output tables.
type Arc struct {
	In     int
	Out    int
	Weight float32
	Next   StateID
}

type state struct {
	arcs  []Arc
	final bool
}

// FST is a weighted finite-state transducer over an index-based state arena.
// Once an FST has been handed to a recognizer it must not be mutated.
type FST struct {
	in     *SymbolTable
	out    *SymbolTable
	start  StateID
	states []state
}

// New creates an empty FST over the given symbol tables.
// Nil tables are replaced with fresh ones.
func New(in, out *SymbolTable) *FST {
	if in == nil {
		in = NewSymbolTable()
	}
	if out == nil {
		out = NewSymbolTable()
	}
	return &FST{in: in, out: out, start: NoState}
}

// InputSymbols returns the input symbol table.
func (f *FST) InputSymbols() *SymbolTable { return f.in }

// OutputSymbols returns the output symbol table.
func (f *FST) OutputSymbols() *SymbolTable { return f.out }

// AddState appends a new non-final state and returns its id.
func (f *FST) AddState() StateID {
	f.states = append(f.states, state{})
	return StateID(len(f.states) - 1)
}

// NumStates returns the number of states.
func (f *FST) NumStates() int { return len(f.states) }

// Start returns the start state, NoState when unset.
func (f *FST) Start() StateID { return f.start }

// SetStart designates s as the start state.
func (f *FST) SetStart(s StateID) {
	f.mustHave(s)
	f.start = s
}

// SetFinal marks or unmarks s as final.
func (f *FST) SetFinal(s StateID, final bool) {
	f.mustHave(s)
	f.states[s].final = final
}

// IsFinal reports whether s is final.
func (f *FST) IsFinal(s StateID) bool {
	return f.valid(s) && f.states[s].final
}

// Finals returns the final states in id order.
func (f *FST) Finals() []StateID {
	var out []StateID
	for i, st := range f.states {
		if st.final {
			out = append(out, StateID(i))
		}
	}
	return out
}

// AddArc appends arc to the arcs leaving s.
func (f *FST) AddArc(s StateID, arc Arc) {
	f.mustHave(s)
	f.mustHave(arc.Next)
	f.states[s].arcs = append(f.states[s].arcs, arc)
}

// AddLabeledArc interns in and out and appends an arc from s to next with the default weight.
// An empty label is epsilon.
func (f *FST) AddLabeledArc(s StateID, in, out string, next StateID) {
	f.AddArc(s, Arc{In: f.in.Add(in), Out: f.out.Add(out), Weight: DefaultWeight, Next: next})
}

// Arcs returns the arcs leaving s. The slice belongs to the FST.
func (f *FST) Arcs(s StateID) []Arc {
	if !f.valid(s) {
		return nil
	}
	return f.states[s].arcs
}

// NumArcs returns the total number of arcs.
func (f *FST) NumArcs() int {
	n := 0
	for _, st := range f.states {
		n += len(st.arcs)
	}
	return n
}

// InputLabel returns the input symbol of arc.
func (f *FST) InputLabel(arc Arc) string { return f.in.Symbol(arc.In) }

// OutputLabel returns the output symbol of arc.
func (f *FST) OutputLabel(arc Arc) string { return f.out.Symbol(arc.Out) }

// Copy returns a deep copy of the states. Symbol tables are shared.
func (f *FST) Copy() *FST {
	c := &FST{in: f.in, out: f.out, start: f.start, states: make([]state, len(f.states))}
	for i, st := range f.states {
		c.states[i] = state{final: st.final, arcs: append([]Arc(nil), st.arcs...)}
	}
	return c
}

// Insert copies every state and arc of src into f under fresh ids and
// returns the offset added to src's ids. Finals keep their flag; the caller
// decides how the copy is connected. Symbols are remapped by value when the
// tables differ.
func (f *FST) Insert(src *FST) StateID {
	offset := StateID(len(f.states))
	inMap := f.remap(src.in, f.in)
	outMap := f.remap(src.out, f.out)

	for _, st := range src.states {
		ns := state{final: st.final, arcs: make([]Arc, len(st.arcs))}
		for i, a := range st.arcs {
			ns.arcs[i] = Arc{
				In:     inMap(a.In),
				Out:    outMap(a.Out),
				Weight: a.Weight,
				Next:   a.Next + offset,
			}
		}
		f.states = append(f.states, ns)
	}
	return offset
}

func (f *FST) remap(from, to *SymbolTable) func(int) int {
	if from == to {
		return func(id int) int { return id }
	}
	cache := make(map[int]int)
	return func(id int) int {
		if id == 0 {
			return 0
		}
		if v, ok := cache[id]; ok {
			return v
		}
		v := to.Add(from.Symbol(id))
		cache[id] = v
		return v
	}
}

func (f *FST) valid(s StateID) bool {
	return s >= 0 && int(s) < len(f.states)
}

func (f *FST) mustHave(s StateID) {
	if !f.valid(s) {
		panic(fmt.Sprintf("fst: state %d out of range [0,%d)", s, len(f.states)))
	}
}

// IsEpsilon reports whether arc consumes and emits nothing.
func IsEpsilon(arc Arc) bool { return arc.In == 0 && arc.Out == 0 }

// IsPlaceholder reports whether arc is a replace-symbol arc awaiting splicing.
func (f *FST) IsPlaceholder(arc Arc) bool {
	return arc.In == 0 && arc.Out != 0 && domain.IsReplaceSymbol(f.out.Symbol(arc.Out))
}
