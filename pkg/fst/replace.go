package fst

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// MaxReplaceStates bounds the size Replace may grow a host to.
const MaxReplaceStates = 1 << 22

// Replace splices referenced automata into host.
//
// Every placeholder arc (u, <eps>:sym, v) whose output symbol is a key of refs
// is removed; a fresh copy of refs[sym] is inserted, u gets an epsilon arc to
// the copy's start and each of the copy's finals gets an epsilon arc to v.
// Placeholders inside inserted copies are expanded as well.
//
// A placeholder with no entry in refs fails with *domain.UnresolvedReferenceError.
// host is not modified.
func Replace(host *FST, refs map[string]*FST) (*FST, error) {
	out := host.Copy()

	for s := 0; s < len(out.states); s++ {
		arcs := out.states[s].arcs
		var kept []Arc
		spliced := false

		for i, arc := range arcs {
			if !out.IsPlaceholder(arc) {
				if spliced {
					kept = append(kept, arc)
				}
				continue
			}
			sym := out.out.Symbol(arc.Out)
			ref, ok := refs[sym]
			if !ok || ref == nil {
				return nil, unresolved(sym)
			}

			if !spliced {
				kept = append(kept, arcs[:i]...)
				spliced = true
			}

			if ref.start == NoState {
				// Empty language: the placeholder arc simply disappears.
				continue
			}
			if len(out.states)+len(ref.states) > MaxReplaceStates {
				return nil, fmt.Errorf("replace %s: automaton exceeds %d states", sym, MaxReplaceStates)
			}

			offset := out.Insert(ref)
			kept = append(kept, Arc{Weight: arc.Weight, Next: ref.start + offset})
			for _, fin := range ref.Finals() {
				copied := fin + offset
				out.states[copied].final = false
				out.states[copied].arcs = append(out.states[copied].arcs, Arc{Weight: DefaultWeight, Next: arc.Next})
			}
		}

		if spliced {
			out.states[s].arcs = kept
		}
	}

	return out, nil
}

// Placeholders returns the distinct replace symbols used by f, in first-seen order.
func Placeholders(f *FST) []string {
	seen := make(map[string]bool)
	var syms []string
	for _, st := range f.states {
		for _, arc := range st.arcs {
			if !f.IsPlaceholder(arc) {
				continue
			}
			sym := f.out.Symbol(arc.Out)
			if !seen[sym] {
				seen[sym] = true
				syms = append(syms, sym)
			}
		}
	}
	return syms
}

func unresolved(sym string) error {
	kind := domain.KindRemoteRule
	if strings.HasPrefix(sym, "$") {
		kind = domain.KindSlot
	}
	return &domain.UnresolvedReferenceError{Reference: sym, Kind: kind}
}
