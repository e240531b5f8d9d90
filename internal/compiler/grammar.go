package compiler

import (
	"errors"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/jsgf"
)

// CompiledGrammar holds the spliced automata of one grammar.
type CompiledGrammar struct {
	Name string
	// Rules maps each rule's replace symbol ("<Grammar.rule>") to its
	// spliced automaton, for use by dependent grammars.
	Rules map[string]*fst.FST
	// Intent is the root rule with epsilon arcs removed.
	Intent *fst.FST
}

// CompileGrammar compiles every rule of g in dependency order and splices
// references into it. refs must hold an automaton for every slot and remote
// rule named in dg, keyed by replace symbol.
func CompileGrammar(ctx *Context, g *jsgf.Grammar, dg *DependencyGraph, refs map[string]*fst.FST) (*CompiledGrammar, error) {
	scope := make(map[string]*fst.FST, len(refs)+len(g.Rules))
	for sym, f := range refs {
		scope[sym] = f
	}

	out := &CompiledGrammar{Name: g.Name, Rules: make(map[string]*fst.FST, len(g.Rules))}
	for _, qualified := range dg.Order() {
		node := dg.Nodes[qualified]
		rule, _ := g.Rule(node.Rule)

		fragment, err := CompileRule(ctx, g.Name, rule)
		if err != nil {
			return nil, err
		}
		spliced, err := fst.Replace(fragment, scope)
		if err != nil {
			return nil, attribute(g.Name, err)
		}
		spliced = fst.RmEpsilon(spliced)

		sym := node.Symbol()
		scope[sym] = spliced
		out.Rules[sym] = spliced
	}

	out.Intent = out.Rules[domain.RuleSymbol(g.Name, g.Name)]
	return out, nil
}

func attribute(grammar string, err error) error {
	var ure *domain.UnresolvedReferenceError
	if errors.As(err, &ure) && ure.Grammar == "" {
		ure.Grammar = grammar
	}
	return err
}
