package compiler

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/jsgf"
)

// ruleBuilder grows one fragment per rule. Every sub-expression is built
// from a given entry state and returns a fresh exit state, so alternation
// branches keep their source order on the entry state's arcs.
type ruleBuilder struct {
	ctx     *Context
	grammar string
	line    int
	f       *fst.FST
	// quiet suppresses word outputs inside a group rewrite.
	quiet int
}

// CompileRule compiles one rule of grammar into an automaton fragment.
// References become placeholder arcs: "$slot" for slots and "<G.rule>" for
// rules, local references qualified with grammar.
func CompileRule(ctx *Context, grammar string, rule *jsgf.Rule) (*fst.FST, error) {
	return compileExpr(ctx, grammar, rule.Line, rule.Expr)
}

func compileExpr(ctx *Context, grammar string, line int, e jsgf.Expr) (*fst.FST, error) {
	b := &ruleBuilder{ctx: ctx, grammar: grammar, line: line, f: ctx.NewFST()}
	start := b.f.AddState()
	b.f.SetStart(start)
	end, err := b.build(e, start)
	if err != nil {
		return nil, err
	}
	b.f.SetFinal(end, true)
	return b.f, nil
}

func (b *ruleBuilder) epsilon(from, to fst.StateID) {
	b.f.AddArc(from, fst.Arc{Weight: fst.DefaultWeight, Next: to})
}

func (b *ruleBuilder) build(e jsgf.Expr, from fst.StateID) (fst.StateID, error) {
	switch n := e.(type) {
	case jsgf.Word:
		to := b.f.AddState()
		out := n.Text
		if n.HasSub {
			out = n.Sub
		}
		if b.quiet > 0 {
			out = ""
		}
		b.f.AddLabeledArc(from, n.Text, out, to)
		return to, nil

	case jsgf.Sequence:
		cur := from
		for _, item := range n.Items {
			next, err := b.build(item, cur)
			if err != nil {
				return fst.NoState, err
			}
			cur = next
		}
		return cur, nil

	case jsgf.Alternative:
		end := b.f.AddState()
		for _, item := range n.Items {
			branch := b.f.AddState()
			b.epsilon(from, branch)
			exit, err := b.build(item, branch)
			if err != nil {
				return fst.NoState, err
			}
			b.epsilon(exit, end)
		}
		return end, nil

	case jsgf.Optional:
		to, err := b.build(n.Item, from)
		if err != nil {
			return fst.NoState, err
		}
		b.epsilon(from, to)
		return to, nil

	case jsgf.Tagged:
		open := b.f.AddState()
		b.f.AddLabeledArc(from, "", domain.BeginMarker(n.Tag), open)
		inner, err := b.build(n.Item, open)
		if err != nil {
			return fst.NoState, err
		}
		to := b.f.AddState()
		b.f.AddLabeledArc(inner, "", domain.EndMarker(n.Tag), to)
		return to, nil

	case jsgf.Substituted:
		cur := from
		if n.Sub != "" && b.quiet == 0 {
			cur = b.f.AddState()
			b.f.AddLabeledArc(from, "", n.Sub, cur)
		}
		b.quiet++
		to, err := b.build(n.Item, cur)
		b.quiet--
		return to, err

	case jsgf.Repeat:
		cur := from
		for i := 0; i < n.Min; i++ {
			next, err := b.build(n.Item, cur)
			if err != nil {
				return fst.NoState, err
			}
			cur = next
		}
		if n.Max == n.Min {
			return cur, nil
		}
		end := b.f.AddState()
		for i := n.Min; i < n.Max; i++ {
			next, err := b.build(n.Item, cur)
			if err != nil {
				return fst.NoState, err
			}
			b.epsilon(cur, end)
			cur = next
		}
		b.epsilon(cur, end)
		return end, nil

	case jsgf.SlotRef:
		return b.placeholder(from, domain.SlotSymbol(n.Name))

	case jsgf.RuleRef:
		grammar := n.Grammar
		if grammar == "" {
			grammar = b.grammar
		}
		return b.placeholder(from, domain.RuleSymbol(grammar, n.Rule))
	}
	return fst.NoState, b.errorf("unsupported expression %T", e)
}

func (b *ruleBuilder) placeholder(from fst.StateID, sym string) (fst.StateID, error) {
	if b.quiet > 0 {
		return fst.NoState, b.errorf("reference %s cannot appear inside a rewritten group", sym)
	}
	to := b.f.AddState()
	b.f.AddLabeledArc(from, "", sym, to)
	return to, nil
}

func (b *ruleBuilder) errorf(format string, args ...any) error {
	return &domain.SyntaxError{Grammar: b.grammar, Line: b.line, Column: 1, Msg: fmt.Sprintf(format, args...)}
}
