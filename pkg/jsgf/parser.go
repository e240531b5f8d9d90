package jsgf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// MaxRepeat bounds {m,n} repetition.
const MaxRepeat = 32

type parser struct {
	grammar string
	lex     *lexer
	tok     token
	peeked  *token
}

func newParser(grammar, src string) (*parser, error) {
	p := &parser{grammar: grammar, lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &domain.SyntaxError{Grammar: p.grammar, Line: t.line, Column: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) read() (token, error) {
	t, lerr := p.lex.next()
	if lerr != nil {
		return token{}, &domain.SyntaxError{Grammar: p.grammar, Line: lerr.line, Column: lerr.col, Msg: lerr.msg}
	}
	return t, nil
}

func (p *parser) advance() error {
	if p.peeked != nil {
		p.tok, p.peeked = *p.peeked, nil
		return nil
	}
	t, err := p.read()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) peek() (token, error) {
	if p.peeked == nil {
		t, err := p.read()
		if err != nil {
			return token{}, err
		}
		p.peeked = &t
	}
	return *p.peeked, nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.tok
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", kind, describe(t))
	}
	return t, p.advance()
}

func describe(t token) string {
	switch t.kind {
	case tokWord:
		return fmt.Sprintf("word %q", t.text)
	case tokUnknown:
		return fmt.Sprintf("unknown operator %q", t.text)
	case tokRule:
		return fmt.Sprintf("rule reference <%s>", t.text)
	case tokSlot:
		return fmt.Sprintf("slot reference $%s", t.text)
	}
	return t.kind.String()
}

// Parse reads one grammar. name is used when the source carries no
// grammar declaration; a declaration overrides it.
func Parse(name, src string) (*Grammar, error) {
	p, err := newParser(name, src)
	if err != nil {
		return nil, err
	}
	g := &Grammar{Name: name}
	declared := false

	for p.tok.kind != tokEOF {
		start := p.tok
		if start.kind == tokWord && (start.text == "grammar" || start.text == "import") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			switch start.text {
			case "grammar":
				if declared || len(g.Rules) > 0 {
					return nil, p.errorf(start, "grammar declaration must come first")
				}
				nameTok, err := p.expect(tokWord)
				if err != nil {
					return nil, err
				}
				g.Name = nameTok.text
				p.grammar = g.Name
				declared = true
			case "import":
				// Cross-grammar references resolve by name; imports carry no extra meaning.
				if _, err := p.expect(tokRule); err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(tokSemicolon); err != nil {
				return nil, err
			}
			continue
		}

		rule, err := p.rule()
		if err != nil {
			return nil, err
		}
		if !g.add(rule) {
			return nil, p.errorf(start, "duplicate rule <%s>", rule.Name)
		}
	}

	if g.Name == "" {
		return nil, &domain.SyntaxError{Line: 1, Column: 1, Msg: "grammar has no name"}
	}
	return g, nil
}

func (p *parser) rule() (*Rule, error) {
	r := &Rule{Line: p.tok.line}
	if p.tok.kind == tokWord && p.tok.text == "public" {
		r.Public = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	nameTok, err := p.expect(tokRule)
	if err != nil {
		return nil, err
	}
	if strings.Contains(nameTok.text, ".") {
		return nil, p.errorf(nameTok, "rule name <%s> must not be qualified", nameTok.text)
	}
	r.Name = nameTok.text
	if _, err := p.expect(tokEquals); err != nil {
		return nil, err
	}
	if r.Expr, err = p.alternative(); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokSemicolon); err != nil {
		return nil, err
	}
	return r, nil
}

// ParseExpression parses a bare rule body, as used by slot value lines.
func ParseExpression(src string) (Expr, error) {
	p, err := newParser("", src)
	if err != nil {
		return nil, err
	}
	e, err := p.alternative()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf(p.tok, "unexpected %s", describe(p.tok))
	}
	return e, nil
}

func (p *parser) alternative() (Expr, error) {
	var items []Expr
	for {
		at := p.tok
		seq, err := p.sequence()
		if err != nil {
			return nil, err
		}
		if seq == nil {
			return nil, p.errorf(at, "empty alternative")
		}
		items = append(items, seq)
		if p.tok.kind != tokPipe {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return Alternative{Items: items}, nil
}

// sequence returns nil when no item is present.
func (p *parser) sequence() (Expr, error) {
	var items []Expr
	for {
		switch p.tok.kind {
		case tokWord, tokSlot, tokRule, tokLParen, tokLBracket:
		case tokStar, tokPlus:
			return nil, p.errorf(p.tok, "unbounded repetition %q is not supported", p.tok.text)
		case tokUnknown:
			return nil, p.errorf(p.tok, "unknown operator %q", p.tok.text)
		case tokColon:
			return nil, p.errorf(p.tok, "substitution without a preceding word or group")
		case tokBrace:
			return nil, p.errorf(p.tok, "tag {%s} without a preceding item", p.tok.text)
		default:
			switch len(items) {
			case 0:
				return nil, nil
			case 1:
				return items[0], nil
			}
			return Sequence{Items: items}, nil
		}
		item, err := p.postfix()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *parser) postfix() (Expr, error) {
	item, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.kind {
		case tokColon:
			if p.tok.spaced {
				return nil, p.errorf(p.tok, "substitution must follow its word without spaces")
			}
			if item, err = p.substitution(item); err != nil {
				return nil, err
			}
		case tokBrace:
			if item, err = p.brace(item); err != nil {
				return nil, err
			}
		case tokStar, tokPlus:
			return nil, p.errorf(p.tok, "unbounded repetition %q is not supported", p.tok.text)
		default:
			return item, nil
		}
	}
}

func (p *parser) substitution(item Expr) (Expr, error) {
	colon := p.tok
	next, err := p.peek()
	if err != nil {
		return nil, err
	}
	sub := ""
	if next.kind == tokWord && !next.spaced {
		sub = next.text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch it := item.(type) {
	case Word:
		if it.HasSub {
			return nil, p.errorf(colon, "word %q already has a substitution", it.Text)
		}
		it.Sub, it.HasSub = sub, true
		return it, nil
	case SlotRef, RuleRef:
		return nil, p.errorf(colon, "references cannot be substituted")
	}
	return Substituted{Item: item, Sub: sub}, nil
}

// brace handles {tag}, {n} and {m,n}.
func (p *parser) brace(item Expr) (Expr, error) {
	t := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	body := t.text
	if body == "" {
		return nil, p.errorf(t, "empty tag")
	}
	if c := body[0]; c >= '0' && c <= '9' {
		lo, hi, ok := parseBounds(body)
		if !ok {
			return nil, p.errorf(t, "invalid repetition {%s}", body)
		}
		if hi > MaxRepeat {
			return nil, p.errorf(t, "repetition {%s} exceeds %d", body, MaxRepeat)
		}
		return Repeat{Item: item, Min: lo, Max: hi}, nil
	}
	if strings.ContainsAny(body, " \t,") {
		return nil, p.errorf(t, "invalid tag {%s}", body)
	}
	return Tagged{Item: item, Tag: body}, nil
}

func parseBounds(body string) (int, int, bool) {
	loStr, hiStr, ranged := strings.Cut(body, ",")
	lo, err := strconv.Atoi(strings.TrimSpace(loStr))
	if err != nil || lo < 0 {
		return 0, 0, false
	}
	if !ranged {
		return lo, lo, lo > 0
	}
	hi, err := strconv.Atoi(strings.TrimSpace(hiStr))
	if err != nil || hi < lo || hi == 0 {
		return 0, 0, false
	}
	return lo, hi, true
}

func (p *parser) atom() (Expr, error) {
	t := p.tok
	switch t.kind {
	case tokWord:
		return Word{Text: t.text}, p.advance()
	case tokSlot:
		return SlotRef{Name: t.text}, p.advance()
	case tokRule:
		ref := RuleRef{Rule: t.text}
		if i := strings.LastIndex(t.text, "."); i >= 0 {
			ref.Grammar, ref.Rule = t.text[:i], t.text[i+1:]
			if ref.Grammar == "" || ref.Rule == "" {
				return nil, p.errorf(t, "malformed rule reference <%s>", t.text)
			}
		}
		return ref, p.advance()
	case tokLParen, tokLBracket:
		closer := tokRParen
		if t.kind == tokLBracket {
			closer = tokRBracket
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.alternative()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != closer {
			return nil, p.errorf(p.tok, "unbalanced %s opened at %d:%d: found %s", t.kind, t.line, t.col, describe(p.tok))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if t.kind == tokLBracket {
			return Optional{Item: inner}, nil
		}
		return inner, nil
	}
	return nil, p.errorf(t, "unexpected %s", describe(t))
}
