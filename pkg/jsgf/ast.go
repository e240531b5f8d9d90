package jsgf

// Expr is a node of a rule's expression tree.
type Expr interface {
	exprNode()
}

// Word is a literal token. When HasSub is set the word is emitted as Sub
// (empty Sub emits nothing).
type Word struct {
	Text   string
	Sub    string
	HasSub bool
}

// Sequence matches its items one after the other.
type Sequence struct {
	Items []Expr
}

// Alternative matches exactly one of its items. Item order is preserved.
type Alternative struct {
	Items []Expr
}

// Optional matches its item or nothing.
type Optional struct {
	Item Expr
}

// Tagged marks the span matched by Item as entity Tag.
type Tagged struct {
	Item Expr
	Tag  string
}

// Substituted replaces everything Item emits with Sub.
type Substituted struct {
	Item Expr
	Sub  string
}

// Repeat matches Item between Min and Max times.
type Repeat struct {
	Item Expr
	Min  int
	Max  int
}

// SlotRef refers to an externally supplied slot ($name).
type SlotRef struct {
	Name string
}

// RuleRef refers to a rule. Grammar is empty for local references.
type RuleRef struct {
	Grammar string
	Rule    string
}

func (Word) exprNode()        {}
func (Sequence) exprNode()    {}
func (Alternative) exprNode() {}
func (Optional) exprNode()    {}
func (Tagged) exprNode()      {}
func (Substituted) exprNode() {}
func (Repeat) exprNode()      {}
func (SlotRef) exprNode()     {}
func (RuleRef) exprNode()     {}

// Rule is one named definition.
type Rule struct {
	Name   string
	Public bool
	Expr   Expr
	Line   int
}

// Grammar is a named set of rules. The public rule whose name equals the
// grammar name is the root (the intent).
type Grammar struct {
	Name  string
	Rules []*Rule
	index map[string]*Rule
}

// Rule returns the rule called name.
func (g *Grammar) Rule(name string) (*Rule, bool) {
	r, ok := g.index[name]
	return r, ok
}

// Root returns the rule named after the grammar.
func (g *Grammar) Root() (*Rule, bool) {
	return g.Rule(g.Name)
}

// Qualified returns "Grammar.rule" for a rule of g.
func (g *Grammar) Qualified(rule string) string {
	return g.Name + "." + rule
}

func (g *Grammar) add(r *Rule) bool {
	if g.index == nil {
		g.index = make(map[string]*Rule)
	}
	if _, dup := g.index[r.Name]; dup {
		return false
	}
	g.index[r.Name] = r
	g.Rules = append(g.Rules, r)
	return true
}
