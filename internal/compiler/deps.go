package compiler

import (
	"sort"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/jsgf"
)

// NodeKind classifies dependency graph nodes.
type NodeKind int

const (
	NodeLocalRule NodeKind = iota
	NodeRemoteRule
	NodeSlot
)

func (k NodeKind) String() string {
	switch k {
	case NodeLocalRule:
		return "local rule"
	case NodeRemoteRule:
		return "remote rule"
	case NodeSlot:
		return "slot"
	}
	return "unknown"
}

// Node is one dependency. Rule names are qualified ("Grammar.rule"), slot
// names carry their "$".
type Node struct {
	Kind NodeKind
	Name string
	// Grammar owns a rule node.
	Grammar string
	Rule    string
}

// Symbol returns the replace symbol standing for n.
func (n Node) Symbol() string {
	if n.Kind == NodeSlot {
		return n.Name
	}
	return domain.RuleSymbol(n.Grammar, n.Rule)
}

// DependencyGraph records which rules of one grammar reference which
// local rules, remote rules and slots.
type DependencyGraph struct {
	Grammar string
	// Nodes holds every node, keyed by Name.
	Nodes map[string]Node
	// Edges maps a qualified local rule to the nodes it references, in first-seen order.
	Edges map[string][]string
	// Vocabulary holds the literal words used directly by the grammar, sorted.
	Vocabulary []string

	order []string
}

// Resolve walks every rule of g and builds its dependency graph. It fails
// with *domain.UnresolvedReferenceError when a local rule is missing, the
// root rule is absent or local rules reference each other in a cycle.
func Resolve(g *jsgf.Grammar) (*DependencyGraph, error) {
	dg := &DependencyGraph{
		Grammar: g.Name,
		Nodes:   make(map[string]Node),
		Edges:   make(map[string][]string),
	}
	if _, ok := g.Root(); !ok {
		return nil, &domain.UnresolvedReferenceError{Grammar: g.Name, Reference: domain.RuleSymbol(g.Name, g.Name), Kind: domain.KindLocalRule}
	}

	words := make(map[string]bool)
	for _, rule := range g.Rules {
		from := g.Qualified(rule.Name)
		dg.Nodes[from] = Node{Kind: NodeLocalRule, Name: from, Grammar: g.Name, Rule: rule.Name}
		seen := make(map[string]bool)

		var walk func(e jsgf.Expr)
		walk = func(e jsgf.Expr) {
			var node Node
			switch n := e.(type) {
			case jsgf.Word:
				words[n.Text] = true
				return
			case jsgf.Sequence:
				for _, item := range n.Items {
					walk(item)
				}
				return
			case jsgf.Alternative:
				for _, item := range n.Items {
					walk(item)
				}
				return
			case jsgf.Optional:
				walk(n.Item)
				return
			case jsgf.Tagged:
				walk(n.Item)
				return
			case jsgf.Substituted:
				walk(n.Item)
				return
			case jsgf.Repeat:
				walk(n.Item)
				return
			case jsgf.SlotRef:
				name := domain.SlotSymbol(n.Name)
				node = Node{Kind: NodeSlot, Name: name}
			case jsgf.RuleRef:
				grammar := n.Grammar
				if grammar == "" {
					grammar = g.Name
				}
				node = Node{Kind: NodeRemoteRule, Name: grammar + "." + n.Rule, Grammar: grammar, Rule: n.Rule}
				if grammar == g.Name {
					node.Kind = NodeLocalRule
				}
			default:
				return
			}
			dg.Nodes[node.Name] = node
			if !seen[node.Name] {
				seen[node.Name] = true
				dg.Edges[from] = append(dg.Edges[from], node.Name)
			}
		}
		walk(rule.Expr)
	}

	for _, rule := range g.Rules {
		for _, to := range dg.Edges[g.Qualified(rule.Name)] {
			node := dg.Nodes[to]
			if node.Kind != NodeLocalRule {
				continue
			}
			if _, ok := g.Rule(node.Rule); !ok {
				return nil, &domain.UnresolvedReferenceError{Grammar: g.Name, Reference: node.Symbol(), Kind: domain.KindLocalRule}
			}
		}
	}

	order, cycle := topoSort(localRuleNames(g), func(name string) []string {
		var next []string
		for _, to := range dg.Edges[name] {
			if dg.Nodes[to].Kind == NodeLocalRule {
				next = append(next, to)
			}
		}
		return next
	})
	if cycle != nil {
		return nil, &domain.UnresolvedReferenceError{Grammar: g.Name, Reference: cycle[0], Kind: domain.KindLocalRule, Cycle: cycle}
	}
	dg.order = order

	for w := range words {
		dg.Vocabulary = append(dg.Vocabulary, w)
	}
	sort.Strings(dg.Vocabulary)
	return dg, nil
}

func localRuleNames(g *jsgf.Grammar) []string {
	names := make([]string, len(g.Rules))
	for i, r := range g.Rules {
		names[i] = g.Qualified(r.Name)
	}
	return names
}

// Order returns the qualified local rules with dependencies first.
func (dg *DependencyGraph) Order() []string {
	return dg.order
}

func (dg *DependencyGraph) byKind(kind NodeKind) []Node {
	var nodes []Node
	for _, n := range dg.Nodes {
		if n.Kind == kind {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}

// Slots returns the slot nodes, sorted by name.
func (dg *DependencyGraph) Slots() []Node { return dg.byKind(NodeSlot) }

// RemoteRules returns the rules referenced in other grammars, sorted by name.
func (dg *DependencyGraph) RemoteRules() []Node { return dg.byKind(NodeRemoteRule) }

// RemoteGrammars returns the names of the grammars g depends on, sorted.
func (dg *DependencyGraph) RemoteGrammars() []string {
	seen := make(map[string]bool)
	var names []string
	for _, n := range dg.RemoteRules() {
		if !seen[n.Grammar] {
			seen[n.Grammar] = true
			names = append(names, n.Grammar)
		}
	}
	sort.Strings(names)
	return names
}

const (
	white = iota
	grey
	black
)

// topoSort orders names so that every name follows the names it points to.
// It returns the offending path when the graph has a cycle; the path starts
// and ends with the same name.
func topoSort(names []string, next func(string) []string) ([]string, []string) {
	color := make(map[string]int, len(names))
	var order, stack []string
	var cycle []string

	var visit func(n string) bool
	visit = func(n string) bool {
		switch color[n] {
		case black:
			return true
		case grey:
			for i, s := range stack {
				if s == n {
					cycle = append(append([]string(nil), stack[i:]...), n)
					break
				}
			}
			return false
		}
		color[n] = grey
		stack = append(stack, n)
		for _, m := range next(n) {
			if !visit(m) {
				return false
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		order = append(order, n)
		return true
	}

	for _, n := range names {
		if !visit(n) {
			return nil, cycle
		}
	}
	return order, nil
}
