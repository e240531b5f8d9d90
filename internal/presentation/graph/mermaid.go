package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lattice/internal/compiler"
)

// GraphOverlay contains build outcome data to visualize on the graph.
type GraphOverlay struct {
	// Failed lists grammars that did not compile.
	Failed []string
}

// GenerateMermaid produces a Mermaid flowchart of grammar dependencies.
// It applies semantic styling:
// - Grammar root rule: ((Circle))
// - Private rule: [Rectangle]
// - Slot: [/Parallelogram/]
// - Rule of a grammar not in the set: [[Subroutine]]
// Cross-grammar references are dotted. Failed grammars are highlighted
// when an overlay is given.
func GenerateMermaid(graphs map[string]*compiler.DependencyGraph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	names := make([]string, 0, len(graphs))
	for name := range graphs {
		names = append(names, name)
	}
	sort.Strings(names)

	declared := make(map[string]bool)
	declare := func(id, line string) {
		if !declared[id] {
			declared[id] = true
			sb.WriteString(line)
		}
	}

	// Declare every local rule first so remote references resolve to them
	for _, name := range names {
		dg := graphs[name]
		for _, rule := range dg.Order() {
			node := dg.Nodes[rule]
			opener, closer := "[", "]"
			if node.Rule == dg.Grammar {
				opener, closer = "((", "))"
			}
			id := sanitizeMermaidID(rule)
			declare(id, fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, rule, closer))
		}
	}

	for _, name := range names {
		dg := graphs[name]
		for _, from := range dg.Order() {
			safeFrom := sanitizeMermaidID(from)
			for _, to := range dg.Edges[from] {
				node := dg.Nodes[to]
				safeTo := sanitizeMermaidID(to)
				arrow := "-->"
				switch node.Kind {
				case compiler.NodeSlot:
					declare(safeTo, fmt.Sprintf("    %s[/\"%s\"/]\n", safeTo, to))
				case compiler.NodeRemoteRule:
					declare(safeTo, fmt.Sprintf("    %s[[\"%s\"]]\n", safeTo, to))
					arrow = "-.->"
				}
				sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
			}
		}
	}

	if overlay != nil && len(overlay.Failed) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#b71c1c,stroke-width:3px,color:#000;\n")
		failed := append([]string(nil), overlay.Failed...)
		sort.Strings(failed)
		for _, name := range failed {
			id := sanitizeMermaidID(name + "." + name)
			if declared[id] {
				sb.WriteString(fmt.Sprintf("    class %s failed;\n", id))
			}
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, "$", "slot_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
