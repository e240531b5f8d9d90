package tui

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/lattice/internal/compiler"
	"github.com/muesli/termenv"
)

// PrintBuildSummary writes a short coloured account of a build to w.
// buildErr is the error returned by compiler.Build alongside res.
func PrintBuildSummary(w io.Writer, res *compiler.Result, buildErr error, elapsed time.Duration) {
	out := termenv.NewOutput(w)
	ok := out.Color("#22c55e")
	bad := out.Color("#ef4444")
	dim := out.Color("#9ca3af")

	for _, name := range sortedIntents(res) {
		fmt.Fprintf(w, "%s %s\n", out.String("✓").Foreground(ok), name)
	}
	var be *compiler.BuildError
	if errors.As(buildErr, &be) {
		for _, name := range be.Grammars() {
			fmt.Fprintf(w, "%s %s: %v\n", out.String("✗").Foreground(bad), name, be.Failures[name])
		}
	}

	stats := fmt.Sprintf("%d intents, %d states, %d arcs, %d words in %s",
		len(res.Intents), res.Merged.NumStates(), res.Merged.NumArcs(), len(res.Vocabulary), elapsed.Round(time.Millisecond))
	fmt.Fprintln(w, out.String(stats).Foreground(dim))
}

// ValidationReport renders a build outcome as markdown.
func ValidationReport(res *compiler.Result, buildErr error) string {
	var sb strings.Builder
	sb.WriteString("# Grammar validation\n\n")

	var be *compiler.BuildError
	errors.As(buildErr, &be)

	sb.WriteString("| Grammar | Status | Slots | Remote grammars |\n")
	sb.WriteString("|---|---|---|---|\n")
	names := make([]string, 0, len(res.Graphs))
	for name := range res.Graphs {
		names = append(names, name)
	}
	if be != nil {
		for name := range be.Failures {
			if _, ok := res.Graphs[name]; !ok {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	for _, name := range names {
		status := "ok"
		if be != nil && be.Failures[name] != nil {
			status = "**failed**"
		}
		var slots, remotes []string
		if dg := res.Graphs[name]; dg != nil {
			for _, n := range dg.Slots() {
				slots = append(slots, "`"+n.Name+"`")
			}
			remotes = dg.RemoteGrammars()
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", name, status, orDash(strings.Join(slots, " ")), orDash(strings.Join(remotes, ", ")))
	}

	if be != nil {
		sb.WriteString("\n## Errors\n\n")
		for _, name := range be.Grammars() {
			fmt.Fprintf(&sb, "- **%s**: %s\n", name, be.Failures[name])
		}
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nSkipped by whitelist: %s\n", strings.Join(res.Skipped, ", "))
	}
	fmt.Fprintf(&sb, "\n%d of %d grammars compiled.\n", len(res.Intents), len(names))
	return sb.String()
}

func sortedIntents(res *compiler.Result) []string {
	names := make([]string, 0, len(res.Intents))
	for name := range res.Intents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
