// Package sentences converts an ini-style sentences file into grammars.
//
//	[GetTime]
//	what time is it
//	tell me the time
//
//	[ChangeLight]
//	state = (on | off){state}
//	turn <state> [the] light
//
// Each section is an intent. Bare lines are alternative sentences of the
// intent's root rule; "name = expr" lines define private rules. A line
// starting with "\[" is a sentence that opens with an optional group, which
// would otherwise read as a section header. Lines starting with "#" or ";"
// are comments. A repeated section continues the earlier one; a repeated
// rule name replaces the earlier definition.
package sentences

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Rule is a private rule of an intent.
type Rule struct {
	Name string
	Expr string
}

// Intent is one section of a sentences file.
type Intent struct {
	Name      string
	Sentences []string
	Rules     []Rule
	// Line is where the section header appeared.
	Line int
}

// Grammar renders the intent as grammar source.
func (i Intent) Grammar() string {
	var b strings.Builder
	fmt.Fprintf(&b, "grammar %s;\n\n", i.Name)
	fmt.Fprintf(&b, "public <%s> = ", i.Name)
	for n, s := range i.Sentences {
		if n > 0 {
			b.WriteString("\n    | ")
		}
		fmt.Fprintf(&b, "(%s)", s)
	}
	b.WriteString(";\n")
	for _, r := range i.Rules {
		fmt.Fprintf(&b, "\n<%s> = (%s);", r.Name, r.Expr)
	}
	if len(i.Rules) > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func (i *Intent) setRule(r Rule) {
	for n := range i.Rules {
		if i.Rules[n].Name == r.Name {
			i.Rules[n] = r
			return
		}
	}
	i.Rules = append(i.Rules, r)
}

var (
	sectionRe = regexp.MustCompile(`^\[([^\[\]]+)\]$`)
	ruleRe    = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.-]*)\s*=\s*(.+)$`)
)

// Parse reads a sentences file. Section order is preserved.
func Parse(r io.Reader) ([]Intent, error) {
	const file = "sentences.ini"
	var intents []Intent
	seen := make(map[string]int)
	var cur *Intent

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") || strings.HasPrefix(text, ";") {
			continue
		}

		if m := sectionRe.FindStringSubmatch(text); m != nil {
			name := strings.TrimSpace(m[1])
			if n, ok := seen[name]; ok {
				cur = &intents[n]
				continue
			}
			seen[name] = len(intents)
			intents = append(intents, Intent{Name: name, Line: line})
			cur = &intents[len(intents)-1]
			continue
		}

		if cur == nil {
			return nil, &domain.SyntaxError{Grammar: file, Line: line, Column: 1, Msg: "sentence outside of an [Intent] section"}
		}
		if strings.HasPrefix(text, `\[`) {
			cur.Sentences = append(cur.Sentences, text[1:])
			continue
		}
		if m := ruleRe.FindStringSubmatch(text); m != nil {
			cur.setRule(Rule{Name: m[1], Expr: strings.TrimSpace(m[2])})
			continue
		}
		cur.Sentences = append(cur.Sentences, text)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}

	for _, i := range intents {
		if len(i.Sentences) == 0 {
			return nil, &domain.SyntaxError{Grammar: file, Line: i.Line, Column: 1, Msg: fmt.Sprintf("intent [%s] has no sentences", i.Name)}
		}
	}
	return intents, nil
}

// Loader serves parsed intents as grammars. It implements ports.GrammarLoader.
type Loader struct {
	grammars map[string]string
}

// NewLoader renders every intent's grammar.
func NewLoader(intents []Intent) *Loader {
	l := &Loader{grammars: make(map[string]string, len(intents))}
	for _, i := range intents {
		l.grammars[i.Name] = i.Grammar()
	}
	return l
}

func (l *Loader) ListGrammars(context.Context) ([]string, error) {
	names := make([]string, 0, len(l.grammars))
	for name := range l.grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) LoadGrammar(_ context.Context, name string) (string, error) {
	src, ok := l.grammars[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrGrammarNotFound, name)
	}
	return src, nil
}
