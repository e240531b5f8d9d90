package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Loader implements ports.GrammarLoader and ports.SlotLoader over maps.
type Loader struct {
	grammars map[string]string
	slots    map[string][]string
}

// NewLoader creates a Loader serving the given grammar sources.
func NewLoader(grammars map[string]string) *Loader {
	l := &Loader{
		grammars: make(map[string]string, len(grammars)),
		slots:    make(map[string][]string),
	}
	for k, v := range grammars {
		l.grammars[k] = v
	}
	return l
}

// WithSlot registers a slot given one value per line.
func (l *Loader) WithSlot(name string, lines ...string) *Loader {
	l.slots[strings.TrimPrefix(name, "$")] = append([]string(nil), lines...)
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

func (l *Loader) LoadSlot(_ context.Context, name string) ([]string, error) {
	lines, ok := l.slots[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSlotNotFound, name)
	}
	return append([]string(nil), lines...), nil
}
