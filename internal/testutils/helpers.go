// Package testutils holds grammar fixtures and helpers shared by package tests.
package testutils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/stretchr/testify/require"
)

const (
	SetTimer = `public <SetTimer> = set a timer for ($minutes){minutes} minutes and ($seconds){seconds} seconds;`

	ChangeLight = `#JSGF V1.0;
grammar ChangeLight;

public <ChangeLight> = turn ($state){state} (light | lamp)
                     | <ChangeLightColor.ChangeLightColor>;
`

	ChangeLightColor = `public <ChangeLightColor> = set color to ($colors){color};`

	GetTime = `public <GetTime> = what time is it | tell me the time;`
)

// Grammars maps fixture grammar names to their sources.
var Grammars = map[string]string{
	"SetTimer":         SetTimer,
	"ChangeLight":      ChangeLight,
	"ChangeLightColor": ChangeLightColor,
	"GetTime":          GetTime,
}

// Slots holds the fixture slot word lists.
var Slots = map[string][]string{
	"minutes": NumberLines(),
	"seconds": NumberLines(),
	"state":   {"on", "off"},
	"colors":  {"red", "green", "blue", "purple"},
}

// NumberLines enumerates "ten" to "fifty nine" rewritten word by word
// ("forty two" emits "40 2").
func NumberLines() []string {
	lines := []string{"ten:10"}
	teens := []string{"eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	for i, w := range teens {
		lines = append(lines, fmt.Sprintf("%s:%d", w, 11+i))
	}
	ones := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	for i, tens := range []string{"twenty", "thirty", "forty", "fifty"} {
		value := 20 + 10*i
		lines = append(lines, fmt.Sprintf("%s:%d", tens, value))
		for j, one := range ones {
			lines = append(lines, fmt.Sprintf("%s:%d %s:%d", tens, value, one, j+1))
		}
	}
	return lines
}

// SlotMap is an in-memory ports.SlotLoader that counts loads.
type SlotMap struct {
	Lines map[string][]string
	loads atomic.Int64
}

// NewSlotMap wraps lines in a SlotMap.
func NewSlotMap(lines map[string][]string) *SlotMap {
	return &SlotMap{Lines: lines}
}

func (m *SlotMap) LoadSlot(_ context.Context, name string) ([]string, error) {
	m.loads.Add(1)
	lines, ok := m.Lines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSlotNotFound, name)
	}
	return lines, nil
}

// Loads returns how many times LoadSlot was called.
func (m *SlotMap) Loads() int64 { return m.loads.Load() }

// Sources returns compiler sources for the named fixture grammars, or for
// all of them when names is empty.
func Sources(names ...string) []compiler.Source {
	if len(names) == 0 {
		for name := range Grammars {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	out := make([]compiler.Source, 0, len(names))
	for _, name := range names {
		out = append(out, compiler.Source{Name: name, Text: Grammars[name]})
	}
	return out
}

// Build compiles the fixture grammars and fails the test on any error.
func Build(t *testing.T, names ...string) *compiler.Result {
	t.Helper()
	res, err := compiler.Build(context.Background(), Sources(names...), compiler.Options{
		Slots: []compiler.SlotSource{{Name: "fixtures", Loader: NewSlotMap(Slots)}},
	})
	require.NoError(t, err, "fixture grammars should compile")
	return res
}

// WriteProfileDir lays the fixtures out the way the file adapters expect:
// grammars/<Name>.gram and slots/<name>. It returns the root directory.
func WriteProfileDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for name, src := range Grammars {
		WriteFile(t, filepath.Join(root, "grammars", name+".gram"), src)
	}
	for name, lines := range Slots {
		WriteFile(t, filepath.Join(root, "slots", name), strings.Join(lines, "\n")+"\n")
	}
	return root
}

// WriteFile creates path (and its parents) with content.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
