package fst

import (
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// SymbolTable assigns each distinct string a stable integer id.
// Id 0 is reserved for epsilon. Safe for concurrent use.
type SymbolTable struct {
	mu    sync.RWMutex
	names []string
	ids   map[string]int
}

// NewSymbolTable creates a table containing only epsilon.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		names: []string{domain.Epsilon},
		ids:   map[string]int{domain.Epsilon: 0},
	}
}

// Add interns sym and returns its id. Adding an existing symbol returns the existing id.
func (t *SymbolTable) Add(sym string) int {
	if sym == "" {
		return 0
	}
	t.mu.RLock()
	id, ok := t.ids[sym]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[sym]; ok {
		return id
	}
	id = len(t.names)
	t.names = append(t.names, sym)
	t.ids[sym] = id
	return id
}

// Find returns the id of sym.
func (t *SymbolTable) Find(sym string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.ids[sym]
	return id, ok
}

// Symbol returns the string for id, or "" when id is unknown.
func (t *SymbolTable) Symbol(id int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id < 0 || id >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len returns the number of symbols, epsilon included.
func (t *SymbolTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Symbols returns a copy of all symbols ordered by id.
func (t *SymbolTable) Symbols() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func symbolTableFrom(names []string) (*SymbolTable, bool) {
	if len(names) == 0 || names[0] != domain.Epsilon {
		return nil, false
	}
	t := &SymbolTable{
		names: make([]string, len(names)),
		ids:   make(map[string]int, len(names)),
	}
	copy(t.names, names)
	for i, n := range names {
		if _, dup := t.ids[n]; dup {
			return nil, false
		}
		t.ids[n] = i
	}
	return t, true
}
