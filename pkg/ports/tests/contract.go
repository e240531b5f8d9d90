package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// GrammarLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GrammarLoader.
func GrammarLoaderContractTest(t *testing.T, loader ports.GrammarLoader, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	// 1. Test LoadGrammar (Success)
	t.Run("LoadGrammar_Success", func(t *testing.T) {
		for name, expected := range setupData {
			src, err := loader.LoadGrammar(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading grammar %s: %v", name, err)
			}
			if src != expected {
				t.Errorf("content mismatch for %s. got %q, want %q", name, src, expected)
			}
		}
	})

	// 2. Test LoadGrammar (NotFound)
	t.Run("LoadGrammar_NotFound", func(t *testing.T) {
		_, err := loader.LoadGrammar(ctx, "non-existent-grammar")
		if !errors.Is(err, domain.ErrGrammarNotFound) {
			t.Errorf("expected ErrGrammarNotFound, got %v", err)
		}
	})

	// 3. Test ListGrammars
	t.Run("ListGrammars", func(t *testing.T) {
		names, err := loader.ListGrammars(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing grammars: %v", err)
		}
		if len(names) != len(setupData) {
			t.Errorf("expected %d grammars, got %d", len(setupData), len(names))
		}
		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("grammar list not sorted: %v", names)
				break
			}
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("grammar %s missing from list", name)
			}
		}
	})
}

// SlotLoaderContractTest verifies that an adapter complies with ports.SlotLoader.
func SlotLoaderContractTest(t *testing.T, loader ports.SlotLoader, setupData map[string][]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadSlot_Success", func(t *testing.T) {
		for name, expected := range setupData {
			lines, err := loader.LoadSlot(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading slot %s: %v", name, err)
			}
			if len(lines) != len(expected) {
				t.Fatalf("slot %s: expected %d lines, got %d (%q)", name, len(expected), len(lines), lines)
			}
			for i := range lines {
				if lines[i] != expected[i] {
					t.Errorf("slot %s line %d: got %q, want %q", name, i, lines[i], expected[i])
				}
			}
		}
	})

	t.Run("LoadSlot_NotFound", func(t *testing.T) {
		_, err := loader.LoadSlot(ctx, "non-existent-slot")
		if !errors.Is(err, domain.ErrSlotNotFound) {
			t.Errorf("expected ErrSlotNotFound, got %v", err)
		}
	})
}
