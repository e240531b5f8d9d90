package ports

import "context"

// GrammarLoader defines how the compiler retrieves grammar sources.
type GrammarLoader interface {
	// ListGrammars returns the names of every available grammar, sorted.
	ListGrammars(ctx context.Context) ([]string, error)

	// LoadGrammar returns the source text of one grammar.
	// Returns an error wrapping domain.ErrGrammarNotFound for unknown names.
	LoadGrammar(ctx context.Context, name string) (string, error)
}

// SlotLoader defines how the compiler retrieves slot word lists.
type SlotLoader interface {
	// LoadSlot returns the value lines of a slot, in file order.
	// Each line is a grammar expression ("ten:10", "(forty two):42", "red").
	// Returns an error wrapping domain.ErrSlotNotFound for unknown names.
	LoadSlot(ctx context.Context, name string) ([]string, error)
}
