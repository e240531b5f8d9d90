package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/fst"
)

// ArtifactStore persists compiled automata so the recognizer can run in a
// different process than the compiler.
type ArtifactStore interface {
	// Save persists the automaton under name, replacing any previous one.
	Save(ctx context.Context, name string, f *fst.FST) error

	// Load retrieves the automaton stored under name.
	// Returns domain.ErrArtifactNotFound if nothing is stored.
	Load(ctx context.Context, name string) (*fst.FST, error)

	// Delete removes the automaton stored under name.
	Delete(ctx context.Context, name string) error

	// List returns the stored artifact names.
	List(ctx context.Context) ([]string, error)
}
