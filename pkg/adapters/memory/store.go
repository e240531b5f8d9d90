package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
)

// Store implements ports.ArtifactStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists an encoded copy, so later mutation of f does not leak into the store.
func (s *Store) Save(ctx context.Context, name string, f *fst.FST) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = data
	return nil
}

// Load decodes a fresh automaton on every call.
func (s *Store) Load(ctx context.Context, name string) (*fst.FST, error) {
	s.mu.RLock()
	data, ok := s.data[name]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}

	f := fst.New(nil, nil)
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete removes the artifact.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the stored names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
