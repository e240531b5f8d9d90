package ports_test

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/ports"
)

// MockStore is an in-memory implementation of ArtifactStore for testing purposes.
type MockStore struct {
	data map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string][]byte),
	}
}

func (m *MockStore) Save(ctx context.Context, name string, f *fst.FST) error {
	// Encode to simulate crossing a process boundary
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return err
	}
	m.data[name] = buf.Bytes()
	return nil
}

func (m *MockStore) Load(ctx context.Context, name string) (*fst.FST, error) {
	data, ok := m.data[name]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return fst.Decode(bytes.NewReader(data))
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	delete(m.data, name)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func TestArtifactStore_Contract(t *testing.T) {
	// MockStore doubles as the reference implementation of the contract.
	ports.RunArtifactStoreContract(t, NewMockStore())
}
