package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunArtifactStoreContract(t, memory.NewStore())
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	f := fst.New(nil, nil)
	s0, s1 := f.AddState(), f.AddState()
	f.SetStart(s0)
	f.AddLabeledArc(s0, "hello", "hello", s1)
	f.SetFinal(s1, true)
	require.NoError(t, store.Save(ctx, "greeting", f))

	// Mutating the original after Save must not change the stored copy
	f.AddLabeledArc(s0, "hi", "hi", s1)

	loaded, err := store.Load(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, loaded.Sentences(0))
}

func TestMemoryLoader_Contract(t *testing.T) {
	grammars := map[string]string{
		"GetTime":  "public <GetTime> = what time is it;",
		"SetTimer": "public <SetTimer> = set a timer;",
	}
	loader := memory.NewLoader(grammars).WithSlot("$colors", "red", "blue")

	tests.GrammarLoaderContractTest(t, loader, grammars)
	tests.SlotLoaderContractTest(t, loader, map[string][]string{"colors": {"red", "blue"}})
}
