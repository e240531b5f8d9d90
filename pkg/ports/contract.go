package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/fst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractFST accepts "turn on" and "turn off", emitting an intent label.
func contractFST(label string) *fst.FST {
	f := fst.New(nil, nil)
	s0, s1, s2, s3 := f.AddState(), f.AddState(), f.AddState(), f.AddState()
	f.SetStart(s0)
	f.AddLabeledArc(s0, domain.Epsilon, domain.LabelMarker(label), s1)
	f.AddLabeledArc(s1, "turn", "turn", s2)
	f.AddLabeledArc(s2, "on", "on", s3)
	f.AddLabeledArc(s2, "off", "off", s3)
	f.SetFinal(s3, true)
	return f
}

// RunArtifactStoreContract runs a suite of tests to verify that an ArtifactStore
// implementation adheres to the defined interface contract.
func RunArtifactStoreContract(t *testing.T, store ArtifactStore) {
	ctx := context.Background()
	name := "contract-intent-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		// 1. Build an automaton
		original := contractFST("ChangeLight")

		// 2. Save
		err := store.Save(ctx, name, original)
		require.NoError(t, err, "Save should not return error")

		// 3. Load
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, fst.Equal(original, loaded), "loaded automaton should equal the saved one")
		assert.Equal(t, []string{"turn on", "turn off"}, loaded.Sentences(0))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, contractFST("First")))
		require.NoError(t, store.Save(ctx, name, contractFST("Second")))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, []string{"__label__Second turn on", "__label__Second turn off"}, loaded.OutputSentences(0))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		// Setup
		require.NoError(t, store.Save(ctx, name, contractFST("ChangeLight")))

		// Delete
		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		// Verify gone
		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrArtifactNotFound, "Load after Delete should return ErrArtifactNotFound")
	})

	t.Run("List", func(t *testing.T) {
		// Setup: store 2 artifacts
		id1 := name + "-1"
		id2 := name + "-2"
		require.NoError(t, store.Save(ctx, id1, contractFST("A")))
		require.NoError(t, store.Save(ctx, id2, contractFST("B")))

		// Ensure cleanup
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, id1)
		assert.Contains(t, names, id2)
	})
}
