package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/lattice/internal/testutils"
	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/recognizer"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	defer store.Close()

	ports.RunArtifactStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	res := testutils.Build(t, "GetTime")
	require.NoError(t, store.Save(ctx, "intent", res.Merged))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "intent")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "intent")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	// Index pruning compares against wall-clock time
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	res := testutils.Build(t, "GetTime")
	require.NoError(t, store.Save(ctx, "intent", res.Merged))

	assert.True(t, mr.Exists("custom:app:intent"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")
	assert.False(t, mr.Exists(redis.DefaultPrefix+"intent"))
}

func TestRedisStore_SharedAcrossProcesses(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	res := testutils.Build(t, "GetTime", "ChangeLight", "ChangeLightColor")
	require.NoError(t, redis.NewFromClient(client).Save(ctx, "intent", res.Merged))

	// A second client stands in for another process reading the artifact
	reader := redis.New(mr.Addr(), "", 0)
	defer reader.Close()
	require.NoError(t, reader.Ping(ctx))

	loaded, err := reader.Load(ctx, "intent")
	require.NoError(t, err)

	rec := recognizer.New(loaded, recognizer.Config{})
	got, err := rec.Recognize("turn on lamp")
	require.NoError(t, err)
	assert.Equal(t, "ChangeLight", got.Intent.Name)
}
