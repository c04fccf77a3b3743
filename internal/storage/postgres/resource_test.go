package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pokemcp/internal/config"
	"github.com/cory-johannsen/pokemcp/internal/storage/postgres"
	"github.com/cory-johannsen/pokemcp/internal/testutil"
)

func setupResources(t *testing.T, ttl time.Duration) (*postgres.ResourceRepository, *testutil.PostgresContainer) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.Pool.Resources(ttl), pc
}

func TestResourceRepository_PutGet(t *testing.T) {
	repo, _ := setupResources(t, time.Hour)
	ctx := context.Background()
	url := "https://pokeapi.co/api/v2/pokemon/pikachu"

	_, ok, err := repo.Get(ctx, url)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Put(ctx, url, []byte(`{"id": 25, "name": "pikachu"}`)))
	body, ok, err := repo.Get(ctx, url)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id": 25, "name": "pikachu"}`, string(body))

	// Upsert replaces the body.
	require.NoError(t, repo.Put(ctx, url, []byte(`{"id": 25, "name": "pika"}`)))
	body, _, err = repo.Get(ctx, url)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 25, "name": "pika"}`, string(body))
}

func TestResourceRepository_StaleRowsAreMissesAndPurged(t *testing.T) {
	repo, pc := setupResources(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "stale", []byte(`{}`)))
	require.NoError(t, repo.Put(ctx, "fresh", []byte(`{}`)))
	_, err := pc.RawPool.Exec(ctx,
		`UPDATE pokeapi_resources SET fetched_at = NOW() - INTERVAL '2 hours' WHERE url = 'stale'`)
	require.NoError(t, err)

	_, ok, err := repo.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err = repo.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPool_HealthAndCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	assert.NoError(t, pc.Pool.Health(context.Background(), 5*time.Second))
	assert.NoError(t, pc.Pool.Check(context.Background()))
}

func TestPool_CheckReportsClosedPool(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.Pool.Close()
	err := pc.Pool.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestNewPool_UnreachableHost(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "u", Password: "p", Name: "n",
		SSLMode: "disable", MaxConns: 1,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := postgres.NewPool(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1")
}
