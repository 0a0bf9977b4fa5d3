//go:build integration

package vectorstore

import (
	"context"
	"testing"

	"github.com/cloo-solutions/resumechat/internal/domain"
	"github.com/cloo-solutions/resumechat/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pc, func(url string) error {
		return Migrate(url, zerolog.Nop())
	})

	factory := NewPGFactory(pool)
	store, err := factory.NewStore(ctx, "idx-1")
	require.NoError(t, err)
	other, err := factory.NewStore(ctx, "idx-2")
	require.NoError(t, err)

	require.NoError(t, store.Add(ctx, "python", []float32{1, 0, 0}))
	require.NoError(t, store.Add(ctx, "go", []float32{0.9, 0.1, 0}))
	require.NoError(t, store.Add(ctx, "hiking", []float32{0, 0, 1}))
	require.NoError(t, other.Add(ctx, "python", []float32{1, 0, 0}))

	vec, err := store.Embedding(ctx, "go")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.9, 0.1, 0}, vec, 1e-6)

	_, err = store.Embedding(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrEmbeddingNotFound)

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "python", results[0].SegmentID)
	assert.Equal(t, "go", results[1].SegmentID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-5)

	require.NoError(t, store.Drop(ctx))
	_, err = store.Embedding(ctx, "python")
	assert.ErrorIs(t, err, domain.ErrEmbeddingNotFound)

	_, err = other.Embedding(ctx, "python")
	assert.NoError(t, err)

	purged, err := factory.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	_, err = other.Embedding(ctx, "python")
	assert.ErrorIs(t, err, domain.ErrEmbeddingNotFound)
}

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)

	require.NoError(t, Migrate(pc.ConnectionString(), zerolog.Nop()))
	require.NoError(t, Migrate(pc.ConnectionString(), zerolog.Nop()))
}
