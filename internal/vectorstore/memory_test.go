package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/internal/domain"
)

func TestMemoryStore_QueryOrdersByDistance(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	chunks := []domain.DocumentChunk{
		{Text: "about dragons", Meta: domain.ChunkMetadata{SourceID: "1", ChunkIndex: 0}},
		{Text: "about taxes", Meta: domain.ChunkMetadata{SourceID: "2", ChunkIndex: 0}},
		{Text: "about wyverns", Meta: domain.ChunkMetadata{SourceID: "3", ChunkIndex: 0}},
	}
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	require.NoError(t, store.Add(ctx, "world_1", chunks, vectors))

	hits, err := store.Query(ctx, "world_1", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "about dragons", hits[0].Text)
	assert.Equal(t, "about wyverns", hits[1].Text)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
	assert.Equal(t, []float32{1, 0, 0}, hits[0].Vector)
}

func TestMemoryStore_QueryEmptyCollection(t *testing.T) {
	store := NewMemoryStore()

	hits, err := store.Query(context.Background(), "world_99", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryStore_DeleteSource(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	chunks := []domain.DocumentChunk{
		{Text: "a", Meta: domain.ChunkMetadata{SourceID: "1", ChunkIndex: 0}},
		{Text: "b", Meta: domain.ChunkMetadata{SourceID: "1", ChunkIndex: 1}},
		{Text: "c", Meta: domain.ChunkMetadata{SourceID: "2", ChunkIndex: 0}},
	}
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	require.NoError(t, store.Add(ctx, "world_1", chunks, vectors))

	require.NoError(t, store.DeleteSource(ctx, "world_1", "1"))

	hits, err := store.Query(ctx, "world_1", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "2", hits[0].Meta.SourceID)
}

func TestMemoryStore_DeleteCollection(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	chunks, vectors := makeChunks(3)
	require.NoError(t, store.Add(ctx, "specialist_7", chunks, vectors))
	require.NoError(t, store.DeleteCollection(ctx, "specialist_7"))

	assert.Equal(t, 0, store.Count("specialist_7"))

	// Deleting a collection that never existed is not an error.
	assert.NoError(t, store.DeleteCollection(ctx, "specialist_8"))
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)

	assert.Zero(t, CosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestCollectionNames(t *testing.T) {
	assert.Equal(t, "world_12", WorldCollection(12))
	assert.Equal(t, "specialist_7", SpecialistCollection(7))
}
