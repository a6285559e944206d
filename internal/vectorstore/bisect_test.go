package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/internal/domain"
)

func makeChunks(n int) ([]domain.DocumentChunk, [][]float32) {
	chunks := make([]domain.DocumentChunk, n)
	vectors := make([][]float32, n)
	for i := range chunks {
		chunks[i] = domain.DocumentChunk{
			Text: "chunk",
			Meta: domain.ChunkMetadata{SourceID: "42", ChunkIndex: i},
		}
		vectors[i] = []float32{float32(i), 1, 0}
	}
	return chunks, vectors
}

func TestAddBisect_SplitsOversizedBatches(t *testing.T) {
	store := NewMemoryStore()
	store.MaxBatch = 3

	chunks, vectors := makeChunks(10)
	err := AddBisect(context.Background(), store, "world_1", chunks, vectors)

	require.NoError(t, err)
	assert.Equal(t, 10, store.Count("world_1"))
}

func TestAddBisect_SmallBatchSucceedsDirectly(t *testing.T) {
	store := NewMemoryStore()
	store.MaxBatch = 100

	chunks, vectors := makeChunks(5)
	err := AddBisect(context.Background(), store, "world_1", chunks, vectors)

	require.NoError(t, err)
	assert.Equal(t, 5, store.Count("world_1"))
}

func TestAddBisect_EmptyBatch(t *testing.T) {
	store := NewMemoryStore()
	err := AddBisect(context.Background(), store, "world_1", nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, store.Count("world_1"))
}

type failingStore struct {
	*MemoryStore
	err error
}

func (f *failingStore) Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	return f.err
}

func TestAddBisect_NonSizeErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	store := &failingStore{MemoryStore: NewMemoryStore(), err: boom}

	chunks, vectors := makeChunks(8)
	err := AddBisect(context.Background(), store, "world_1", chunks, vectors)

	assert.ErrorIs(t, err, boom)
}

func TestAddBisect_SingleChunkStillTooLarge(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), err: ErrBatchTooLarge}

	chunks, vectors := makeChunks(4)
	err := AddBisect(context.Background(), store, "world_1", chunks, vectors)

	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestAddBisect_LengthMismatch(t *testing.T) {
	store := NewMemoryStore()
	chunks, _ := makeChunks(3)
	err := AddBisect(context.Background(), store, "world_1", chunks, [][]float32{{1}})
	assert.Error(t, err)
}
