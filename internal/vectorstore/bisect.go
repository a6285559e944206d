package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/loreforge/loreforge/internal/domain"
)

// AddBisect writes chunks to a collection, recursively halving the batch
// whenever the store reports ErrBatchTooLarge. A single chunk that is still
// too large is a hard failure. Chunks and vectors must be parallel slices.
func AddBisect(ctx context.Context, s Store, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector length mismatch: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	err := s.Add(ctx, collection, chunks, vectors)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrBatchTooLarge) || len(chunks) == 1 {
		return err
	}

	mid := len(chunks) / 2
	if err := AddBisect(ctx, s, collection, chunks[:mid], vectors[:mid]); err != nil {
		return err
	}
	return AddBisect(ctx, s, collection, chunks[mid:], vectors[mid:])
}
