package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/loreforge/loreforge/internal/domain"
)

// ErrBatchTooLarge is the normalized error every backend returns when a
// single Add call exceeds its payload limit. Callers split the batch and
// retry; any other error aborts the operation.
var ErrBatchTooLarge = errors.New("batch too large")

// Hit is one chunk returned by a similarity query. Vector is populated so
// callers can re-rank results without a second round trip.
type Hit struct {
	Text     string
	Meta     domain.ChunkMetadata
	Vector   []float32
	Distance float32
}

// Store is a named-collection vector store for document chunks.
// Collections are cheap: one per world and one per specialist agent.
// Deleting a collection that does not exist is not an error.
type Store interface {
	Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error
	DeleteSource(ctx context.Context, collection, sourceID string) error
	DeleteCollection(ctx context.Context, collection string) error
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error)
	List(ctx context.Context, collection string) ([]Hit, error)
}

// WorldCollection returns the collection name holding a world's page chunks.
func WorldCollection(worldID int64) string {
	return fmt.Sprintf("world_%d", worldID)
}

// SpecialistCollection returns the collection name holding a specialist
// agent's private source chunks.
func SpecialistCollection(agentID int64) string {
	return fmt.Sprintf("specialist_%d", agentID)
}
