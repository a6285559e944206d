package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/loreforge/loreforge/internal/domain"
)

type memoryEntry struct {
	text   string
	meta   domain.ChunkMetadata
	vector []float32
}

// MemoryStore is an in-process Store keeping everything in maps. It backs
// unit tests and small single-node deployments where neither pgvector nor
// Weaviate is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]memoryEntry

	// MaxBatch, when positive, makes Add reject batches above the limit
	// with ErrBatchTooLarge the way a remote backend would.
	MaxBatch int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]memoryEntry)}
}

func (m *MemoryStore) Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if m.MaxBatch > 0 && len(chunks) > m.MaxBatch {
		return ErrBatchTooLarge
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range chunks {
		v := make([]float32, len(vectors[i]))
		copy(v, vectors[i])
		m.collections[collection] = append(m.collections[collection], memoryEntry{
			text:   c.Text,
			meta:   c.Meta,
			vector: v,
		})
	}
	return nil
}

func (m *MemoryStore) DeleteSource(ctx context.Context, collection, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.collections[collection]
	kept := entries[:0]
	for _, e := range entries {
		if e.meta.SourceID != sourceID {
			kept = append(kept, e)
		}
	}
	m.collections[collection] = kept
	return nil
}

func (m *MemoryStore) DeleteCollection(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections, collection)
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.collections[collection]
	hits := make([]Hit, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, Hit{
			Text:     e.text,
			Meta:     e.meta,
			Vector:   e.vector,
			Distance: 1 - CosineSimilarity(vector, e.vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// List returns every chunk in a collection in insertion order.
func (m *MemoryStore) List(ctx context.Context, collection string) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.collections[collection]
	hits := make([]Hit, 0, len(entries))
	for _, e := range entries {
		hits = append(hits, Hit{Text: e.text, Meta: e.meta, Vector: e.vector})
	}
	return hits, nil
}

// Count returns the number of chunks in a collection.
func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Mismatched or zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
