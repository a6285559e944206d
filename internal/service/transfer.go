package service

import (
	"context"
	"fmt"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/vectorstore"
)

// Envelope is the portable dump format for one vector collection.
type Envelope struct {
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
	Embeddings [][]float32      `json:"embeddings"`
	IDs        []string         `json:"ids,omitempty"`
}

// TransferService exports and imports vector collections.
type TransferService struct {
	store vectorstore.Store
}

func NewTransferService(store vectorstore.Store) *TransferService {
	return &TransferService{store: store}
}

// Export dumps every chunk of a collection into an envelope. Ids are
// synthesized as "<source_id>:<chunk_index>".
func (s *TransferService) Export(ctx context.Context, collection string) (*Envelope, error) {
	hits, err := s.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", collection, err)
	}

	env := &Envelope{
		Documents:  make([]string, 0, len(hits)),
		Metadatas:  make([]map[string]any, 0, len(hits)),
		Embeddings: make([][]float32, 0, len(hits)),
		IDs:        make([]string, 0, len(hits)),
	}
	for _, h := range hits {
		env.Documents = append(env.Documents, h.Text)
		env.Metadatas = append(env.Metadatas, metaToMap(h.Meta))
		env.Embeddings = append(env.Embeddings, h.Vector)
		env.IDs = append(env.IDs, fmt.Sprintf("%s:%d", h.Meta.SourceID, h.Meta.ChunkIndex))
	}
	return env, nil
}

// Import writes an envelope's chunks into a collection. A missing ids array
// is fine; identity lives in the metadata. When sourceIDMap is non-empty,
// metadata source_id values are remapped through it, so sources re-imported
// under new ids keep their chunks attached.
func (s *TransferService) Import(ctx context.Context, collection string, env *Envelope, sourceIDMap map[string]string) error {
	if len(env.Documents) != len(env.Metadatas) || len(env.Documents) != len(env.Embeddings) {
		return fmt.Errorf("envelope arrays disagree: %d documents, %d metadatas, %d embeddings",
			len(env.Documents), len(env.Metadatas), len(env.Embeddings))
	}

	chunks := make([]domain.DocumentChunk, len(env.Documents))
	for i, doc := range env.Documents {
		meta := metaFromMap(env.Metadatas[i])
		if mapped, ok := sourceIDMap[meta.SourceID]; ok {
			meta.SourceID = mapped
		}
		chunks[i] = domain.DocumentChunk{Text: doc, Meta: meta}
	}

	return vectorstore.AddBisect(ctx, s.store, collection, chunks, env.Embeddings)
}

func metaToMap(m domain.ChunkMetadata) map[string]any {
	out := map[string]any{
		"source_id":   m.SourceID,
		"chunk_index": m.ChunkIndex,
	}
	if m.WorldID != 0 {
		out["world_id"] = m.WorldID
	}
	if m.ConceptID != 0 {
		out["concept_id"] = m.ConceptID
	}
	if m.AgentID != 0 {
		out["agent_id"] = m.AgentID
	}
	if m.Title != "" {
		out["title"] = m.Title
	}
	return out
}

// metaFromMap tolerates JSON-decoded numbers (float64) as well as native
// int types.
func metaFromMap(raw map[string]any) domain.ChunkMetadata {
	return domain.ChunkMetadata{
		SourceID:   stringField(raw, "source_id"),
		ChunkIndex: int(intField(raw, "chunk_index")),
		WorldID:    intField(raw, "world_id"),
		ConceptID:  intField(raw, "concept_id"),
		AgentID:    intField(raw, "agent_id"),
		Title:      stringField(raw, "title"),
	}
}

func stringField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

func intField(raw map[string]any, key string) int64 {
	switch v := raw[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
