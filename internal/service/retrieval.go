package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/loreforge/loreforge/internal/vectorstore"
)

const (
	// candidateMultiplier is how many raw chunk hits are fetched per
	// requested document before grouping.
	candidateMultiplier = 4
	// mmrLambda balances query relevance against diversity when re-ranking.
	mmrLambda = 0.5
)

// RetrievedDocument is one reassembled source document returned by search.
type RetrievedDocument struct {
	Document  string `json:"document"`
	SourceID  string `json:"source_id"`
	WorldID   int64  `json:"world_id,omitempty"`
	ConceptID int64  `json:"concept_id,omitempty"`
	AgentID   int64  `json:"agent_id,omitempty"`
	Title     string `json:"title,omitempty"`
}

// SearchService reassembles ranked source documents from chunk hits.
type SearchService struct {
	store    vectorstore.Store
	embedder EmbeddingClient
}

func NewSearchService(store vectorstore.Store, embedder EmbeddingClient) *SearchService {
	return &SearchService{store: store, embedder: embedder}
}

// SearchWorld searches a world's collection.
func (s *SearchService) SearchWorld(ctx context.Context, worldID int64, query string, n int) ([]RetrievedDocument, error) {
	return s.search(ctx, vectorstore.WorldCollection(worldID), query, n)
}

// SearchSpecialist searches a specialist agent's collection.
func (s *SearchService) SearchSpecialist(ctx context.Context, agentID int64, query string, n int) ([]RetrievedDocument, error) {
	return s.search(ctx, vectorstore.SpecialistCollection(agentID), query, n)
}

// search fetches n×4 diversity-ranked chunk hits, groups them by source,
// reassembles each group in chunk order, and returns the top n groups by
// first occurrence. An empty collection yields an empty result, not an
// error.
func (s *SearchService) search(ctx context.Context, collection, query string, n int) ([]RetrievedDocument, error) {
	if n <= 0 {
		n = 5
	}
	if strings.TrimSpace(query) == "" {
		return []RetrievedDocument{}, nil
	}

	vectors, err := s.embedder.GenerateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := vectors[0]

	hits, err := s.store.Query(ctx, collection, queryVec, n*candidateMultiplier)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}
	if len(hits) == 0 {
		return []RetrievedDocument{}, nil
	}

	ranked := mmrRank(queryVec, hits, mmrLambda)

	// Group by source in first-occurrence order among the ranked hits.
	order := make([]string, 0, n)
	groups := make(map[string][]vectorstore.Hit, len(ranked))
	for _, h := range ranked {
		id := h.Meta.SourceID
		if _, seen := groups[id]; !seen {
			order = append(order, id)
		}
		groups[id] = append(groups[id], h)
	}
	if len(order) > n {
		order = order[:n]
	}

	docs := make([]RetrievedDocument, 0, len(order))
	for _, id := range order {
		group := groups[id]
		sortByChunkIndex(group)

		texts := make([]string, len(group))
		for i, h := range group {
			texts[i] = h.Text
		}
		meta := group[0].Meta
		docs = append(docs, RetrievedDocument{
			Document:  strings.Join(texts, " "),
			SourceID:  meta.SourceID,
			WorldID:   meta.WorldID,
			ConceptID: meta.ConceptID,
			AgentID:   meta.AgentID,
			Title:     meta.Title,
		})
	}
	return docs, nil
}

func sortByChunkIndex(hits []vectorstore.Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Meta.ChunkIndex < hits[j].Meta.ChunkIndex
	})
}

// mmrRank orders hits by maximal marginal relevance: each step picks the
// hit that best trades query similarity against similarity to hits already
// selected, so results are not dominated by near-duplicate chunks of one
// source.
func mmrRank(queryVec []float32, hits []vectorstore.Hit, lambda float32) []vectorstore.Hit {
	if len(hits) <= 1 {
		return hits
	}

	remaining := make([]vectorstore.Hit, len(hits))
	copy(remaining, hits)
	selected := make([]vectorstore.Hit, 0, len(hits))

	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := float32(-2)
		for i, h := range remaining {
			relevance := vectorstore.CosineSimilarity(queryVec, h.Vector)
			var redundancy float32
			for _, s := range selected {
				if sim := vectorstore.CosineSimilarity(h.Vector, s.Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}
