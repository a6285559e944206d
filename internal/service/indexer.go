package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/vectorstore"
)

// IndexService maintains the vector collections: one per world built from
// its pages, one per specialist agent built from its private sources.
type IndexService struct {
	store           vectorstore.Store
	embedder        EmbeddingClient
	pages           PageRepositoryInterface
	concepts        ConceptRepositoryInterface
	characteristics CharacteristicRepositoryInterface
	agents          AgentRepositoryInterface
	sources         SourceRepositoryInterface
	resolver        SourceTextResolver
	tx              TxRunner
	chunkCfg        ChunkConfig
}

func NewIndexService(
	store vectorstore.Store,
	embedder EmbeddingClient,
	pages PageRepositoryInterface,
	concepts ConceptRepositoryInterface,
	characteristics CharacteristicRepositoryInterface,
	agents AgentRepositoryInterface,
	sources SourceRepositoryInterface,
	resolver SourceTextResolver,
	tx TxRunner,
) *IndexService {
	return &IndexService{
		store:           store,
		embedder:        embedder,
		pages:           pages,
		concepts:        concepts,
		characteristics: characteristics,
		agents:          agents,
		sources:         sources,
		resolver:        resolver,
		tx:              tx,
		chunkCfg:        DefaultChunkConfig(),
	}
}

// IndexPage replaces a single page's chunks in its world collection.
// Called after page create/update; the full rebuild path does not need it.
func (s *IndexService) IndexPage(ctx context.Context, pageID int64) error {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return err
	}

	collection := vectorstore.WorldCollection(page.WorldID)
	sourceID := strconv.FormatInt(page.ID, 10)
	if err := s.store.DeleteSource(ctx, collection, sourceID); err != nil {
		return fmt.Errorf("failed to delete page chunks: %w", err)
	}

	doc, err := s.composePageDocument(ctx, page)
	if err != nil {
		return err
	}
	return s.writeSource(ctx, collection, ChunkText(doc, s.chunkCfg), domain.ChunkMetadata{
		SourceID:  sourceID,
		WorldID:   page.WorldID,
		ConceptID: page.ConceptID,
		Title:     page.Name,
	})
}

// RemovePage drops a deleted page's chunks from its world collection.
func (s *IndexService) RemovePage(ctx context.Context, worldID, pageID int64) error {
	collection := vectorstore.WorldCollection(worldID)
	return s.store.DeleteSource(ctx, collection, strconv.FormatInt(pageID, 10))
}

// RebuildWorld deletes the world's collection and re-derives every page's
// chunks. All agents of the world are stamped with a last-indexed timestamp
// in one transaction once the rewrite succeeds. Returns the number of pages
// indexed.
func (s *IndexService) RebuildWorld(ctx context.Context, worldID int64) (int, error) {
	collection := vectorstore.WorldCollection(worldID)
	if err := s.store.DeleteCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}

	pages, err := s.pages.ListByWorld(ctx, worldID)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for i := range pages {
		page := &pages[i]
		doc, err := s.composePageDocument(ctx, page)
		if err != nil {
			log.Printf("index: skipping page %d: %v", page.ID, err)
			continue
		}
		err = s.writeSource(ctx, collection, ChunkText(doc, s.chunkCfg), domain.ChunkMetadata{
			SourceID:  strconv.FormatInt(page.ID, 10),
			WorldID:   page.WorldID,
			ConceptID: page.ConceptID,
			Title:     page.Name,
		})
		if err != nil {
			return indexed, fmt.Errorf("failed to index page %d: %w", page.ID, err)
		}
		indexed++
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(repos TxRepositories) error {
		agents, err := repos.Agents().ListByWorld(ctx, worldID)
		if err != nil {
			return err
		}
		for _, a := range agents {
			if err := repos.Agents().StampLastIndexed(ctx, a.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return indexed, fmt.Errorf("failed to stamp agents: %w", err)
	}

	return indexed, nil
}

// RebuildSpecialist deletes a specialist agent's collection and re-indexes
// every source. Unreadable sources are logged and skipped; progress, when
// non-nil, receives "source i/n" before each source. Returns the number of
// sources that contributed chunks.
func (s *IndexService) RebuildSpecialist(ctx context.Context, agentID int64, progress func(string)) (int, error) {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return 0, err
	}

	collection := vectorstore.SpecialistCollection(agent.ID)
	if err := s.store.DeleteCollection(ctx, collection); err != nil {
		return 0, fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}

	sources, err := s.sources.ListByAgent(ctx, agent.ID)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for i := range sources {
		src := &sources[i]
		if progress != nil {
			progress(fmt.Sprintf("source %d/%d", i+1, len(sources)))
		}

		text, err := s.resolver.Resolve(ctx, src)
		if err != nil {
			log.Printf("index: skipping unreadable source %d (%s): %v", src.ID, src.Name, err)
			continue
		}

		var chunks []string
		if len(text.Pages) > 0 {
			chunks = ChunkPages(text.Pages, s.chunkCfg)
		} else {
			chunks = ChunkText(text.Text, s.chunkCfg)
		}

		err = s.writeSource(ctx, collection, chunks, domain.ChunkMetadata{
			SourceID: strconv.FormatInt(src.ID, 10),
			AgentID:  agent.ID,
			Title:    src.Name,
		})
		if err != nil {
			return indexed, fmt.Errorf("failed to index source %d: %w", src.ID, err)
		}
		indexed++
	}

	now := time.Now().UTC()
	err = s.tx.WithTx(ctx, func(repos TxRepositories) error {
		return repos.Agents().StampLastIndexed(ctx, agent.ID, now)
	})
	if err != nil {
		return indexed, fmt.Errorf("failed to stamp agent: %w", err)
	}

	return indexed, nil
}

// writeSource embeds one source's chunks and writes them as a unit. A
// source with no chunks writes nothing.
func (s *IndexService) writeSource(ctx context.Context, collection string, texts []string, meta domain.ChunkMetadata) error {
	if len(texts) == 0 {
		return nil
	}

	vectors, err := s.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	chunks := make([]domain.DocumentChunk, len(texts))
	for i, text := range texts {
		m := meta
		m.ChunkIndex = i
		chunks[i] = domain.DocumentChunk{Text: text, Meta: m}
	}
	return vectorstore.AddBisect(ctx, s.store, collection, chunks, vectors)
}

// composePageDocument builds the text indexed for a page: its name, the
// concept description, the page text, and one "Name: value" line per
// characteristic value.
func (s *IndexService) composePageDocument(ctx context.Context, page *domain.Page) (string, error) {
	parts := []string{page.Name}

	if page.ConceptID != 0 {
		concept, err := s.concepts.GetByID(ctx, page.ConceptID)
		if err != nil {
			return "", err
		}
		if concept.Description != "" {
			parts = append(parts, concept.Description)
		}
	}

	if text := HTMLToText(page.Content); text != "" {
		parts = append(parts, text)
	}
	if text := HTMLToText(page.AutogeneratedContent); text != "" {
		parts = append(parts, text)
	}

	values, err := s.characteristics.ListNamedValuesByPage(ctx, page.ID)
	if err != nil {
		return "", err
	}
	for _, v := range values {
		if len(v.Values) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", v.Name, strings.Join(v.Values, ", ")))
	}

	return strings.Join(parts, "\n"), nil
}

// HTMLToText flattens an HTML fragment to its visible text.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	nodes, err := parseFragment(fragment)
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(textContent(n))
	}
	return strings.TrimSpace(b.String())
}
