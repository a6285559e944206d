package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/vectorstore"
)

type indexFixture struct {
	store           *vectorstore.MemoryStore
	pages           *MockPageRepository
	concepts        *MockConceptRepository
	characteristics *MockCharacteristicRepository
	agents          *MockAgentRepository
	sources         *MockSourceRepository
	resolver        *MockSourceResolver
	svc             *IndexService
}

func newIndexFixture() *indexFixture {
	f := &indexFixture{
		store:           vectorstore.NewMemoryStore(),
		pages:           new(MockPageRepository),
		concepts:        new(MockConceptRepository),
		characteristics: new(MockCharacteristicRepository),
		agents:          new(MockAgentRepository),
		sources:         new(MockSourceRepository),
		resolver:        new(MockSourceResolver),
	}
	f.svc = NewIndexService(
		f.store,
		stubEmbedder{vec: []float32{1, 0, 0}},
		f.pages,
		f.concepts,
		f.characteristics,
		f.agents,
		f.sources,
		f.resolver,
		stubTxRunner{pages: f.pages, agents: f.agents},
	)
	return f
}

func TestIndexService_IndexPage(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture()

	page := domain.Page{ID: 7, WorldID: 1, ConceptID: 2, Name: "Ventrue",
		Content: "<p>Kindred of the first city.</p>"}
	f.pages.On("GetByID", ctx, int64(7)).Return(&page, nil)
	f.concepts.On("GetByID", ctx, int64(2)).Return(&domain.Concept{ID: 2, Description: "A vampire clan."}, nil)
	f.characteristics.On("ListNamedValuesByPage", ctx, int64(7)).Return([]NamedValue{
		{Name: "Disciplines", Values: []string{"Dominate", "Presence"}},
	}, nil)

	require.NoError(t, f.svc.IndexPage(ctx, 7))

	hits, err := f.store.Query(ctx, "world_1", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "7", hits[0].Meta.SourceID)
	assert.Equal(t, "Ventrue", hits[0].Meta.Title)
	assert.Contains(t, hits[0].Text, "Kindred of the first city.")
	assert.Contains(t, hits[0].Text, "A vampire clan.")
	assert.Contains(t, hits[0].Text, "Disciplines: Dominate, Presence")
}

func TestIndexService_IndexPage_ReplacesOldChunks(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture()

	stale := []domain.DocumentChunk{{Text: "stale", Meta: domain.ChunkMetadata{SourceID: "7", ChunkIndex: 0}}}
	require.NoError(t, f.store.Add(ctx, "world_1", stale, [][]float32{{0, 1, 0}}))

	page := domain.Page{ID: 7, WorldID: 1, Name: "Ventrue", Content: "<p>fresh text</p>"}
	f.pages.On("GetByID", ctx, int64(7)).Return(&page, nil)
	f.characteristics.On("ListNamedValuesByPage", ctx, int64(7)).Return([]NamedValue{}, nil)

	require.NoError(t, f.svc.IndexPage(ctx, 7))

	hits, err := f.store.Query(ctx, "world_1", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Text, "fresh text")
}

func TestIndexService_RebuildWorld(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture()

	pages := []domain.Page{
		{ID: 7, WorldID: 1, Name: "Ventrue", Content: "<p>one</p>"},
		{ID: 8, WorldID: 1, Name: "Malkavian", Content: "<p>two</p>"},
		{ID: 9, WorldID: 1, Name: "Empty"},
	}
	f.pages.On("ListByWorld", ctx, int64(1)).Return(pages, nil)
	f.characteristics.On("ListNamedValuesByPage", ctx, mock.Anything).Return([]NamedValue{}, nil)
	f.agents.On("ListByWorld", ctx, int64(1)).Return([]domain.Agent{{ID: 5, WorldID: 1}}, nil)
	f.agents.On("StampLastIndexed", ctx, int64(5), mock.Anything).Return(nil)

	indexed, err := f.svc.RebuildWorld(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 3, indexed)
	// The empty page contributes no chunks; page name still indexes.
	assert.Equal(t, 3, f.store.Count("world_1"))
	f.agents.AssertExpectations(t)
}

func TestIndexService_RebuildWorld_DeletesOldCollection(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture()

	stale := []domain.DocumentChunk{{Text: "stale", Meta: domain.ChunkMetadata{SourceID: "99"}}}
	require.NoError(t, f.store.Add(ctx, "world_1", stale, [][]float32{{0, 1, 0}}))

	f.pages.On("ListByWorld", ctx, int64(1)).Return([]domain.Page{}, nil)
	f.agents.On("ListByWorld", ctx, int64(1)).Return([]domain.Agent{}, nil)

	indexed, err := f.svc.RebuildWorld(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 0, indexed)
	assert.Equal(t, 0, f.store.Count("world_1"))
}

func TestIndexService_RebuildSpecialist(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture()

	agent := domain.Agent{ID: 6, WorldID: 1, Name: "Archivist"}
	sources := []domain.SpecialistSource{
		{ID: 41, AgentID: 6, Kind: domain.SourceKindText, Name: "Notes", Content: "inline notes"},
		{ID: 42, AgentID: 6, Kind: domain.SourceKindFile, Name: "Manual", ObjectKey: "manual.pdf"},
		{ID: 43, AgentID: 6, Kind: domain.SourceKindLink, Name: "Wiki", URL: "http://example.com"},
	}
	f.agents.On("GetByID", ctx, int64(6)).Return(&agent, nil)
	f.sources.On("ListByAgent", ctx, int64(6)).Return(sources, nil)
	f.agents.On("StampLastIndexed", ctx, int64(6), mock.Anything).Return(nil)

	f.resolver.On("Resolve", ctx, &sources[0]).Return(SourceText{Text: "inline notes"}, nil)
	f.resolver.On("Resolve", ctx, &sources[1]).Return(SourceText{Pages: []string{"page one", "page two"}}, nil)
	f.resolver.On("Resolve", ctx, &sources[2]).Return(SourceText{}, errors.New("fetch failed"))

	var updates []string
	indexed, err := f.svc.RebuildSpecialist(ctx, 6, func(p string) { updates = append(updates, p) })

	require.NoError(t, err)
	// The unreadable link source is skipped, not fatal.
	assert.Equal(t, 2, indexed)
	assert.Equal(t, []string{"source 1/3", "source 2/3", "source 3/3"}, updates)
	// One chunk for the inline text, one per file page.
	assert.Equal(t, 3, f.store.Count("specialist_6"))
	f.agents.AssertExpectations(t)
}

func TestIndexService_RebuildSpecialist_AgentMissing(t *testing.T) {
	ctx := context.Background()
	f := newIndexFixture()

	f.agents.On("GetByID", ctx, int64(99)).Return(nil, domain.ErrAgentNotFound)

	_, err := f.svc.RebuildSpecialist(ctx, 99, nil)

	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "Kindred of Clan Ventrue.",
		HTMLToText(`<p>Kindred of Clan <a href="/x">Ventrue</a>.</p>`))
	assert.Equal(t, "", HTMLToText("  "))
	assert.Equal(t, "plain words", HTMLToText("plain words"))
}
