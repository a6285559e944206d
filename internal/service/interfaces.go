package service

import (
	"context"
	"time"

	"github.com/loreforge/loreforge/internal/domain"
)

// PageRepositoryInterface defines the repository contract for pages.
type PageRepositoryInterface interface {
	Create(ctx context.Context, page *domain.Page) error
	GetByID(ctx context.Context, id int64) (*domain.Page, error)
	ListByWorld(ctx context.Context, worldID int64) ([]domain.Page, error)
	ListAll(ctx context.Context) ([]domain.Page, error)
	Update(ctx context.Context, page *domain.Page) error
	UpdateContent(ctx context.Context, id int64, content, autogenerated string) error
	Delete(ctx context.Context, id int64) error
}

// ConceptRepositoryInterface defines the repository contract for concepts.
type ConceptRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Concept, error)
}

// NamedValue is one characteristic's values on a page, with the
// characteristic's display name.
type NamedValue struct {
	Name   string
	Values []string
}

// CharacteristicRepositoryInterface defines the repository contract for
// characteristics and their per-page values.
type CharacteristicRepositoryInterface interface {
	RefCharacteristicRepository
	ListNamedValuesByPage(ctx context.Context, pageID int64) ([]NamedValue, error)
}

// AgentRepositoryInterface defines the repository contract for agents.
type AgentRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	ListByWorld(ctx context.Context, worldID int64) ([]domain.Agent, error)
	StampLastIndexed(ctx context.Context, agentID int64, at time.Time) error
}

// SourceRepositoryInterface defines the repository contract for specialist
// sources.
type SourceRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.SpecialistSource, error)
	ListByAgent(ctx context.Context, agentID int64) ([]domain.SpecialistSource, error)
}

// EmbeddingClient generates embeddings for batches of texts.
type EmbeddingClient interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// SourceText is the resolved content of a specialist source. Pages is set
// when the source has natural page boundaries; Text otherwise.
type SourceText struct {
	Text  string
	Pages []string
}

// SourceTextResolver turns a specialist source into indexable text.
type SourceTextResolver interface {
	Resolve(ctx context.Context, src *domain.SpecialistSource) (SourceText, error)
}
