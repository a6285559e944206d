package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/loreforge/loreforge/internal/domain"
)

// Extra methods so MockPageRepository satisfies PageRepositoryInterface.

func (m *MockPageRepository) Create(ctx context.Context, page *domain.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageRepository) Update(ctx context.Context, page *domain.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCharacteristicRepository) ListNamedValuesByPage(ctx context.Context, pageID int64) ([]NamedValue, error) {
	args := m.Called(ctx, pageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]NamedValue), args.Error(1)
}

// MockConceptRepository is a mock for ConceptRepositoryInterface
type MockConceptRepository struct {
	mock.Mock
}

func (m *MockConceptRepository) GetByID(ctx context.Context, id int64) (*domain.Concept, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concept), args.Error(1)
}

// MockAgentRepository is a mock for AgentRepositoryInterface
type MockAgentRepository struct {
	mock.Mock
}

func (m *MockAgentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) ListByWorld(ctx context.Context, worldID int64) ([]domain.Agent, error) {
	args := m.Called(ctx, worldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Agent), args.Error(1)
}

func (m *MockAgentRepository) StampLastIndexed(ctx context.Context, agentID int64, at time.Time) error {
	args := m.Called(ctx, agentID, at)
	return args.Error(0)
}

// MockSourceRepository is a mock for SourceRepositoryInterface
type MockSourceRepository struct {
	mock.Mock
}

func (m *MockSourceRepository) GetByID(ctx context.Context, id int64) (*domain.SpecialistSource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecialistSource), args.Error(1)
}

func (m *MockSourceRepository) ListByAgent(ctx context.Context, agentID int64) ([]domain.SpecialistSource, error) {
	args := m.Called(ctx, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SpecialistSource), args.Error(1)
}

// MockSourceResolver is a mock for SourceTextResolver
type MockSourceResolver struct {
	mock.Mock
}

func (m *MockSourceResolver) Resolve(ctx context.Context, src *domain.SpecialistSource) (SourceText, error) {
	args := m.Called(ctx, src)
	return args.Get(0).(SourceText), args.Error(1)
}

// stubEmbedder returns the same vector for every text.
type stubEmbedder struct {
	vec []float32
}

func (s stubEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

// stubTxRunner runs the function against fixed repositories with no real
// transaction.
type stubTxRunner struct {
	pages  PageRepositoryInterface
	agents AgentRepositoryInterface
}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	return fn(s)
}

func (s stubTxRunner) Pages() PageRepositoryInterface   { return s.pages }
func (s stubTxRunner) Agents() AgentRepositoryInterface { return s.agents }
