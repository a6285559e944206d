package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/service"
)

type MockPageStore struct {
	mock.Mock
}

func (m *MockPageStore) Create(ctx context.Context, page *domain.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageStore) GetByID(ctx context.Context, id int64) (*domain.Page, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *MockPageStore) ListByWorldPage(ctx context.Context, worldID, afterID int64, limit int) ([]domain.Page, error) {
	args := m.Called(ctx, worldID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Page), args.Error(1)
}

func (m *MockPageStore) Update(ctx context.Context, page *domain.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Submit(ctx context.Context, job *domain.JobRecord) (string, error) {
	args := m.Called(ctx, job)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) Get(ctx context.Context, id string) (*domain.JobRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobRecord), args.Error(1)
}

type MockChunkRemover struct {
	mock.Mock
}

func (m *MockChunkRemover) RemovePage(ctx context.Context, worldID, pageID int64) error {
	args := m.Called(ctx, worldID, pageID)
	return args.Error(0)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchWorld(ctx context.Context, worldID int64, query string, n int) ([]service.RetrievedDocument, error) {
	args := m.Called(ctx, worldID, query, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RetrievedDocument), args.Error(1)
}

func (m *MockSearcher) SearchSpecialist(ctx context.Context, agentID int64, query string, n int) ([]service.RetrievedDocument, error) {
	args := m.Called(ctx, agentID, query, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RetrievedDocument), args.Error(1)
}

type MockWorldStore struct {
	mock.Mock
}

func (m *MockWorldStore) GetByID(ctx context.Context, id int64) (*domain.World, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.World), args.Error(1)
}

type MockAgentStore struct {
	mock.Mock
}

func (m *MockAgentStore) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agent), args.Error(1)
}

type MockTransferer struct {
	mock.Mock
}

func (m *MockTransferer) Export(ctx context.Context, collection string) (*service.Envelope, error) {
	args := m.Called(ctx, collection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Envelope), args.Error(1)
}

func (m *MockTransferer) Import(ctx context.Context, collection string, env *service.Envelope, sourceIDMap map[string]string) error {
	args := m.Called(ctx, collection, env, sourceIDMap)
	return args.Error(0)
}
