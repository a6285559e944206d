package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loreforge/loreforge/internal/domain"
)

// MockCharacteristicRepository is a mock for RefCharacteristicRepository
type MockCharacteristicRepository struct {
	mock.Mock
}

func (m *MockCharacteristicRepository) ListPageRefByWorld(ctx context.Context, worldID int64) ([]domain.Characteristic, error) {
	args := m.Called(ctx, worldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Characteristic), args.Error(1)
}

func (m *MockCharacteristicRepository) ListValuesByCharacteristic(ctx context.Context, characteristicID int64) ([]domain.PageCharacteristicValue, error) {
	args := m.Called(ctx, characteristicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PageCharacteristicValue), args.Error(1)
}

func (m *MockCharacteristicRepository) UpdateValues(ctx context.Context, valueID int64, values []string) error {
	args := m.Called(ctx, valueID, values)
	return args.Error(0)
}

func TestReferenceIntegrity_RemovesDeletedID(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCharacteristicRepository)
	svc := NewReferenceIntegrityService(repo)

	allies := domain.Characteristic{ID: 3, WorldID: 1, Kind: domain.CharacteristicKindPageRef, Name: "Allies"}
	repo.On("ListPageRefByWorld", ctx, int64(1)).Return([]domain.Characteristic{allies}, nil)
	repo.On("ListValuesByCharacteristic", ctx, int64(3)).Return([]domain.PageCharacteristicValue{
		{ID: 10, PageID: 9, CharacteristicID: 3, Values: []string{"7", "12"}},
		{ID: 11, PageID: 10, CharacteristicID: 3, Values: []string{"12"}},
	}, nil)
	repo.On("UpdateValues", ctx, int64(10), []string{"12"}).Return(nil)

	changed, err := svc.OnPageDeleted(ctx, &domain.Page{ID: 7, WorldID: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "UpdateValues", ctx, int64(11), mock.Anything)
}

func TestReferenceIntegrity_EmptiedListPersistsAsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCharacteristicRepository)
	svc := NewReferenceIntegrityService(repo)

	ref := domain.Characteristic{ID: 3, WorldID: 1, Kind: domain.CharacteristicKindPageRef}
	repo.On("ListPageRefByWorld", ctx, int64(1)).Return([]domain.Characteristic{ref}, nil)
	repo.On("ListValuesByCharacteristic", ctx, int64(3)).Return([]domain.PageCharacteristicValue{
		{ID: 10, PageID: 9, CharacteristicID: 3, Values: []string{"7"}},
	}, nil)
	repo.On("UpdateValues", ctx, int64(10), []string{}).Return(nil)

	changed, err := svc.OnPageDeleted(ctx, &domain.Page{ID: 7, WorldID: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	repo.AssertExpectations(t)
}

func TestReferenceIntegrity_IdsComparedAsStrings(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCharacteristicRepository)
	svc := NewReferenceIntegrityService(repo)

	ref := domain.Characteristic{ID: 3, WorldID: 1, Kind: domain.CharacteristicKindPageRef}
	repo.On("ListPageRefByWorld", ctx, int64(1)).Return([]domain.Characteristic{ref}, nil)
	// "07" and "70" must not match page id 7.
	repo.On("ListValuesByCharacteristic", ctx, int64(3)).Return([]domain.PageCharacteristicValue{
		{ID: 10, PageID: 9, CharacteristicID: 3, Values: []string{"07", "70"}},
	}, nil)

	changed, err := svc.OnPageDeleted(ctx, &domain.Page{ID: 7, WorldID: 1})

	require.NoError(t, err)
	assert.Equal(t, 0, changed)
	repo.AssertNotCalled(t, "UpdateValues", mock.Anything, mock.Anything, mock.Anything)
}
