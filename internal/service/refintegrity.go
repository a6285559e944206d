package service

import (
	"context"
	"strconv"

	"github.com/loreforge/loreforge/internal/domain"
)

// RefCharacteristicRepository is the characteristic access reference
// integrity needs.
type RefCharacteristicRepository interface {
	ListPageRefByWorld(ctx context.Context, worldID int64) ([]domain.Characteristic, error)
	ListValuesByCharacteristic(ctx context.Context, characteristicID int64) ([]domain.PageCharacteristicValue, error)
	UpdateValues(ctx context.Context, valueID int64, values []string) error
}

// ReferenceIntegrityService removes dangling page references after a page
// is deleted. Values are compared as strings; a list emptied by removal is
// persisted as an empty list.
type ReferenceIntegrityService struct {
	characteristics RefCharacteristicRepository
}

func NewReferenceIntegrityService(characteristics RefCharacteristicRepository) *ReferenceIntegrityService {
	return &ReferenceIntegrityService{characteristics: characteristics}
}

// OnPageDeleted scrubs the deleted page's id from every page-reference
// value list in its world. Idempotent and safe to retry; returns how many
// value rows changed.
func (s *ReferenceIntegrityService) OnPageDeleted(ctx context.Context, page *domain.Page) (int, error) {
	deletedID := strconv.FormatInt(page.ID, 10)

	chars, err := s.characteristics.ListPageRefByWorld(ctx, page.WorldID)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, char := range chars {
		if char.Kind != domain.CharacteristicKindPageRef {
			continue
		}
		values, err := s.characteristics.ListValuesByCharacteristic(ctx, char.ID)
		if err != nil {
			return changed, err
		}
		for _, row := range values {
			kept := make([]string, 0, len(row.Values))
			for _, v := range row.Values {
				if v != deletedID {
					kept = append(kept, v)
				}
			}
			if len(kept) == len(row.Values) {
				continue
			}
			if err := s.characteristics.UpdateValues(ctx, row.ID, kept); err != nil {
				return changed, err
			}
			changed++
		}
	}
	return changed, nil
}
