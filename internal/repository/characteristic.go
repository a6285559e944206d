package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/service"
)

type CharacteristicRepository struct {
	db dbtx
}

func NewCharacteristicRepository(pool *pgxpool.Pool) *CharacteristicRepository {
	return &CharacteristicRepository{db: pool}
}

func (r *CharacteristicRepository) Create(ctx context.Context, c *domain.Characteristic) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO characteristics (world_id, concept_id, name, kind, target_concept_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		c.WorldID, c.ConceptID, c.Name, c.Kind, c.TargetConceptID,
	).Scan(&c.ID)
}

func (r *CharacteristicRepository) SetValues(ctx context.Context, v *domain.PageCharacteristicValue) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO page_characteristic_values (page_id, characteristic_id, "values")
		 VALUES ($1, $2, $3)
		 ON CONFLICT (page_id, characteristic_id) DO UPDATE SET "values" = EXCLUDED."values"
		 RETURNING id`,
		v.PageID, v.CharacteristicID, v.Values,
	).Scan(&v.ID)
}

func (r *CharacteristicRepository) ListPageRefByWorld(ctx context.Context, worldID int64) ([]domain.Characteristic, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, world_id, concept_id, name, kind, target_concept_id
		 FROM characteristics WHERE world_id = $1 AND kind = $2 ORDER BY id`,
		worldID, domain.CharacteristicKindPageRef,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chars []domain.Characteristic
	for rows.Next() {
		var c domain.Characteristic
		if err := rows.Scan(&c.ID, &c.WorldID, &c.ConceptID, &c.Name, &c.Kind, &c.TargetConceptID); err != nil {
			return nil, err
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

func (r *CharacteristicRepository) ListValuesByCharacteristic(ctx context.Context, characteristicID int64) ([]domain.PageCharacteristicValue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, page_id, characteristic_id, "values"
		 FROM page_characteristic_values WHERE characteristic_id = $1 ORDER BY id`,
		characteristicID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []domain.PageCharacteristicValue
	for rows.Next() {
		var v domain.PageCharacteristicValue
		if err := rows.Scan(&v.ID, &v.PageID, &v.CharacteristicID, &v.Values); err != nil {
			return nil, err
		}
		if v.Values == nil {
			v.Values = []string{}
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// UpdateValues overwrites one value row. An empty slice is stored as an
// empty array, never NULL.
func (r *CharacteristicRepository) UpdateValues(ctx context.Context, valueID int64, values []string) error {
	if values == nil {
		values = []string{}
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE page_characteristic_values SET "values" = $1 WHERE id = $2`,
		values, valueID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCharacteristicNotFound
	}
	return nil
}

// ListNamedValuesByPage returns a page's characteristic values joined with
// the characteristic names, for document composition.
func (r *CharacteristicRepository) ListNamedValuesByPage(ctx context.Context, pageID int64) ([]service.NamedValue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.name, v."values"
		 FROM page_characteristic_values v
		 JOIN characteristics c ON c.id = v.characteristic_id
		 WHERE v.page_id = $1 ORDER BY c.id`,
		pageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var named []service.NamedValue
	for rows.Next() {
		var nv service.NamedValue
		if err := rows.Scan(&nv.Name, &nv.Values); err != nil {
			return nil, err
		}
		named = append(named, nv)
	}
	return named, rows.Err()
}
