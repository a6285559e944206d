package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loreforge/loreforge/internal/domain"
)

type ConceptRepository struct {
	db dbtx
}

func NewConceptRepository(pool *pgxpool.Pool) *ConceptRepository {
	return &ConceptRepository{db: pool}
}

func (r *ConceptRepository) Create(ctx context.Context, concept *domain.Concept) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO concepts (world_id, name, description)
		 VALUES ($1, $2, $3) RETURNING id`,
		concept.WorldID, concept.Name, concept.Description,
	).Scan(&concept.ID)
}

func (r *ConceptRepository) GetByID(ctx context.Context, id int64) (*domain.Concept, error) {
	var c domain.Concept
	err := r.db.QueryRow(ctx,
		`SELECT id, world_id, name, description FROM concepts WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.WorldID, &c.Name, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConceptNotFound
		}
		return nil, err
	}
	return &c, nil
}
