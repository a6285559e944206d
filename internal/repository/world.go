package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loreforge/loreforge/internal/domain"
)

type WorldRepository struct {
	db dbtx
}

func NewWorldRepository(pool *pgxpool.Pool) *WorldRepository {
	return &WorldRepository{db: pool}
}

func (r *WorldRepository) Create(ctx context.Context, world *domain.World) error {
	now := time.Now().UTC()
	world.CreatedAt = now
	world.UpdatedAt = now
	return r.db.QueryRow(ctx,
		`INSERT INTO worlds (name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		world.Name, world.Description, world.CreatedAt, world.UpdatedAt,
	).Scan(&world.ID)
}

func (r *WorldRepository) GetByID(ctx context.Context, id int64) (*domain.World, error) {
	var w domain.World
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, created_at, updated_at FROM worlds WHERE id = $1`,
		id,
	).Scan(&w.ID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorldNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *WorldRepository) List(ctx context.Context) ([]domain.World, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM worlds ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var worlds []domain.World
	for rows.Next() {
		var w domain.World
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		worlds = append(worlds, w)
	}
	return worlds, rows.Err()
}
