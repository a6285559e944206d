package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loreforge/loreforge/internal/domain"
)

type SourceRepository struct {
	db dbtx
}

func NewSourceRepository(pool *pgxpool.Pool) *SourceRepository {
	return &SourceRepository{db: pool}
}

func (r *SourceRepository) Create(ctx context.Context, src *domain.SpecialistSource) error {
	src.CreatedAt = time.Now().UTC()
	return r.db.QueryRow(ctx,
		`INSERT INTO specialist_sources (agent_id, kind, name, content, object_key, url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		src.AgentID, src.Kind, src.Name, src.Content,
		nullableString(src.ObjectKey), nullableString(src.URL), src.CreatedAt,
	).Scan(&src.ID)
}

func (r *SourceRepository) GetByID(ctx context.Context, id int64) (*domain.SpecialistSource, error) {
	var s domain.SpecialistSource
	var objectKey, url *string
	err := r.db.QueryRow(ctx,
		`SELECT id, agent_id, kind, name, content, object_key, url, created_at
		 FROM specialist_sources WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.AgentID, &s.Kind, &s.Name, &s.Content, &objectKey, &url, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSourceNotFound
		}
		return nil, err
	}
	if objectKey != nil {
		s.ObjectKey = *objectKey
	}
	if url != nil {
		s.URL = *url
	}
	return &s, nil
}

func (r *SourceRepository) ListByAgent(ctx context.Context, agentID int64) ([]domain.SpecialistSource, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, agent_id, kind, name, content, object_key, url, created_at
		 FROM specialist_sources WHERE agent_id = $1 ORDER BY id`,
		agentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []domain.SpecialistSource
	for rows.Next() {
		var s domain.SpecialistSource
		var objectKey, url *string
		if err := rows.Scan(&s.ID, &s.AgentID, &s.Kind, &s.Name, &s.Content, &objectKey, &url, &s.CreatedAt); err != nil {
			return nil, err
		}
		if objectKey != nil {
			s.ObjectKey = *objectKey
		}
		if url != nil {
			s.URL = *url
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *SourceRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM specialist_sources WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSourceNotFound
	}
	return nil
}
