package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loreforge/loreforge/internal/domain"
)

type AgentRepository struct {
	db dbtx
}

func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{db: pool}
}

func NewAgentRepositoryWithTx(tx pgx.Tx) *AgentRepository {
	return &AgentRepository{db: tx}
}

func (r *AgentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	agent.CreatedAt = time.Now().UTC()
	return r.db.QueryRow(ctx,
		`INSERT INTO agents (world_id, name, created_at)
		 VALUES ($1, $2, $3) RETURNING id`,
		agent.WorldID, agent.Name, agent.CreatedAt,
	).Scan(&agent.ID)
}

func (r *AgentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	var a domain.Agent
	err := r.db.QueryRow(ctx,
		`SELECT id, world_id, name, last_indexed_at, created_at FROM agents WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.WorldID, &a.Name, &a.LastIndexedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AgentRepository) ListByWorld(ctx context.Context, worldID int64) ([]domain.Agent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, world_id, name, last_indexed_at, created_at
		 FROM agents WHERE world_id = $1 ORDER BY id`,
		worldID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		var a domain.Agent
		if err := rows.Scan(&a.ID, &a.WorldID, &a.Name, &a.LastIndexedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func (r *AgentRepository) StampLastIndexed(ctx context.Context, agentID int64, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE agents SET last_indexed_at = $1 WHERE id = $2`,
		at, agentID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}
