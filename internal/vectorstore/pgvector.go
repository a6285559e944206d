package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/loreforge/loreforge/internal/domain"
)

// DefaultPgMaxBatch bounds how many rows a single Add may insert. Larger
// batches are rejected with ErrBatchTooLarge so callers fall back to
// bisection instead of holding one long transaction.
const DefaultPgMaxBatch = 500

// PgStore keeps chunks in a single Postgres table with a collection
// discriminator column and a pgvector embedding.
type PgStore struct {
	pool     *pgxpool.Pool
	maxBatch int
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, maxBatch: DefaultPgMaxBatch}
}

func (s *PgStore) Add(ctx context.Context, collection string, chunks []domain.DocumentChunk, vectors [][]float32) error {
	if s.maxBatch > 0 && len(chunks) > s.maxBatch {
		return fmt.Errorf("insert of %d chunks: %w", len(chunks), ErrBatchTooLarge)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, c := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO vector_chunks
				(collection, source_id, chunk_index, world_id, concept_id, agent_id, title, content, embedding)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			collection,
			c.Meta.SourceID,
			c.Meta.ChunkIndex,
			c.Meta.WorldID,
			c.Meta.ConceptID,
			c.Meta.AgentID,
			c.Meta.Title,
			c.Text,
			pgvector.NewVector(vectors[i]),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PgStore) DeleteSource(ctx context.Context, collection, sourceID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM vector_chunks WHERE collection = $1 AND source_id = $2`,
		collection, sourceID)
	return err
}

func (s *PgStore) DeleteCollection(ctx context.Context, collection string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM vector_chunks WHERE collection = $1`, collection)
	return err
}

func (s *PgStore) List(ctx context.Context, collection string) ([]Hit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_id, chunk_index, world_id, concept_id, agent_id, title, content, embedding
		   FROM vector_chunks
		  WHERE collection = $1
		  ORDER BY source_id, chunk_index`,
		collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var embedding pgvector.Vector
		if err := rows.Scan(
			&h.Meta.SourceID,
			&h.Meta.ChunkIndex,
			&h.Meta.WorldID,
			&h.Meta.ConceptID,
			&h.Meta.AgentID,
			&h.Meta.Title,
			&h.Text,
			&embedding,
		); err != nil {
			return nil, err
		}
		h.Vector = embedding.Slice()
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *PgStore) Query(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT source_id, chunk_index, world_id, concept_id, agent_id, title, content, embedding,
		        embedding <=> $2 AS distance
		   FROM vector_chunks
		  WHERE collection = $1
		  ORDER BY distance
		  LIMIT $3`,
		collection, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var embedding pgvector.Vector
		if err := rows.Scan(
			&h.Meta.SourceID,
			&h.Meta.ChunkIndex,
			&h.Meta.WorldID,
			&h.Meta.ConceptID,
			&h.Meta.AgentID,
			&h.Meta.Title,
			&h.Text,
			&embedding,
			&h.Distance,
		); err != nil {
			return nil, err
		}
		h.Vector = embedding.Slice()
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	return hits, nil
}
