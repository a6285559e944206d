package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loreforge/loreforge/internal/domain"
)

const pageColumns = `id, world_id, concept_id, name, content, autogenerated_content,
	allow_crosslinks, allow_crossworld, ignore_crosslink, created_at, updated_at`

type PageRepository struct {
	db dbtx
}

func NewPageRepository(pool *pgxpool.Pool) *PageRepository {
	return &PageRepository{db: pool}
}

func NewPageRepositoryWithTx(tx pgx.Tx) *PageRepository {
	return &PageRepository{db: tx}
}

func (r *PageRepository) Create(ctx context.Context, page *domain.Page) error {
	now := time.Now().UTC()
	page.CreatedAt = now
	page.UpdatedAt = now
	return r.db.QueryRow(ctx,
		`INSERT INTO pages (world_id, concept_id, name, content, autogenerated_content,
			allow_crosslinks, allow_crossworld, ignore_crosslink, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		page.WorldID, page.ConceptID, page.Name, page.Content, page.AutogeneratedContent,
		page.AllowCrosslinks, page.AllowCrossworld, page.IgnoreCrosslink,
		page.CreatedAt, page.UpdatedAt,
	).Scan(&page.ID)
}

func (r *PageRepository) GetByID(ctx context.Context, id int64) (*domain.Page, error) {
	var p domain.Page
	err := r.db.QueryRow(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.WorldID, &p.ConceptID, &p.Name, &p.Content, &p.AutogeneratedContent,
		&p.AllowCrosslinks, &p.AllowCrossworld, &p.IgnoreCrosslink, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPageNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PageRepository) ListByWorld(ctx context.Context, worldID int64) ([]domain.Page, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE world_id = $1 ORDER BY id`,
		worldID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPageRows(rows)
}

// ListByWorldPage returns up to limit pages with id greater than afterID,
// in id order. afterID 0 starts from the beginning.
func (r *PageRepository) ListByWorldPage(ctx context.Context, worldID, afterID int64, limit int) ([]domain.Page, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+pageColumns+` FROM pages WHERE world_id = $1 AND id > $2 ORDER BY id LIMIT $3`,
		worldID, afterID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPageRows(rows)
}

func (r *PageRepository) ListAll(ctx context.Context) ([]domain.Page, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ` + pageColumns + ` FROM pages ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPageRows(rows)
}

func (r *PageRepository) Update(ctx context.Context, page *domain.Page) error {
	page.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE pages SET name = $1, content = $2, autogenerated_content = $3,
			allow_crosslinks = $4, allow_crossworld = $5, ignore_crosslink = $6, updated_at = $7
		 WHERE id = $8`,
		page.Name, page.Content, page.AutogeneratedContent,
		page.AllowCrosslinks, page.AllowCrossworld, page.IgnoreCrosslink, page.UpdatedAt,
		page.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

// UpdateContent persists only the two HTML fields. The crosslink pass uses
// it so a concurrent metadata edit is never overwritten.
func (r *PageRepository) UpdateContent(ctx context.Context, id int64, content, autogenerated string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE pages SET content = $1, autogenerated_content = $2, updated_at = $3 WHERE id = $4`,
		content, autogenerated, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

func (r *PageRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM pages WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPageNotFound
	}
	return nil
}

func scanPageRows(rows pgx.Rows) ([]domain.Page, error) {
	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID, &p.WorldID, &p.ConceptID, &p.Name, &p.Content, &p.AutogeneratedContent,
			&p.AllowCrosslinks, &p.AllowCrossworld, &p.IgnoreCrosslink, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
