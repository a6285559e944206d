package jobs

import (
	"context"

	"github.com/loreforge/loreforge/internal/domain"
)

// WorldIndexer maintains vector collections, page by page or wholesale.
type WorldIndexer interface {
	IndexPage(ctx context.Context, pageID int64) error
	RebuildWorld(ctx context.Context, worldID int64) (int, error)
	RebuildSpecialist(ctx context.Context, agentID int64, progress func(string)) (int, error)
}

// Crosslinker maintains wiki links across pages.
type Crosslinker interface {
	LinkPage(ctx context.Context, pageID int64) error
	LinkWorld(ctx context.Context, worldID int64) (int, error)
	UnlinkPage(ctx context.Context, deleted *domain.Page) (int, error)
}

// RefCleaner scrubs dangling page references after a deletion.
type RefCleaner interface {
	OnPageDeleted(ctx context.Context, page *domain.Page) (int, error)
}

// RegisterHandlers binds every job type to its service. Echo fields on the
// record carry the handler inputs: world_id for rebuilds and batch links,
// agent_id for specialist rebuilds, page_id (+world_id) for page-scoped
// passes.
func RegisterHandlers(o *Orchestrator, indexer WorldIndexer, links Crosslinker, refs RefCleaner) {
	o.Register(domain.JobTypeRebuildWorld, func(ctx context.Context, job *domain.JobRecord, progress func(string)) (map[string]any, error) {
		n, err := indexer.RebuildWorld(ctx, job.WorldID)
		if err != nil {
			return nil, err
		}
		job.PagesIndexed = &n
		return map[string]any{"pages_indexed": n}, nil
	})

	o.Register(domain.JobTypeRebuildSpecialist, func(ctx context.Context, job *domain.JobRecord, progress func(string)) (map[string]any, error) {
		n, err := indexer.RebuildSpecialist(ctx, job.AgentID, progress)
		if err != nil {
			return nil, err
		}
		job.SourcesIndexed = &n
		return map[string]any{"sources_indexed": n}, nil
	})

	o.Register(domain.JobTypeIndexPage, func(ctx context.Context, job *domain.JobRecord, progress func(string)) (map[string]any, error) {
		if err := indexer.IndexPage(ctx, job.PageID); err != nil {
			return nil, err
		}
		return nil, nil
	})

	o.Register(domain.JobTypeCrosslinkPage, func(ctx context.Context, job *domain.JobRecord, progress func(string)) (map[string]any, error) {
		if err := links.LinkPage(ctx, job.PageID); err != nil {
			return nil, err
		}
		return nil, nil
	})

	o.Register(domain.JobTypeCrosslinkBatch, func(ctx context.Context, job *domain.JobRecord, progress func(string)) (map[string]any, error) {
		n, err := links.LinkWorld(ctx, job.WorldID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"pages_changed": n}, nil
	})

	o.Register(domain.JobTypeUnlinkPage, func(ctx context.Context, job *domain.JobRecord, progress func(string)) (map[string]any, error) {
		deleted := &domain.Page{ID: job.PageID, WorldID: job.WorldID}
		unlinked, err := links.UnlinkPage(ctx, deleted)
		if err != nil {
			return nil, err
		}
		cleaned, err := refs.OnPageDeleted(ctx, deleted)
		if err != nil {
			return nil, err
		}
		return map[string]any{"pages_unlinked": unlinked, "values_cleaned": cleaned}, nil
	})
}
