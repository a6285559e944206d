package service

import (
	"context"
	"fmt"
	"log"

	"github.com/loreforge/loreforge/internal/domain"
)

// CrosslinkPageRepository is the page access the crosslink pass needs.
type CrosslinkPageRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Page, error)
	ListByWorld(ctx context.Context, worldID int64) ([]domain.Page, error)
	ListAll(ctx context.Context) ([]domain.Page, error)
	UpdateContent(ctx context.Context, id int64, content, autogenerated string) error
}

// CrosslinkService maintains wiki links across page content. Each pass is
// idempotent and convergent, so concurrent passes over the same page are
// last-write-wins by design.
type CrosslinkService struct {
	pages CrosslinkPageRepository
}

func NewCrosslinkService(pages CrosslinkPageRepository) *CrosslinkService {
	return &CrosslinkService{pages: pages}
}

// LinkPage runs the crosslink pass over one page's content and
// autogenerated content, persisting only when a field changed.
func (s *CrosslinkService) LinkPage(ctx context.Context, pageID int64) error {
	page, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		return err
	}
	if !page.AllowCrosslinks {
		return nil
	}

	candidates, err := s.candidatesFor(ctx, page)
	if err != nil {
		return err
	}

	return s.linkOne(ctx, page, candidates)
}

// LinkWorld re-scans every page of a world. Used after a page is created so
// existing pages pick up links to the new name. Failing pages are logged
// and skipped; the pass reports how many pages changed.
func (s *CrosslinkService) LinkWorld(ctx context.Context, worldID int64) (int, error) {
	pages, err := s.pages.ListByWorld(ctx, worldID)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range pages {
		page := &pages[i]
		if !page.AllowCrosslinks {
			continue
		}
		candidates, err := s.candidatesFor(ctx, page)
		if err != nil {
			return changed, err
		}
		before := page.Content + "\x00" + page.AutogeneratedContent
		if err := s.linkOne(ctx, page, candidates); err != nil {
			log.Printf("crosslink: page %d failed: %v", page.ID, err)
			continue
		}
		if page.Content+"\x00"+page.AutogeneratedContent != before {
			changed++
		}
	}
	return changed, nil
}

// UnlinkPage strips anchors targeting a deleted page from every other page
// in its world, keeping the anchors' visible text. Idempotent.
func (s *CrosslinkService) UnlinkPage(ctx context.Context, deleted *domain.Page) (int, error) {
	pages, err := s.pages.ListByWorld(ctx, deleted.WorldID)
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range pages {
		page := &pages[i]
		if page.ID == deleted.ID {
			continue
		}

		content, contentChanged, err := UnlinkHTML(page.Content, deleted.ID)
		if err != nil {
			return changed, fmt.Errorf("failed to unlink page %d: %w", page.ID, err)
		}
		auto, autoChanged, err := UnlinkHTML(page.AutogeneratedContent, deleted.ID)
		if err != nil {
			return changed, fmt.Errorf("failed to unlink page %d: %w", page.ID, err)
		}

		if !contentChanged && !autoChanged {
			continue
		}
		if err := s.pages.UpdateContent(ctx, page.ID, content, auto); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func (s *CrosslinkService) candidatesFor(ctx context.Context, page *domain.Page) ([]LinkCandidate, error) {
	var (
		visible []domain.Page
		err     error
	)
	if page.AllowCrossworld {
		visible, err = s.pages.ListAll(ctx)
	} else {
		visible, err = s.pages.ListByWorld(ctx, page.WorldID)
	}
	if err != nil {
		return nil, err
	}
	return BuildCandidates(visible, page), nil
}

// linkOne transforms both content fields and persists only on change,
// updating page in place with the new field values.
func (s *CrosslinkService) linkOne(ctx context.Context, page *domain.Page, candidates []LinkCandidate) error {
	content, contentChanged, err := CrosslinkHTML(page.Content, candidates)
	if err != nil {
		return err
	}
	auto, autoChanged, err := CrosslinkHTML(page.AutogeneratedContent, candidates)
	if err != nil {
		return err
	}

	if !contentChanged && !autoChanged {
		return nil
	}
	if err := s.pages.UpdateContent(ctx, page.ID, content, auto); err != nil {
		return err
	}
	page.Content = content
	page.AutogeneratedContent = auto
	return nil
}
