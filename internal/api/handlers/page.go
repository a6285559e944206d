package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loreforge/loreforge/internal/api"
	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/pagination"
)

type PageStore interface {
	Create(ctx context.Context, page *domain.Page) error
	GetByID(ctx context.Context, id int64) (*domain.Page, error)
	ListByWorldPage(ctx context.Context, worldID, afterID int64, limit int) ([]domain.Page, error)
	Update(ctx context.Context, page *domain.Page) error
	Delete(ctx context.Context, id int64) error
}

// JobQueue is the handler-facing slice of the job orchestrator.
type JobQueue interface {
	Submit(ctx context.Context, job *domain.JobRecord) (string, error)
	Get(ctx context.Context, id string) (*domain.JobRecord, error)
}

// ChunkRemover drops a deleted page's chunks from the world collection.
// Indexing itself goes through the job queue; removal is a cheap store
// delete and happens on the request path so searches stop hitting the
// page immediately.
type ChunkRemover interface {
	RemovePage(ctx context.Context, worldID, pageID int64) error
}

type PageHandler struct {
	pages   PageStore
	jobs    JobQueue
	indexer ChunkRemover
}

func NewPageHandler(pages PageStore, jobs JobQueue, indexer ChunkRemover) *PageHandler {
	return &PageHandler{pages: pages, jobs: jobs, indexer: indexer}
}

type CreatePageRequest struct {
	ConceptID            int64  `json:"concept_id"`
	Name                 string `json:"name"`
	Content              string `json:"content"`
	AutogeneratedContent string `json:"autogenerated_content"`
	AllowCrosslinks      *bool  `json:"allow_crosslinks"`
	AllowCrossworld      bool   `json:"allow_crossworld"`
	IgnoreCrosslink      bool   `json:"ignore_crosslink"`
}

type UpdatePageRequest struct {
	Name                 string `json:"name"`
	Content              string `json:"content"`
	AutogeneratedContent string `json:"autogenerated_content"`
	AllowCrosslinks      *bool  `json:"allow_crosslinks"`
	AllowCrossworld      *bool  `json:"allow_crossworld"`
	IgnoreCrosslink      *bool  `json:"ignore_crosslink"`
}

type PageResponse struct {
	ID                   int64  `json:"id"`
	WorldID              int64  `json:"world_id"`
	ConceptID            int64  `json:"concept_id"`
	Name                 string `json:"name"`
	Content              string `json:"content"`
	AutogeneratedContent string `json:"autogenerated_content"`
	AllowCrosslinks      bool   `json:"allow_crosslinks"`
	AllowCrossworld      bool   `json:"allow_crossworld"`
	IgnoreCrosslink      bool   `json:"ignore_crosslink"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

func pageToResponse(p *domain.Page) *PageResponse {
	return &PageResponse{
		ID:                   p.ID,
		WorldID:              p.WorldID,
		ConceptID:            p.ConceptID,
		Name:                 p.Name,
		Content:              p.Content,
		AutogeneratedContent: p.AutogeneratedContent,
		AllowCrosslinks:      p.AllowCrosslinks,
		AllowCrossworld:      p.AllowCrossworld,
		IgnoreCrosslink:      p.IgnoreCrosslink,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
	}
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	worldID, ok := urlID(r, "worldID")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid world id")
		return
	}

	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page := &domain.Page{
		WorldID:              worldID,
		ConceptID:            req.ConceptID,
		Name:                 req.Name,
		Content:              req.Content,
		AutogeneratedContent: req.AutogeneratedContent,
		AllowCrosslinks:      true,
		AllowCrossworld:      req.AllowCrossworld,
		IgnoreCrosslink:      req.IgnoreCrosslink,
	}
	if req.AllowCrosslinks != nil {
		page.AllowCrosslinks = *req.AllowCrosslinks
	}
	if err := domain.ValidatePage(page); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pages.Create(r.Context(), page); err != nil {
		api.HandleError(w, err)
		return
	}

	h.afterMutation(r.Context(), page)
	// A new name may be mentioned on existing pages, so re-scan the world.
	h.submit(r.Context(), &domain.JobRecord{JobType: domain.JobTypeCrosslinkBatch, WorldID: page.WorldID})

	api.Success(w, http.StatusCreated, pageToResponse(page))
}

func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid page id")
		return
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, pageToResponse(page))
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	worldID, ok := urlID(r, "worldID")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid world id")
		return
	}

	limit := defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > maxPageLimit {
			n = maxPageLimit
		}
		limit = n
	}

	afterID, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	pages, err := h.pages.ListByWorldPage(r.Context(), worldID, afterID, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	responses := make([]*PageResponse, len(pages))
	for i := range pages {
		responses[i] = pageToResponse(&pages[i])
	}
	next := pagination.NextCursor(pages, limit, func(p domain.Page) int64 { return p.ID })
	api.Success(w, http.StatusOK, pagination.PageResult[*PageResponse]{
		Items:   responses,
		Cursor:  next,
		HasMore: next != "",
	})
}

func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid page id")
		return
	}

	var req UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	page.Name = req.Name
	page.Content = req.Content
	page.AutogeneratedContent = req.AutogeneratedContent
	if req.AllowCrosslinks != nil {
		page.AllowCrosslinks = *req.AllowCrosslinks
	}
	if req.AllowCrossworld != nil {
		page.AllowCrossworld = *req.AllowCrossworld
	}
	if req.IgnoreCrosslink != nil {
		page.IgnoreCrosslink = *req.IgnoreCrosslink
	}

	if err := h.pages.Update(r.Context(), page); err != nil {
		api.HandleError(w, err)
		return
	}

	h.afterMutation(r.Context(), page)

	api.Success(w, http.StatusOK, pageToResponse(page))
}

func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid page id")
		return
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.pages.Delete(r.Context(), page.ID); err != nil {
		api.HandleError(w, err)
		return
	}

	if err := h.indexer.RemovePage(r.Context(), page.WorldID, page.ID); err != nil {
		log.Printf("api: failed to remove page %d chunks: %v", page.ID, err)
	}
	h.submit(r.Context(), &domain.JobRecord{
		JobType: domain.JobTypeUnlinkPage,
		PageID:  page.ID,
		WorldID: page.WorldID,
	})

	api.Success(w, http.StatusOK, map[string]any{"deleted": true})
}

// afterMutation queues a re-index and a crosslink pass for the page.
// Both are best effort; the page write already succeeded.
func (h *PageHandler) afterMutation(ctx context.Context, page *domain.Page) {
	h.submit(ctx, &domain.JobRecord{
		JobType: domain.JobTypeIndexPage,
		PageID:  page.ID,
		WorldID: page.WorldID,
	})
	h.submit(ctx, &domain.JobRecord{
		JobType: domain.JobTypeCrosslinkPage,
		PageID:  page.ID,
		WorldID: page.WorldID,
	})
}

func (h *PageHandler) submit(ctx context.Context, job *domain.JobRecord) {
	if _, err := h.jobs.Submit(ctx, job); err != nil {
		log.Printf("api: failed to submit %s job: %v", job.JobType, err)
	}
}
