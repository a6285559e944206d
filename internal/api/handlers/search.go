package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/loreforge/loreforge/internal/api"
	"github.com/loreforge/loreforge/internal/domain"
	"github.com/loreforge/loreforge/internal/service"
)

const defaultSearchResults = 4

type Searcher interface {
	SearchWorld(ctx context.Context, worldID int64, query string, n int) ([]service.RetrievedDocument, error)
	SearchSpecialist(ctx context.Context, agentID int64, query string, n int) ([]service.RetrievedDocument, error)
}

type WorldStore interface {
	GetByID(ctx context.Context, id int64) (*domain.World, error)
}

type AgentStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
}

type SearchHandler struct {
	search Searcher
	worlds WorldStore
	agents AgentStore
}

func NewSearchHandler(search Searcher, worlds WorldStore, agents AgentStore) *SearchHandler {
	return &SearchHandler{search: search, worlds: worlds, agents: agents}
}

type SearchRequest struct {
	Query string `json:"query"`
	N     int    `json:"n"`
}

type SearchResponse struct {
	Results []service.RetrievedDocument `json:"results"`
}

func (h *SearchHandler) SearchWorld(w http.ResponseWriter, r *http.Request) {
	worldID, ok := urlID(r, "worldID")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid world id")
		return
	}
	if _, err := h.worlds.GetByID(r.Context(), worldID); err != nil {
		api.HandleError(w, err)
		return
	}

	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	results, err := h.search.SearchWorld(r.Context(), worldID, req.Query, req.N)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	writeSearchResults(w, results)
}

func (h *SearchHandler) SearchSpecialist(w http.ResponseWriter, r *http.Request) {
	agentID, ok := urlID(r, "id")
	if !ok {
		api.Error(w, http.StatusBadRequest, "invalid agent id")
		return
	}
	if _, err := h.agents.GetByID(r.Context(), agentID); err != nil {
		api.HandleError(w, err)
		return
	}

	req, ok := decodeSearchRequest(w, r)
	if !ok {
		return
	}

	results, err := h.search.SearchSpecialist(r.Context(), agentID, req.Query, req.N)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	writeSearchResults(w, results)
}

func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (SearchRequest, bool) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if req.N <= 0 {
		req.N = defaultSearchResults
	}
	return req, true
}

func writeSearchResults(w http.ResponseWriter, results []service.RetrievedDocument) {
	if results == nil {
		results = []service.RetrievedDocument{}
	}
	api.Success(w, http.StatusOK, SearchResponse{Results: results})
}
