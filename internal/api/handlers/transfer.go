package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loreforge/loreforge/internal/api"
	"github.com/loreforge/loreforge/internal/service"
)

type Transferer interface {
	Export(ctx context.Context, collection string) (*service.Envelope, error)
	Import(ctx context.Context, collection string, env *service.Envelope, sourceIDMap map[string]string) error
}

type TransferHandler struct {
	transfer Transferer
}

func NewTransferHandler(transfer Transferer) *TransferHandler {
	return &TransferHandler{transfer: transfer}
}

type ImportRequest struct {
	service.Envelope
	// SourceIDMap rewrites metadata source ids when the relational rows were
	// re-created under new ids before the import.
	SourceIDMap map[string]string `json:"source_id_map,omitempty"`
}

func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if collection == "" {
		api.Error(w, http.StatusBadRequest, "collection is required")
		return
	}

	env, err := h.transfer.Export(r.Context(), collection)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, env)
}

func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if collection == "" {
		api.Error(w, http.StatusBadRequest, "collection is required")
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.transfer.Import(r.Context(), collection, &req.Envelope, req.SourceIDMap); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]any{"imported": len(req.Documents)})
}
