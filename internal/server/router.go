package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/loreforge/loreforge/internal/api"
	"github.com/loreforge/loreforge/internal/api/handlers"
	"github.com/loreforge/loreforge/internal/api/middleware"
)

type RouterConfig struct {
	PageHandler     *handlers.PageHandler
	SearchHandler   *handlers.SearchHandler
	JobsHandler     *handlers.JobsHandler
	TransferHandler *handlers.TransferHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/worlds/{worldID}", func(r chi.Router) {
		r.Post("/pages", cfg.PageHandler.Create)
		r.Get("/pages", cfg.PageHandler.List)
		r.Post("/search", cfg.SearchHandler.SearchWorld)
	})

	r.Route("/pages", func(r chi.Router) {
		r.Get("/{id}", cfg.PageHandler.Get)
		r.Put("/{id}", cfg.PageHandler.Update)
		r.Delete("/{id}", cfg.PageHandler.Delete)
	})

	r.Route("/agents/{id}", func(r chi.Router) {
		r.Post("/vectordb", cfg.JobsHandler.SubmitWorldRebuild)
		r.Post("/specialistdb", cfg.JobsHandler.SubmitSpecialistRebuild)
		r.Post("/search", cfg.SearchHandler.SearchSpecialist)
	})

	r.Get("/jobs/{id}", cfg.JobsHandler.Get)

	r.Route("/collections/{collection}", func(r chi.Router) {
		r.Get("/export", cfg.TransferHandler.Export)
		r.Post("/import", cfg.TransferHandler.Import)
	})

	return r
}
