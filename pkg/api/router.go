package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all command routes mounted.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.Status)
	r.Post("/nodes/link", h.CreateLink)
	r.Post("/nodes/select-model", h.SelectModel)
	r.Post("/commands/refresh", h.Refresh)

	return r
}
