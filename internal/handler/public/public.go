// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package public serves the read-only site surface: JSON mirrors of the
// published content and the server-rendered portfolio pages.
package public

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foliolab/folio/internal/cache"
	"github.com/foliolab/folio/internal/render"
	"github.com/foliolab/folio/internal/store"
)

// Handler serves the public surface. Everything it returns is filtered to
// published entries with public visibility.
type Handler struct {
	store    *store.Store
	cache    *cache.PublishedCache
	renderer *render.Renderer
	log      *slog.Logger
}

func NewHandler(s *store.Store, published *cache.PublishedCache, renderer *render.Renderer, log *slog.Logger) *Handler {
	return &Handler{
		store:    s,
		cache:    published,
		renderer: renderer,
		log:      log,
	}
}

// Routes returns the JSON mirror router mounted under /public/v1.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/collections/{collection}/entries", h.ListEntries)
	r.Get("/collections/{collection}/entries/{slug}", h.GetEntry)
	r.Get("/categories", h.ListCategories)
	return r
}

// PageRoutes registers the server-rendered site routes on the given router.
func (h *Handler) PageRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/sitemap.xml", h.Sitemap)
	r.Get("/robots.txt", h.Robots)
	r.Get("/category/{id}", h.CategoryPage)
	r.Get("/{collection}/{slug}", h.EntryPage)
}

// publicCategory is the subset of category fields exposed without auth.
type publicCategory struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Color string `json:"color"`
	Order int64  `json:"order"`
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	entries, err := h.cache.ListPublished(r.Context(), collection)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  entries,
		"total": len(entries),
	})
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	slug := chi.URLParam(r, "slug")

	entry, err := h.cache.GetPublished(r.Context(), collection, slug)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": entry})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	out := make([]publicCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, publicCategory{
			ID:    c.ID,
			Name:  c.Name,
			Label: c.Label,
			Color: c.Color,
			Order: c.Position,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  out,
		"total": len(out),
	})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, store.ErrUnknownCollection):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	default:
		h.log.Error("public request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
