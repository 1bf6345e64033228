// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/store"
)

// CreateEntryRequest is the request body for creating an entry.
type CreateEntryRequest struct {
	Slug       string         `json:"slug,omitempty"`
	Status     string         `json:"status,omitempty"`
	Visibility string         `json:"visibility,omitempty"`
	Data       map[string]any `json:"data"`
	AuthorID   *int64         `json:"author_id,omitempty"`
}

// UpdateEntryRequest is the request body for a partial entry update.
// Absent fields are left untouched; data is merged shallowly.
type UpdateEntryRequest struct {
	Slug       *string        `json:"slug,omitempty"`
	Status     *string        `json:"status,omitempty"`
	Visibility *string        `json:"visibility,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// EntryResponse shapes an entry for JSON output.
type EntryResponse struct {
	ID          int64          `json:"id"`
	Collection  string         `json:"collection"`
	Slug        string         `json:"slug"`
	Status      string         `json:"status"`
	Visibility  string         `json:"visibility"`
	Data        map[string]any `json:"data"`
	AuthorID    *int64         `json:"author_id,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	PublishedAt *string        `json:"published_at,omitempty"`
}

func entryResponse(e model.Entry) EntryResponse {
	resp := EntryResponse{
		ID:         e.ID,
		Collection: e.Collection,
		Slug:       e.Slug,
		Status:     e.Status,
		Visibility: e.Visibility,
		Data:       e.Data,
		CreatedAt:  e.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:  e.UpdatedAt.UTC().Format(timeLayout),
	}
	if e.AuthorID.Valid {
		resp.AuthorID = &e.AuthorID.Int64
	}
	if e.PublishedAt.Valid {
		ts := e.PublishedAt.Time.UTC().Format(timeLayout)
		resp.PublishedAt = &ts
	}
	return resp
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Stats handles GET /stats with per-collection entry totals and the media
// count for the admin dashboard.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountEntriesByCollection(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "stats")
		return
	}
	_, mediaTotal, err := h.store.ListMedia(r.Context(), 1, 0)
	if err != nil {
		h.handleStoreError(w, err, "stats")
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"entries": counts,
		"media":   mediaTotal,
	})
}

func entryResponses(entries []model.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = entryResponse(e)
	}
	return out
}

// ListEntries handles GET /collections/{collection}/entries.
// Supports status, limit, offset, sort and dir query parameters.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	limit, offset := pagination(r, 20)

	entries, total, err := h.store.ListEntries(r.Context(), collection, store.ListEntriesOptions{
		Status:    r.URL.Query().Get("status"),
		Limit:     limit,
		Offset:    offset,
		SortField: r.URL.Query().Get("sort"),
		SortDir:   r.URL.Query().Get("dir"),
	})
	if err != nil {
		h.handleStoreError(w, err, "entries")
		return
	}

	writeList(w, entryResponses(entries), total, limit, offset)
}

// CreateEntry handles POST /collections/{collection}/entries.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	var req CreateEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.store.CreateEntry(r.Context(), collection, store.CreateEntryParams{
		Slug:       req.Slug,
		Status:     req.Status,
		Visibility: req.Visibility,
		Data:       req.Data,
		AuthorID:   req.AuthorID,
	})
	if err != nil {
		h.handleStoreError(w, err, "entry")
		return
	}

	if entry.IsPublished() {
		h.cache.InvalidateCollection(r.Context(), collection)
	}
	writeData(w, http.StatusCreated, entryResponse(entry))
}

// GetEntry handles GET /collections/{collection}/entries/{slug}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.GetEntry(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleStoreError(w, err, "entry")
		return
	}
	writeData(w, http.StatusOK, entryResponse(entry))
}

// UpdateEntry handles PATCH /collections/{collection}/entries/{slug}.
// Any write to a collection invalidates its cached public pages, so a
// publish transition shows up immediately.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	slug := chi.URLParam(r, "slug")

	var req UpdateEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.store.UpdateEntry(r.Context(), collection, slug, store.UpdateEntryParams{
		Slug:       req.Slug,
		Status:     req.Status,
		Visibility: req.Visibility,
		Data:       req.Data,
	})
	if err != nil {
		h.handleStoreError(w, err, "entry")
		return
	}

	h.cache.InvalidateCollection(r.Context(), collection)
	writeData(w, http.StatusOK, entryResponse(entry))
}

// DeleteEntry handles DELETE /collections/{collection}/entries/{slug}.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	slug := chi.URLParam(r, "slug")

	if err := h.store.DeleteEntry(r.Context(), collection, slug); err != nil {
		h.handleStoreError(w, err, "entry")
		return
	}

	h.cache.InvalidateCollection(r.Context(), collection)
	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}

// DuplicateEntry handles POST /collections/{collection}/entries/{slug}/duplicate.
// The clone is always a draft with a disambiguated slug.
func (h *Handler) DuplicateEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.DuplicateEntry(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleStoreError(w, err, "entry")
		return
	}
	writeData(w, http.StatusCreated, entryResponse(entry))
}

// ListSchemas handles GET /schemas.
func (h *Handler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.store.Registry().All())
}

// GetSchema handles GET /schemas/{collection}.
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	c, ok := h.store.Registry().Lookup(chi.URLParam(r, "collection"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}
	writeData(w, http.StatusOK, c)
}

// ListEvents handles GET /events for the admin dashboard.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := pagination(r, 50)
	events, err := h.store.ListRecentEvents(r.Context(), limit)
	if err != nil {
		h.handleStoreError(w, err, "events")
		return
	}
	writeData(w, http.StatusOK, events)
}
