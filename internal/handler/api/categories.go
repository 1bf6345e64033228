// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/store"
)

// CreateCategoryRequest is the request body for creating a category.
// The id is derived from the name and doubles as the slug.
type CreateCategoryRequest struct {
	Name           string `json:"name"`
	Label          string `json:"label,omitempty"`
	Color          string `json:"color,omitempty"`
	Description    string `json:"description,omitempty"`
	ShowOnHomepage bool   `json:"show_on_homepage"`
}

// UpdateCategoryRequest is the request body for a partial category update.
type UpdateCategoryRequest struct {
	Name           *string `json:"name,omitempty"`
	Label          *string `json:"label,omitempty"`
	Color          *string `json:"color,omitempty"`
	Description    *string `json:"description,omitempty"`
	ShowOnHomepage *bool   `json:"show_on_homepage,omitempty"`
}

// ReorderRequest is the request body for PUT /categories.
type ReorderRequest struct {
	Order []string `json:"order"`
}

// ListCategories handles GET /categories, ordered by position.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "categories")
		return
	}
	writeData(w, http.StatusOK, categories)
}

// CreateCategory handles POST /categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category, err := h.store.CreateCategory(r.Context(), model.Category{
		Name:           req.Name,
		Label:          req.Label,
		Color:          req.Color,
		Description:    req.Description,
		ShowOnHomepage: req.ShowOnHomepage,
	})
	if err != nil {
		h.handleStoreError(w, err, "category")
		return
	}
	writeData(w, http.StatusCreated, category)
}

// ReorderCategories handles PUT /categories: rewrite display positions to
// match the supplied id order.
func (h *Handler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Order) == 0 {
		writeError(w, http.StatusBadRequest, "order is required")
		return
	}

	if err := h.store.Reorder(r.Context(), req.Order); err != nil {
		h.handleStoreError(w, err, "categories")
		return
	}

	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "categories")
		return
	}
	writeData(w, http.StatusOK, categories)
}

// GetCategory handles GET /categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleStoreError(w, err, "category")
		return
	}
	writeData(w, http.StatusOK, category)
}

// UpdateCategory handles PATCH /categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), chi.URLParam(r, "id"), store.UpdateCategoryParams{
		Name:           req.Name,
		Label:          req.Label,
		Color:          req.Color,
		Description:    req.Description,
		ShowOnHomepage: req.ShowOnHomepage,
	})
	if err != nil {
		h.handleStoreError(w, err, "category")
		return
	}
	writeData(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/{id}. Entries referencing the
// category keep their dangling reference; the repair tooling surfaces it.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleStoreError(w, err, "category")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}
