// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foliolab/folio/internal/service"
	"github.com/foliolab/folio/internal/store"
)

// UpdateMediaRequest is the request body for a partial media update.
type UpdateMediaRequest struct {
	Title         *string   `json:"title,omitempty"`
	Alt           *string   `json:"alt,omitempty"`
	Caption       *string   `json:"caption,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	ActiveVariant *string   `json:"active_variant,omitempty"`
}

// ReplaceMediaRequest is the request body for reference replacement.
type ReplaceMediaRequest struct {
	NewID string `json:"new_id"`
}

// ListMedia handles GET /media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 20)

	items, total, err := h.store.ListMedia(r.Context(), limit, offset)
	if err != nil {
		h.handleStoreError(w, err, "media")
		return
	}
	writeList(w, items, total, limit, offset)
}

// UploadMedia handles POST /media with a multipart "file" field.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	item, err := h.media.Upload(r.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedType):
			writeError(w, http.StatusUnsupportedMediaType, "unsupported media type")
		case errors.Is(err, service.ErrUploadTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds size limit")
		default:
			h.handleStoreError(w, err, "media")
		}
		return
	}

	writeData(w, http.StatusCreated, item)
}

// GetMedia handles GET /media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.GetMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleStoreError(w, err, "media")
		return
	}
	writeData(w, http.StatusOK, item)
}

// UpdateMedia handles PATCH /media/{id}. Changing active_variant moves
// the canonical URL to that variant.
func (h *Handler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	var req UpdateMediaRequest
	if !decodeBody(w, r, &req) {
		return
	}

	item, err := h.store.UpdateMedia(r.Context(), chi.URLParam(r, "id"), store.UpdateMediaParams{
		Title:         req.Title,
		Alt:           req.Alt,
		Caption:       req.Caption,
		Description:   req.Description,
		Tags:          req.Tags,
		ActiveVariant: req.ActiveVariant,
	})
	if err != nil {
		h.handleStoreError(w, err, "media")
		return
	}
	writeData(w, http.StatusOK, item)
}

// DeleteMedia handles DELETE /media/{id}, removing the record and files.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.media.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleStoreError(w, err, "media")
		return
	}
	writeData(w, http.StatusOK, map[string]any{"deleted": true})
}

// ReplaceMedia handles POST /media/{id}/replace: rewrite all entry
// references from this id to new_id.
func (h *Handler) ReplaceMedia(w http.ResponseWriter, r *http.Request) {
	var req ReplaceMediaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.NewID == "" {
		writeError(w, http.StatusBadRequest, "new_id is required")
		return
	}

	modified, err := h.repair.ReplaceReferences(r.Context(), chi.URLParam(r, "id"), req.NewID)
	if err != nil {
		h.handleStoreError(w, err, "media references")
		return
	}

	h.cache.InvalidateAll(r.Context())
	writeData(w, http.StatusOK, map[string]any{"modified": modified})
}

// MediaUsage handles GET /media/{id}/usage.
func (h *Handler) MediaUsage(w http.ResponseWriter, r *http.Request) {
	usages, err := h.repair.FindUsages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleStoreError(w, err, "media usage")
		return
	}
	writeData(w, http.StatusOK, usages)
}

// UsedMedia handles GET /media/used.
func (h *Handler) UsedMedia(w http.ResponseWriter, r *http.Request) {
	ids, err := h.repair.UsedMediaIDs(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "media usage")
		return
	}
	writeData(w, http.StatusOK, ids)
}

// DiagnoseMedia handles GET /media/diagnose.
func (h *Handler) DiagnoseMedia(w http.ResponseWriter, r *http.Request) {
	report, err := h.repair.DiagnoseOrphans(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "media diagnostics")
		return
	}
	writeData(w, http.StatusOK, report)
}

// FixOrphans handles POST /media/fix-orphans. Best-effort, intended for
// human-supervised recovery.
func (h *Handler) FixOrphans(w http.ResponseWriter, r *http.Request) {
	result, err := h.repair.FixOrphans(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "media repair")
		return
	}
	writeData(w, http.StatusOK, result)
}
