// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the admin REST handlers for entries, media,
// categories and users.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/foliolab/folio/internal/cache"
	"github.com/foliolab/folio/internal/middleware"
	"github.com/foliolab/folio/internal/schema"
	"github.com/foliolab/folio/internal/service"
	"github.com/foliolab/folio/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store  *store.Store
	media  *service.MediaService
	repair *service.RepairService
	cache  *cache.PublishedCache
	log    *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s *store.Store, media *service.MediaService, repair *service.RepairService, published *cache.PublishedCache, log *slog.Logger) *Handler {
	return &Handler{
		store:  s,
		media:  media,
		repair: repair,
		cache:  published,
		log:    log,
	}
}

// Routes returns the admin API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/collections/{collection}/entries", func(r chi.Router) {
		r.Get("/", h.ListEntries)
		r.Post("/", h.CreateEntry)
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", h.GetEntry)
			r.Patch("/", h.UpdateEntry)
			r.Delete("/", h.DeleteEntry)
			r.Post("/duplicate", h.DuplicateEntry)
		})
	})

	// Repair passes walk every entry, so the maintenance endpoint gets its
	// own tight limit on top of the global API limiter.
	maintenanceLimiter := middleware.NewRateLimiter(1, 3)

	r.Route("/media", func(r chi.Router) {
		r.Get("/", h.ListMedia)
		r.Post("/", h.UploadMedia)
		r.Get("/used", h.UsedMedia)
		r.Get("/diagnose", h.DiagnoseMedia)
		r.With(maintenanceLimiter.JSON()).Post("/fix-orphans", h.FixOrphans)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetMedia)
			r.Patch("/", h.UpdateMedia)
			r.Delete("/", h.DeleteMedia)
			r.Post("/replace", h.ReplaceMedia)
			r.Get("/usage", h.MediaUsage)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Put("/", h.ReorderCategories)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetCategory)
			r.Patch("/", h.UpdateCategory)
			r.Delete("/", h.DeleteCategory)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Patch("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
		})
	})

	r.Get("/setup/status", h.SetupStatus)
	r.Post("/setup", h.Setup)

	r.Get("/schemas", h.ListSchemas)
	r.Get("/schemas/{collection}", h.GetSchema)

	r.Get("/events", h.ListEvents)
	r.Get("/stats", h.Stats)

	return r
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeData writes a successful {data: ...} envelope.
func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{"data": data})
}

// writeList writes a {data, total, limit, offset} envelope for paginated
// listings.
func writeList(w http.ResponseWriter, data any, total int64, limit, offset int) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data":   data,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// writeError writes an {error: message} envelope. Errors carry a status
// and a message, nothing more.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"error": message})
}

// writeValidationError writes a 422 envelope listing every violated field.
func writeValidationError(w http.ResponseWriter, ve *schema.ValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  ve.Error(),
		"fields": ve.Fields,
	})
}

// handleStoreError maps repository errors to HTTP responses.
func (h *Handler) handleStoreError(w http.ResponseWriter, err error, what string) {
	var ve *schema.ValidationError

	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrUnknownCollection):
		writeError(w, http.StatusNotFound, "unknown collection")
	case errors.Is(err, store.ErrSlugTaken):
		writeError(w, http.StatusConflict, "slug already in use")
	case errors.Is(err, store.ErrUnknownVariant):
		writeError(w, http.StatusUnprocessableEntity, "unknown media variant")
	case errors.Is(err, store.ErrSetupComplete):
		writeError(w, http.StatusForbidden, "setup already completed")
	case errors.As(err, &ve):
		writeValidationError(w, ve)
	default:
		h.log.Error("request failed", "what", what, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// top-level syntax errors with a 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// pagination parses limit/offset query parameters with bounds.
func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
