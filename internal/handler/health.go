// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers shared by the admin API and the
// public site: health checks and response helpers.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/foliolab/folio/internal/store"
	"github.com/foliolab/folio/internal/version"
)

// HealthHandler reports process and document-store health.
type HealthHandler struct {
	store     *store.Store
	startTime time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(s *store.Store) *HealthHandler {
	return &HealthHandler{
		store:     s,
		startTime: time.Now(),
	}
}

// HealthStatus is the health check response body.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())

	status := "healthy"
	code := http.StatusOK
	if dbCheck.Status != "healthy" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   version.Version,
		Checks: map[string]Check{
			"database": dbCheck,
		},
	})
}

// checkDatabase pings the document store with a short deadline.
func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.store.DB().PingContext(ctx); err != nil {
		return Check{Status: "unhealthy", Message: err.Error()}
	}
	return Check{
		Status:  "healthy",
		Latency: time.Since(start).Round(time.Microsecond).String(),
	}
}
