// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/foliolab/folio/internal/schema"
	"github.com/foliolab/folio/internal/store"
)

func testHealthStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return store.New(db, schema.Default())
}

func TestHealth_Healthy(t *testing.T) {
	h := NewHealthHandler(testHealthStore(t))

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("got status %q, want healthy", status.Status)
	}
	if status.Checks["database"].Status != "healthy" {
		t.Errorf("database check: got %q, want healthy", status.Checks["database"].Status)
	}
	if status.Version == "" {
		t.Error("version missing from response")
	}
}

func TestHealth_DegradedWhenDatabaseDown(t *testing.T) {
	s := testHealthStore(t)
	h := NewHealthHandler(s)
	s.DB().Close()

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503", rec.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("got status %q, want degraded", status.Status)
	}
}
