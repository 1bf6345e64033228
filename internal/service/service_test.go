// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/schema"
	"github.com/foliolab/folio/internal/store"
)

// testEnv bundles a temp-database store with a temp uploads directory.
type testEnv struct {
	store     *store.Store
	uploadDir string
	log       *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := store.NewDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.Migrate(db))

	return &testEnv{
		store:     store.New(db, schema.Default()),
		uploadDir: filepath.Join(dir, "uploads"),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) mediaService() *MediaService {
	return NewMediaService(e.store, e.uploadDir, "", 20<<20, e.log)
}

func (e *testEnv) repairService() *RepairService {
	return NewRepairService(e.store, e.uploadDir, "", e.log)
}
