// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/foliolab/folio/internal/schema"
)

// Sentinel errors returned by the repositories. Not-found conditions reuse
// sql.ErrNoRows so callers can treat storage-level and repository-level
// absence uniformly.
var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrSlugTaken         = errors.New("slug already in use")
	ErrUnknownVariant    = errors.New("unknown media variant")
	ErrSetupComplete     = errors.New("setup already completed")
)

// Store bundles all repositories over a single shared database handle.
// The handle is opened once at startup and reused for the process lifetime.
type Store struct {
	db       *sql.DB
	registry *schema.Registry
}

// New creates a Store using the given database handle and schema registry.
func New(db *sql.DB, registry *schema.Registry) *Store {
	return &Store{db: db, registry: registry}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Registry returns the schema registry the store validates against.
func (s *Store) Registry() *schema.Registry {
	return s.registry
}

// builder is the squirrel statement builder configured for SQLite
// placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)
