// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Entry, Media, Category, User and Event structures.
package model

import (
	"database/sql"
	"time"
)

// Entry statuses
const (
	EntryStatusDraft     = "draft"
	EntryStatusPublished = "published"
	EntryStatusArchived  = "archived"
)

// Entry visibilities
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Entry represents a single content record in a named collection.
// The Data bag holds collection-specific fields validated against the
// schema registry; it is never decomposed into typed columns.
type Entry struct {
	ID          int64          `json:"id"`
	Collection  string         `json:"collection"`
	Slug        string         `json:"slug"`
	Status      string         `json:"status"`
	Visibility  string         `json:"visibility"`
	Data        map[string]any `json:"data"`
	AuthorID    sql.NullInt64  `json:"author_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt sql.NullTime   `json:"published_at,omitempty"`
}

// IsPublished returns true if the entry is published.
func (e *Entry) IsPublished() bool {
	return e.Status == EntryStatusPublished
}

// IsDraft returns true if the entry is a draft.
func (e *Entry) IsDraft() bool {
	return e.Status == EntryStatusDraft
}

// IsPublic returns true if the entry is publicly visible once published.
func (e *Entry) IsPublic() bool {
	return e.Visibility != VisibilityPrivate
}

// Title returns the entry's title field from the data bag, or the slug
// when the schema's title field is absent.
func (e *Entry) Title(titleField string) string {
	if v, ok := e.Data[titleField].(string); ok && v != "" {
		return v
	}
	return e.Slug
}

// ValidEntryStatus checks whether s is one of the known entry statuses.
func ValidEntryStatus(s string) bool {
	switch s {
	case EntryStatusDraft, EntryStatusPublished, EntryStatusArchived:
		return true
	default:
		return false
	}
}
