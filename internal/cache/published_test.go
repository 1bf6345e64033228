// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/foliolab/folio/internal/schema"
	"github.com/foliolab/folio/internal/store"
)

func testPublishedCache(t *testing.T) (*PublishedCache, *store.Store) {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	s := store.New(db, schema.Default())
	backend := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { backend.Close() })

	return NewPublishedCache(backend, s, time.Minute), s
}

func publishEntry(t *testing.T, s *store.Store, slug, title string) {
	t.Helper()
	_, err := s.CreateEntry(context.Background(), "posts", store.CreateEntryParams{
		Slug:   slug,
		Status: "published",
		Data:   map[string]any{"title": title},
	})
	if err != nil {
		t.Fatalf("creating published entry: %v", err)
	}
}

func TestPublishedCache_ListReadThrough(t *testing.T) {
	c, s := testPublishedCache(t)
	ctx := context.Background()

	publishEntry(t, s, "first", "First")

	entries, err := c.ListPublished(ctx, "posts")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	// A second entry is invisible until the collection is invalidated.
	publishEntry(t, s, "second", "Second")

	entries, err = c.ListPublished(ctx, "posts")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries from cache, want stale 1", len(entries))
	}

	c.InvalidateCollection(ctx, "posts")

	entries, err = c.ListPublished(ctx, "posts")
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries after invalidation, want 2", len(entries))
	}
}

func TestPublishedCache_GetPublished(t *testing.T) {
	c, s := testPublishedCache(t)
	ctx := context.Background()

	publishEntry(t, s, "hello", "Hello")

	entry, err := c.GetPublished(ctx, "posts", "hello")
	if err != nil {
		t.Fatalf("GetPublished failed: %v", err)
	}
	if entry.Slug != "hello" {
		t.Errorf("got slug %q, want %q", entry.Slug, "hello")
	}
	if entry.Data["title"] != "Hello" {
		t.Errorf("data payload did not survive the cache round trip: %v", entry.Data)
	}
}

func TestPublishedCache_GetPublished_HidesDrafts(t *testing.T) {
	c, s := testPublishedCache(t)
	ctx := context.Background()

	_, err := s.CreateEntry(ctx, "posts", store.CreateEntryParams{
		Slug: "draft",
		Data: map[string]any{"title": "Draft"},
	})
	if err != nil {
		t.Fatalf("creating draft: %v", err)
	}

	if _, err := c.GetPublished(ctx, "posts", "draft"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("draft should be invisible, got %v", err)
	}
}

func TestPublishedCache_GetPublished_HidesPrivate(t *testing.T) {
	c, s := testPublishedCache(t)
	ctx := context.Background()

	_, err := s.CreateEntry(ctx, "posts", store.CreateEntryParams{
		Slug:       "secret",
		Status:     "published",
		Visibility: "private",
		Data:       map[string]any{"title": "Secret"},
	})
	if err != nil {
		t.Fatalf("creating private entry: %v", err)
	}

	if _, err := c.GetPublished(ctx, "posts", "secret"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("private entry should be invisible, got %v", err)
	}
}

func TestPublishedCache_InvalidateAll(t *testing.T) {
	c, s := testPublishedCache(t)
	ctx := context.Background()

	publishEntry(t, s, "one", "One")
	if _, err := c.ListPublished(ctx, "posts"); err != nil {
		t.Fatalf("priming cache: %v", err)
	}

	c.InvalidateAll(ctx)

	stats, ok := c.Stats()
	if !ok {
		t.Fatal("memory backend should provide stats")
	}
	if stats.Items != 0 {
		t.Errorf("got %d cached items after InvalidateAll, want 0", stats.Items)
	}
}
