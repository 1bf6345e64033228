// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/schema"
)

func TestCreateEntry_DerivesSlugFromTitle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	e, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Data: map[string]any{"title": "Morning Light, Oil on Canvas"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	if e.Slug != "morning-light-oil-on-canvas" {
		t.Errorf("Slug = %q, want derived slug", e.Slug)
	}
	if e.Status != model.EntryStatusDraft {
		t.Errorf("Status = %q, want draft", e.Status)
	}
	if e.PublishedAt.Valid {
		t.Error("draft should not have published_at")
	}
	if e.CreatedAt.IsZero() || e.UpdatedAt.IsZero() {
		t.Error("timestamps should be stamped")
	}
}

func TestCreateEntry_DisambiguatesDuplicateSlug(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Data: map[string]any{"title": "Harbor"},
	})
	if err != nil {
		t.Fatalf("first CreateEntry: %v", err)
	}

	second, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Data: map[string]any{"title": "Harbor"},
	})
	if err != nil {
		t.Fatalf("second CreateEntry: %v", err)
	}

	if second.Slug == first.Slug {
		t.Errorf("duplicate slug %q was not disambiguated", second.Slug)
	}
	if second.Slug[:len("harbor")] != "harbor" {
		t.Errorf("disambiguated slug %q should keep the base", second.Slug)
	}
}

func TestCreateEntry_RequiredFieldGatesPublishOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// Draft without title is fine
	if _, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug: "wip",
		Data: map[string]any{"summary": "coming soon"},
	}); err != nil {
		t.Fatalf("draft without title: %v", err)
	}

	// Publishing without title is not
	_, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug:   "wip-2",
		Status: model.EntryStatusPublished,
		Data:   map[string]any{"summary": "coming soon"},
	})
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateEntry_UnknownCollection(t *testing.T) {
	s := testStore(t)

	_, err := s.CreateEntry(context.Background(), "widgets", CreateEntryParams{})
	if !errors.Is(err, ErrUnknownCollection) {
		t.Errorf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestUpdateEntry_ShallowMerge(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug: "merge-me",
		Data: map[string]any{"title": "Original", "summary": "keep me"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	updated, err := s.UpdateEntry(ctx, "posts", "merge-me", UpdateEntryParams{
		Data: map[string]any{"title": "Renamed"},
	})
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}

	if updated.Data["title"] != "Renamed" {
		t.Errorf("title = %v, want Renamed", updated.Data["title"])
	}
	if updated.Data["summary"] != "keep me" {
		t.Errorf("summary = %v, fields absent from the payload must survive", updated.Data["summary"])
	}
}

func TestUpdateEntry_PublishedAtSetExactlyOnce(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug: "once",
		Data: map[string]any{"title": "Once"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	published := model.EntryStatusPublished
	first, err := s.UpdateEntry(ctx, "posts", "once", UpdateEntryParams{Status: &published})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !first.PublishedAt.Valid {
		t.Fatal("publish should set published_at")
	}
	stamp := first.PublishedAt.Time

	time.Sleep(10 * time.Millisecond)

	// Archive then republish: the original stamp must survive.
	archived := model.EntryStatusArchived
	if _, err := s.UpdateEntry(ctx, "posts", "once", UpdateEntryParams{Status: &archived}); err != nil {
		t.Fatalf("archive: %v", err)
	}
	again, err := s.UpdateEntry(ctx, "posts", "once", UpdateEntryParams{Status: &published})
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !again.PublishedAt.Valid || !again.PublishedAt.Time.Equal(stamp) {
		t.Errorf("published_at changed on republish: %v -> %v", stamp, again.PublishedAt.Time)
	}
}

func TestUpdateEntry_SlugConflictLeavesEntryUntouched(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug: "taken", Data: map[string]any{"title": "Taken"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug: "mover", Data: map[string]any{"title": "Mover", "summary": "before"},
	}); err != nil {
		t.Fatal(err)
	}

	taken := "taken"
	_, err := s.UpdateEntry(ctx, "posts", "mover", UpdateEntryParams{
		Slug: &taken,
		Data: map[string]any{"summary": "after"},
	})
	if !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	// The failed update must not have mutated anything.
	got, err := s.GetEntry(ctx, "posts", "mover")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if got.Data["summary"] != "before" {
		t.Errorf("summary = %v, conflict update must not mutate", got.Data["summary"])
	}
}

func TestDeleteEntry_NotFound(t *testing.T) {
	s := testStore(t)

	err := s.DeleteEntry(context.Background(), "posts", "ghost")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListEntries_FilterAndCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i, status := range []string{"draft", "published", "published"} {
		_, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
			Status: status,
			Data:   map[string]any{"title": "Post " + string(rune('A'+i))},
		})
		if err != nil {
			t.Fatalf("CreateEntry %d: %v", i, err)
		}
	}

	all, total, err := s.ListEntries(ctx, "posts", ListEntriesOptions{})
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("all: len=%d total=%d, want 3/3", len(all), total)
	}

	published, total, err := s.ListEntries(ctx, "posts", ListEntriesOptions{Status: "published"})
	if err != nil {
		t.Fatalf("ListEntries published: %v", err)
	}
	if total != 2 || len(published) != 2 {
		t.Errorf("published: len=%d total=%d, want 2/2", len(published), total)
	}

	page, total, err := s.ListEntries(ctx, "posts", ListEntriesOptions{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListEntries paged: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Errorf("page: len=%d total=%d, want 1/3", len(page), total)
	}
}

func TestListEntries_RejectsUnknownSortField(t *testing.T) {
	s := testStore(t)

	_, _, err := s.ListEntries(context.Background(), "posts", ListEntriesOptions{
		SortField: "data; DROP TABLE entries",
	})
	if err == nil {
		t.Error("unknown sort field should be rejected")
	}
}

func TestListPublished_OrderAndVisibility(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mk := func(slug string) {
		t.Helper()
		if _, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
			Slug: slug, Data: map[string]any{"title": slug},
		}); err != nil {
			t.Fatal(err)
		}
	}
	publish := func(slug string) {
		t.Helper()
		published := model.EntryStatusPublished
		if _, err := s.UpdateEntry(ctx, "posts", slug, UpdateEntryParams{Status: &published}); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	mk("older")
	mk("newer")
	mk("hidden")
	publish("older")
	publish("newer")

	private := model.VisibilityPrivate
	published := model.EntryStatusPublished
	if _, err := s.UpdateEntry(ctx, "posts", "hidden", UpdateEntryParams{
		Status: &published, Visibility: &private,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListPublished(ctx, "posts")
	if err != nil {
		t.Fatalf("ListPublished: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (private excluded)", len(got))
	}
	if got[0].Slug != "newer" || got[1].Slug != "older" {
		t.Errorf("order = [%s %s], want newest publish first", got[0].Slug, got[1].Slug)
	}
}

func TestDuplicateEntry(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug:   "source",
		Status: model.EntryStatusPublished,
		Data:   map[string]any{"title": "Source", "summary": "copy me"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	clone, err := s.DuplicateEntry(ctx, "posts", "source")
	if err != nil {
		t.Fatalf("DuplicateEntry: %v", err)
	}

	if clone.Slug == "source" {
		t.Error("clone slug should be disambiguated")
	}
	if clone.Status != model.EntryStatusDraft {
		t.Errorf("clone status = %q, want draft", clone.Status)
	}
	if clone.PublishedAt.Valid {
		t.Error("clone should not inherit published_at")
	}
	if clone.Data["summary"] != "copy me" {
		t.Error("clone should carry the source data")
	}
}

func TestDuplicateEntry_RapidRepeats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.CreateEntry(ctx, "posts", CreateEntryParams{
		Slug: "source",
		Data: map[string]any{"title": "Source"},
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	// Several duplications inside the same second must still yield unique
	// slugs instead of tripping the UNIQUE constraint.
	seen := map[string]bool{"source": true}
	for i := 0; i < 5; i++ {
		clone, err := s.DuplicateEntry(ctx, "posts", "source")
		if err != nil {
			t.Fatalf("DuplicateEntry #%d: %v", i+1, err)
		}
		if seen[clone.Slug] {
			t.Fatalf("slug %q handed out twice", clone.Slug)
		}
		seen[clone.Slug] = true
	}
}

func TestCountEntriesByCollection(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, c := range []string{"posts", "posts", "pages"} {
		if _, err := s.CreateEntry(ctx, c, CreateEntryParams{
			Data: map[string]any{"title": "x"},
		}); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := s.CountEntriesByCollection(ctx)
	if err != nil {
		t.Fatalf("CountEntriesByCollection: %v", err)
	}
	if counts["posts"] != 2 || counts["pages"] != 1 {
		t.Errorf("counts = %v, want posts:2 pages:1", counts)
	}
}
