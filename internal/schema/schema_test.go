// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package schema

import (
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	names := r.Names()
	want := []string{"posts", "articles", "pages"}
	if len(names) != len(want) {
		t.Fatalf("Names() returned %d collections, want %d", len(names), len(want))
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], n)
		}
	}

	posts, ok := r.Lookup("posts")
	if !ok {
		t.Fatal("Lookup(posts) not found")
	}
	if posts.TitleField != "title" {
		t.Errorf("posts.TitleField = %q, want %q", posts.TitleField, "title")
	}
	if !posts.SortDesc || posts.SortField != "created_at" {
		t.Errorf("posts sort = %q desc=%v, want created_at desc", posts.SortField, posts.SortDesc)
	}

	if _, ok := r.Lookup("widgets"); ok {
		t.Error("Lookup(widgets) should not be found")
	}
}

func TestValidateEntryData_RequiredOnlyWhenPublished(t *testing.T) {
	posts, _ := Default().Lookup("posts")

	data := map[string]any{"summary": "short one"}

	if err := ValidateEntryData(posts, data, "draft"); err != nil {
		t.Errorf("draft with missing title should validate, got %v", err)
	}

	err := ValidateEntryData(posts, data, "published")
	if err == nil {
		t.Fatal("publish with missing title should fail")
	}
	if len(err.Fields) != 1 || !strings.Contains(err.Fields[0], "title") {
		t.Errorf("expected a single title error, got %v", err.Fields)
	}
}

func TestValidateEntryData_CollectsAllErrors(t *testing.T) {
	articles, _ := Default().Lookup("articles")

	data := map[string]any{
		"subtitle": 42,          // wrong type
		"blocks":   "not-a-list", // wrong type, also required
	}

	err := ValidateEntryData(articles, data, "published")
	if err == nil {
		t.Fatal("expected validation error")
	}
	// title missing + subtitle type + blocks type
	if len(err.Fields) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(err.Fields), err.Fields)
	}
}

func TestValidateEntryData_Types(t *testing.T) {
	posts, _ := Default().Lookup("posts")

	good := map[string]any{
		"title":         "A post",
		"featuredImage": "media-id-1",
		"media":         []any{"m1", "m2"},
		"categories":    []any{"painting"},
		"seo":           map[string]any{"ogImage": "m1"},
	}
	if err := ValidateEntryData(posts, good, "published"); err != nil {
		t.Errorf("valid data rejected: %v", err)
	}

	bad := map[string]any{
		"title": "A post",
		"media": []any{"m1", 7},
	}
	if err := ValidateEntryData(posts, bad, "draft"); err == nil {
		t.Error("list with non-string element should fail even for drafts")
	}
}

func TestValidateEntryData_Blocks(t *testing.T) {
	articles, _ := Default().Lookup("articles")

	data := map[string]any{
		"title": "An article",
		"blocks": []any{
			map[string]any{"type": "heading", "text": "Intro"},
			map[string]any{"type": "image", "mediaId": "m1"},
		},
	}
	if err := ValidateEntryData(articles, data, "published"); err != nil {
		t.Errorf("valid blocks rejected: %v", err)
	}

	data["blocks"] = []any{map[string]any{"text": "no type"}}
	if err := ValidateEntryData(articles, data, "draft"); err == nil {
		t.Error("block without type should fail")
	}
}

func TestValidateEntryData_UndeclaredFieldsPassThrough(t *testing.T) {
	pages, _ := Default().Lookup("pages")

	// The data bag is loosely typed; only declared fields are checked.
	data := map[string]any{"title": "About", "sidebar": true}
	if err := ValidateEntryData(pages, data, "draft"); err != nil {
		t.Errorf("undeclared field rejected on draft: %v", err)
	}
	if err := ValidateEntryData(pages, data, "published"); err != nil {
		t.Errorf("undeclared field rejected on publish: %v", err)
	}

	// Block-shaped content on a collection that doesn't declare blocks is
	// still accepted and left intact.
	posts, _ := Default().Lookup("posts")
	data = map[string]any{
		"title": "Post",
		"blocks": []any{
			map[string]any{"type": "image", "mediaId": "m1"},
		},
	}
	if err := ValidateEntryData(posts, data, "published"); err != nil {
		t.Errorf("block content outside the schema rejected: %v", err)
	}
}

func TestValidateEntryData_EmptyValuesCountAsMissing(t *testing.T) {
	posts, _ := Default().Lookup("posts")

	for _, v := range []any{"", "   ", nil} {
		data := map[string]any{"title": v}
		if err := ValidateEntryData(posts, data, "published"); err == nil {
			t.Errorf("title=%#v should count as missing on publish", v)
		}
	}
}
