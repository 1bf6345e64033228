// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestSitemapBuilder(t *testing.T) {
	b := NewSitemapBuilder("https://example.com")
	b.AddHomepage()
	b.AddEntry("posts", "sunset", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	b.AddCategory("cat-1")

	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var parsed Sitemap
	if err := xml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if len(parsed.URLs) != 3 {
		t.Fatalf("got %d urls, want 3", len(parsed.URLs))
	}
	if parsed.URLs[0].Loc != "https://example.com/" {
		t.Errorf("homepage loc: %q", parsed.URLs[0].Loc)
	}
	if parsed.URLs[1].Loc != "https://example.com/posts/sunset" {
		t.Errorf("entry loc: %q", parsed.URLs[1].Loc)
	}
	if parsed.URLs[1].LastMod != "2026-03-10" {
		t.Errorf("entry lastmod: %q", parsed.URLs[1].LastMod)
	}
	if !strings.HasPrefix(string(out), "<?xml") {
		t.Error("XML header missing")
	}
}

func TestBuildRobots(t *testing.T) {
	out := BuildRobots(RobotsConfig{SiteURL: "https://example.com"})
	for _, want := range []string{"User-agent: *", "Disallow: /api/", "Disallow: /public/", "Sitemap: https://example.com/sitemap.xml"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestBuildRobots_DisallowAll(t *testing.T) {
	out := BuildRobots(RobotsConfig{DisallowAll: true})
	if !strings.Contains(out, "Disallow: /\n") {
		t.Errorf("staging mode should block everything:\n%s", out)
	}
	if strings.Contains(out, "Sitemap") {
		t.Error("no sitemap reference when blocked")
	}
}
