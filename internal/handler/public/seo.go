// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package public

import (
	"net/http"

	"github.com/foliolab/folio/internal/seo"
)

// Sitemap serves sitemap.xml over the published entries.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	b := seo.NewSitemapBuilder(h.siteURL(r))
	b.AddHomepage()

	for _, c := range h.store.Registry().All() {
		entries, err := h.cache.ListPublished(ctx, c.Name)
		if err != nil {
			h.log.Error("building sitemap", "collection", c.Name, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		for _, e := range entries {
			b.AddEntry(e.Collection, e.Slug, e.UpdatedAt)
		}
	}
	for _, c := range h.navCategories(ctx) {
		b.AddCategory(c.ID)
	}

	out, err := b.Build()
	if err != nil {
		h.log.Error("building sitemap", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(out)
}

// Robots serves robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, r *http.Request) {
	out := seo.BuildRobots(seo.RobotsConfig{SiteURL: h.siteURL(r)})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// siteURL derives the absolute site root from the request.
func (h *Handler) siteURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
