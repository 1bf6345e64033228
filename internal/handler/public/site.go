// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package public

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/render"
)

// cardView is one tile in a feed.
type cardView struct {
	Collection  string
	Slug        string
	Title       string
	Summary     string
	ImageURL    string
	PublishedAt *time.Time
}

// blockView is one rendered article block.
type blockView struct {
	Type        string
	Text        string
	Caption     string
	ImageURL    string
	GalleryURLs []string
}

// feedView backs the home and category pages.
type feedView struct {
	NavCategories []model.Category
	Heading       string
	Cards         []cardView
}

// entryView backs the detail page.
type entryView struct {
	NavCategories []model.Category
	Title         string
	PublishedAt   *time.Time
	FeaturedURL   string
	Body          string
	Blocks        []blockView
	Carousel      []string
}

// errorView backs the error page.
type errorView struct {
	NavCategories []model.Category
	Status        int
	Message       string
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderFeed(w, r, "", "")
}

func (h *Handler) CategoryPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	heading := id
	for _, c := range h.navCategories(r.Context()) {
		if c.ID == id {
			heading = c.Label
			if heading == "" {
				heading = c.Name
			}
			break
		}
	}
	h.renderFeed(w, r, id, heading)
}

// renderFeed merges published entries across all collections, newest first,
// optionally filtered to one category.
func (h *Handler) renderFeed(w http.ResponseWriter, r *http.Request, categoryID, heading string) {
	ctx := r.Context()

	var entries []model.Entry
	for _, c := range h.store.Registry().All() {
		list, err := h.cache.ListPublished(ctx, c.Name)
		if err != nil {
			h.log.Error("listing published entries", "collection", c.Name, "error", err)
			h.renderError(w, ctx, http.StatusInternalServerError, "Something went wrong.")
			return
		}
		entries = append(entries, list...)
	}

	if categoryID != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if entryHasCategory(e, categoryID) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	// Newest first, created_at breaking publish-time ties across collections.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.PublishedAt.Time.Equal(b.PublishedAt.Time) {
			return a.PublishedAt.Time.After(b.PublishedAt.Time)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	cards := make([]cardView, 0, len(entries))
	for _, e := range entries {
		cards = append(cards, h.cardFor(ctx, e))
	}

	view := feedView{
		NavCategories: h.navCategories(ctx),
		Heading:       heading,
		Cards:         cards,
	}
	h.renderPage(w, "site/home", render.TemplateData{Title: heading, Data: view})
}

func (h *Handler) EntryPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	collection := chi.URLParam(r, "collection")
	slug := chi.URLParam(r, "slug")

	if _, ok := h.store.Registry().Lookup(collection); !ok {
		h.renderError(w, ctx, http.StatusNotFound, "Page not found.")
		return
	}

	entry, err := h.cache.GetPublished(ctx, collection, slug)
	if err != nil {
		h.renderError(w, ctx, http.StatusNotFound, "Page not found.")
		return
	}

	view := entryView{
		NavCategories: h.navCategories(ctx),
		Title:         h.entryTitle(entry),
	}
	if entry.PublishedAt.Valid {
		t := entry.PublishedAt.Time
		view.PublishedAt = &t
	}
	if id, ok := entry.Data["featuredImage"].(string); ok && id != "" {
		view.FeaturedURL = h.mediaURL(ctx, id, "large")
	}
	if body, ok := entry.Data["body"].(string); ok {
		view.Body = body
	}
	if blocks, ok := entry.Data["blocks"].([]any); ok {
		view.Blocks = h.blockViews(ctx, blocks)
	}
	if media, ok := entry.Data["media"].([]any); ok {
		for _, item := range media {
			if id, ok := item.(string); ok {
				if u := h.mediaURL(ctx, id, "medium"); u != "" {
					view.Carousel = append(view.Carousel, u)
				}
			}
		}
	}

	description := ""
	if s, ok := entry.Data["summary"].(string); ok {
		description = s
	}
	h.renderPage(w, "site/entry", render.TemplateData{
		Title:       view.Title,
		Description: description,
		Data:        view,
	})
}

// blockViews resolves raw block maps into renderable views. Unknown block
// types are skipped rather than surfaced as errors.
func (h *Handler) blockViews(ctx context.Context, blocks []any) []blockView {
	views := make([]blockView, 0, len(blocks))
	for _, raw := range blocks {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := block["type"].(string)
		view := blockView{Type: typ}

		switch typ {
		case "heading", "text", "markdown":
			view.Text, _ = block["text"].(string)
		case "image":
			id, _ := block["mediaId"].(string)
			view.ImageURL = h.mediaURL(ctx, id, "large")
			view.Caption, _ = block["caption"].(string)
			if view.ImageURL == "" {
				continue
			}
		case "gallery":
			ids, _ := block["mediaIds"].([]any)
			for _, item := range ids {
				if id, ok := item.(string); ok {
					if u := h.mediaURL(ctx, id, "medium"); u != "" {
						view.GalleryURLs = append(view.GalleryURLs, u)
					}
				}
			}
			if len(view.GalleryURLs) == 0 {
				continue
			}
		default:
			continue
		}
		views = append(views, view)
	}
	return views
}

func (h *Handler) cardFor(ctx context.Context, e model.Entry) cardView {
	card := cardView{
		Collection: e.Collection,
		Slug:       e.Slug,
		Title:      h.entryTitle(e),
	}
	if s, ok := e.Data["summary"].(string); ok {
		card.Summary = s
	}
	if e.PublishedAt.Valid {
		t := e.PublishedAt.Time
		card.PublishedAt = &t
	}
	if id, ok := e.Data["featuredImage"].(string); ok && id != "" {
		card.ImageURL = h.mediaURL(ctx, id, "medium")
	}
	return card
}

func entryHasCategory(e model.Entry, id string) bool {
	list, ok := e.Data["categories"].([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if s, ok := item.(string); ok && s == id {
			return true
		}
	}
	return false
}

func (h *Handler) entryTitle(e model.Entry) string {
	if c, ok := h.store.Registry().Lookup(e.Collection); ok {
		return e.Title(c.TitleField)
	}
	return e.Slug
}

// mediaURL resolves a media id to the URL of the preferred variant. Broken
// references render as missing images, not as page errors.
func (h *Handler) mediaURL(ctx context.Context, id, variant string) string {
	if id == "" {
		return ""
	}
	m, err := h.store.GetMedia(ctx, id)
	if err != nil {
		return ""
	}
	if u, ok := m.Variants[variant]; ok && u != "" {
		return u
	}
	return m.ActiveURL()
}

func (h *Handler) navCategories(ctx context.Context) []model.Category {
	categories, err := h.store.ListCategories(ctx)
	if err != nil {
		return nil
	}
	nav := categories[:0]
	for _, c := range categories {
		if c.ShowOnHomepage {
			nav = append(nav, c)
		}
	}
	return nav
}

func (h *Handler) renderPage(w http.ResponseWriter, name string, data render.TemplateData) {
	if err := h.renderer.Render(w, name, data); err != nil {
		h.log.Error("rendering page", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, ctx context.Context, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	view := errorView{
		NavCategories: h.navCategories(ctx),
		Status:        status,
		Message:       message,
	}
	if err := h.renderer.Render(w, "site/error", render.TemplateData{Title: message, Data: view}); err != nil {
		h.log.Error("rendering error page", "error", err)
	}
}
