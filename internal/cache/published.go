// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/store"
)

// PublishedCache is a read-through cache for the public surface: published
// entry listings and single published entries. Keys are
// "published:list:{collection}" and "published:entry:{collection}:{slug}".
// Entries are invalidated whenever a write touches their collection, so
// the TTL is only a backstop.
type PublishedCache struct {
	backend Cacher
	store   *store.Store
	ttl     time.Duration
}

// NewPublishedCache creates a published-content cache over the given backend.
func NewPublishedCache(backend Cacher, s *store.Store, ttl time.Duration) *PublishedCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PublishedCache{backend: backend, store: s, ttl: ttl}
}

func listKey(collection string) string {
	return "published:list:" + collection
}

func entryKey(collection, slug string) string {
	return fmt.Sprintf("published:entry:%s:%s", collection, slug)
}

// ListPublished returns the published entries of a collection, serving
// from cache when possible.
func (c *PublishedCache) ListPublished(ctx context.Context, collection string) ([]model.Entry, error) {
	key := listKey(collection)

	if raw, err := c.backend.Get(ctx, key); err == nil {
		var entries []model.Entry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
		// Corrupt cache entry: fall through to the store
		_ = c.backend.Delete(ctx, key)
	}

	entries, err := c.store.ListPublished(ctx, collection)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(entries); err == nil {
		_ = c.backend.Set(ctx, key, raw, c.ttl)
	}
	return entries, nil
}

// GetPublished returns a single published, non-private entry. Unpublished
// or private entries report sql.ErrNoRows like a missing row would.
func (c *PublishedCache) GetPublished(ctx context.Context, collection, slug string) (model.Entry, error) {
	key := entryKey(collection, slug)

	if raw, err := c.backend.Get(ctx, key); err == nil {
		var entry model.Entry
		if err := json.Unmarshal(raw, &entry); err == nil {
			return entry, nil
		}
		_ = c.backend.Delete(ctx, key)
	}

	entry, err := c.store.GetEntry(ctx, collection, slug)
	if err != nil {
		return model.Entry{}, err
	}
	if !entry.IsPublished() || !entry.IsPublic() {
		return model.Entry{}, sql.ErrNoRows
	}

	if raw, err := json.Marshal(entry); err == nil {
		_ = c.backend.Set(ctx, key, raw, c.ttl)
	}
	return entry, nil
}

// InvalidateCollection drops every cached listing and entry for a
// collection. Called after any entry write in that collection.
func (c *PublishedCache) InvalidateCollection(ctx context.Context, collection string) {
	_ = c.backend.Delete(ctx, listKey(collection))
	_ = c.backend.DeleteByPrefix(ctx, "published:entry:"+collection+":")
}

// InvalidateAll drops every cached published page.
func (c *PublishedCache) InvalidateAll(ctx context.Context) {
	_ = c.backend.DeleteByPrefix(ctx, "published:")
}

// Stats reports backend statistics when the backend tracks them.
func (c *PublishedCache) Stats() (Stats, bool) {
	if sp, ok := c.backend.(StatsProvider); ok {
		return sp.Stats(), true
	}
	return Stats{}, false
}
