// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/schema"
	"github.com/foliolab/folio/internal/util"
)

// entryColumns is the column list every entry query selects, in scan order.
const entryColumns = "id, collection, slug, status, visibility, data, author_id, created_at, updated_at, published_at"

// entrySortFields whitelists the columns list queries may sort by.
var entrySortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"published_at": true,
	"slug":         true,
}

// ListEntriesOptions controls filtering and pagination for ListEntries.
type ListEntriesOptions struct {
	Status    string // empty = all statuses
	Limit     int
	Offset    int
	SortField string // empty = schema default
	SortDir   string // "asc" or "desc"; empty = schema default
}

// CreateEntryParams are the caller-supplied fields for a new entry.
type CreateEntryParams struct {
	Slug       string
	Status     string
	Visibility string
	Data       map[string]any
	AuthorID   *int64
}

// UpdateEntryParams are the fields of a partial entry update. Nil pointers
// leave the stored value untouched; Data is shallow-merged, not replaced.
type UpdateEntryParams struct {
	Slug       *string
	Status     *string
	Visibility *string
	Data       map[string]any
}

// ListEntries returns a page of entries for a collection plus the total
// count matching the filter.
func (s *Store) ListEntries(ctx context.Context, collection string, opts ListEntriesOptions) ([]model.Entry, int64, error) {
	schemaDef, ok := s.registry.Lookup(collection)
	if !ok {
		return nil, 0, ErrUnknownCollection
	}

	sortField := opts.SortField
	if sortField == "" {
		sortField = schemaDef.SortField
	}
	if !entrySortFields[sortField] {
		return nil, 0, fmt.Errorf("unsupported sort field %q", sortField)
	}

	desc := schemaDef.SortDesc
	switch opts.SortDir {
	case "asc":
		desc = false
	case "desc":
		desc = true
	case "":
	default:
		return nil, 0, fmt.Errorf("unsupported sort direction %q", opts.SortDir)
	}

	order := sortField + " ASC"
	if desc {
		order = sortField + " DESC"
	}

	where := sq.Eq{"collection": collection}
	q := builder.Select(entryColumns).From("entries").Where(where).OrderBy(order, "id DESC")
	countQ := builder.Select("COUNT(*)").From("entries").Where(where)

	if opts.Status != "" {
		q = q.Where(sq.Eq{"status": opts.Status})
		countQ = countQ.Where(sq.Eq{"status": opts.Status})
	}
	if opts.Limit > 0 {
		q = q.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Offset(uint64(opts.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building entries query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting entries: %w", err)
	}

	return entries, total, nil
}

// GetEntry returns a single entry by collection and slug.
// Returns sql.ErrNoRows when absent.
func (s *Store) GetEntry(ctx context.Context, collection, slug string) (model.Entry, error) {
	if _, ok := s.registry.Lookup(collection); !ok {
		return model.Entry{}, ErrUnknownCollection
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE collection = ? AND slug = ?",
		collection, slug)
	return scanEntry(row)
}

// CreateEntry validates and inserts a new entry. When no slug is supplied
// one is derived from the schema's title field; slug collisions are
// disambiguated with a unix-timestamp suffix rather than rejected.
func (s *Store) CreateEntry(ctx context.Context, collection string, params CreateEntryParams) (model.Entry, error) {
	schemaDef, ok := s.registry.Lookup(collection)
	if !ok {
		return model.Entry{}, ErrUnknownCollection
	}

	status := params.Status
	if status == "" {
		status = model.EntryStatusDraft
	}
	if !model.ValidEntryStatus(status) {
		return model.Entry{}, &schema.ValidationError{Fields: []string{"status: must be draft, published or archived"}}
	}

	visibility := params.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}

	data := params.Data
	if data == nil {
		data = map[string]any{}
	}
	if verr := schema.ValidateEntryData(schemaDef, data, status); verr != nil {
		return model.Entry{}, verr
	}

	slug := params.Slug
	if slug == "" {
		if title, ok := data[schemaDef.TitleField].(string); ok {
			slug = util.Slugify(title)
		}
	} else {
		slug = util.Slugify(slug)
	}
	if slug == "" {
		slug = "untitled"
	}

	unique, err := s.uniqueEntrySlug(ctx, collection, slug, 0)
	if err != nil {
		return model.Entry{}, err
	}
	slug = unique

	now := time.Now().UTC()
	var publishedAt sql.NullTime
	if status == model.EntryStatusPublished {
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return model.Entry{}, fmt.Errorf("encoding entry data: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (collection, slug, status, visibility, data, author_id, created_at, updated_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		collection, slug, status, visibility, string(raw),
		util.NullInt64FromPtr(params.AuthorID), now, now, publishedAt)
	if err != nil {
		return model.Entry{}, fmt.Errorf("inserting entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.Entry{}, fmt.Errorf("reading entry id: %w", err)
	}

	return model.Entry{
		ID:          id,
		Collection:  collection,
		Slug:        slug,
		Status:      status,
		Visibility:  visibility,
		Data:        data,
		AuthorID:    util.NullInt64FromPtr(params.AuthorID),
		CreatedAt:   now,
		UpdatedAt:   now,
		PublishedAt: publishedAt,
	}, nil
}

// UpdateEntry applies a partial update to an existing entry. Data is merged
// shallowly into the stored bag and the merged result re-validated. A slug
// change that collides with another entry fails with ErrSlugTaken before
// anything is written. The published_at stamp is set exactly once, on the
// first transition to published, and never modified afterwards.
func (s *Store) UpdateEntry(ctx context.Context, collection, slug string, params UpdateEntryParams) (model.Entry, error) {
	schemaDef, ok := s.registry.Lookup(collection)
	if !ok {
		return model.Entry{}, ErrUnknownCollection
	}

	existing, err := s.GetEntry(ctx, collection, slug)
	if err != nil {
		return model.Entry{}, err
	}

	newSlug := existing.Slug
	if params.Slug != nil && *params.Slug != existing.Slug {
		candidate := util.Slugify(*params.Slug)
		if candidate == "" {
			return model.Entry{}, &schema.ValidationError{Fields: []string{"slug: invalid slug"}}
		}
		taken, err := s.entrySlugExists(ctx, collection, candidate, existing.ID)
		if err != nil {
			return model.Entry{}, err
		}
		if taken {
			return model.Entry{}, ErrSlugTaken
		}
		newSlug = candidate
	}

	status := existing.Status
	if params.Status != nil {
		if !model.ValidEntryStatus(*params.Status) {
			return model.Entry{}, &schema.ValidationError{Fields: []string{"status: must be draft, published or archived"}}
		}
		status = *params.Status
	}

	visibility := existing.Visibility
	if params.Visibility != nil {
		visibility = *params.Visibility
	}

	// Shallow merge: fields absent from the payload survive untouched.
	merged := make(map[string]any, len(existing.Data)+len(params.Data))
	for k, v := range existing.Data {
		merged[k] = v
	}
	for k, v := range params.Data {
		merged[k] = v
	}

	if verr := schema.ValidateEntryData(schemaDef, merged, status); verr != nil {
		return model.Entry{}, verr
	}

	now := time.Now().UTC()
	publishedAt := existing.PublishedAt
	if status == model.EntryStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: now, Valid: true}
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return model.Entry{}, fmt.Errorf("encoding entry data: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE entries SET slug = ?, status = ?, visibility = ?, data = ?, updated_at = ?, published_at = ?
		 WHERE id = ?`,
		newSlug, status, visibility, string(raw), now, publishedAt, existing.ID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("updating entry: %w", err)
	}

	existing.Slug = newSlug
	existing.Status = status
	existing.Visibility = visibility
	existing.Data = merged
	existing.UpdatedAt = now
	existing.PublishedAt = publishedAt
	return existing, nil
}

// DeleteEntry removes an entry. Returns sql.ErrNoRows when absent.
func (s *Store) DeleteEntry(ctx context.Context, collection, slug string) error {
	if _, ok := s.registry.Lookup(collection); !ok {
		return ErrUnknownCollection
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE collection = ? AND slug = ?", collection, slug)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPublished returns publicly visible published entries, newest publish
// first with creation time as tie-break. Empty collection means all
// collections.
func (s *Store) ListPublished(ctx context.Context, collection string) ([]model.Entry, error) {
	q := builder.Select(entryColumns).From("entries").
		Where(sq.Eq{"status": model.EntryStatusPublished}).
		Where(sq.NotEq{"visibility": model.VisibilityPrivate}).
		OrderBy("published_at DESC", "created_at DESC")

	if collection != "" {
		if _, ok := s.registry.Lookup(collection); !ok {
			return nil, ErrUnknownCollection
		}
		q = q.Where(sq.Eq{"collection": collection})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building published query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing published entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// DuplicateEntry clones an entry as a new draft with a disambiguated slug.
func (s *Store) DuplicateEntry(ctx context.Context, collection, slug string) (model.Entry, error) {
	src, err := s.GetEntry(ctx, collection, slug)
	if err != nil {
		return model.Entry{}, err
	}

	var authorID *int64
	if src.AuthorID.Valid {
		authorID = &src.AuthorID.Int64
	}

	return s.CreateEntry(ctx, collection, CreateEntryParams{
		Slug:       src.Slug,
		Status:     model.EntryStatusDraft,
		Visibility: src.Visibility,
		Data:       src.Data,
		AuthorID:   authorID,
	})
}

// CountEntriesByCollection returns entry totals keyed by collection name.
func (s *Store) CountEntriesByCollection(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT collection, COUNT(*) FROM entries GROUP BY collection")
	if err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// AllEntries returns every entry across every collection. Used by the
// maintenance scans (reference rewriting, orphan diagnostics); this is a
// deliberate full-table read.
func (s *Store) AllEntries(ctx context.Context) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM entries ORDER BY collection, id")
	if err != nil {
		return nil, fmt.Errorf("listing all entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// UpdateEntryData overwrites an entry's data bag without touching status or
// slug. Used by reference rewriting; updated_at is bumped.
func (s *Store) UpdateEntryData(ctx context.Context, id int64, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding entry data: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE entries SET data = ?, updated_at = ? WHERE id = ?",
		string(raw), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating entry data: %w", err)
	}
	return nil
}

// uniqueEntrySlug disambiguates a slug by appending a unix timestamp when
// it is already taken within the collection. The timestamped candidate is
// checked too and gets a counter suffix when several disambiguations land
// in the same second.
func (s *Store) uniqueEntrySlug(ctx context.Context, collection, slug string, excludeID int64) (string, error) {
	taken, err := s.entrySlugExists(ctx, collection, slug, excludeID)
	if err != nil {
		return "", err
	}
	if !taken {
		return slug, nil
	}

	stamped := fmt.Sprintf("%s-%d", slug, time.Now().Unix())
	candidate := stamped
	for n := 2; ; n++ {
		taken, err := s.entrySlugExists(ctx, collection, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", stamped, n)
	}
}

func (s *Store) entrySlugExists(ctx context.Context, collection, slug string, excludeID int64) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE collection = ? AND slug = ? AND id != ?",
		collection, slug, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return n > 0, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.Entry, error) {
	var e model.Entry
	var raw string
	err := row.Scan(&e.ID, &e.Collection, &e.Slug, &e.Status, &e.Visibility,
		&raw, &e.AuthorID, &e.CreatedAt, &e.UpdatedAt, &e.PublishedAt)
	if err != nil {
		return model.Entry{}, err
	}
	if err := json.Unmarshal([]byte(raw), &e.Data); err != nil {
		return model.Entry{}, fmt.Errorf("decoding entry data: %w", err)
	}
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]model.Entry, error) {
	entries := make([]model.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
