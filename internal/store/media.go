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
)

const mediaColumns = "id, filename, original_name, slug, path, url, mime, size, width, height, " +
	"title, alt, caption, description, tags, active_variant, variants, created_at, updated_at"

// UpdateMediaParams are the editable metadata fields of a media item.
// Nil pointers leave the stored value untouched.
type UpdateMediaParams struct {
	Title         *string
	Alt           *string
	Caption       *string
	Description   *string
	Tags          *[]string
	ActiveVariant *string
}

// CreateMedia inserts a media metadata record.
func (s *Store) CreateMedia(ctx context.Context, m model.Media) (model.Media, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.ActiveVariant == "" {
		m.ActiveVariant = model.VariantOriginal
	}
	if m.Variants == nil {
		m.Variants = map[string]string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}

	tags, err := json.Marshal(m.Tags)
	if err != nil {
		return model.Media{}, fmt.Errorf("encoding tags: %w", err)
	}
	variants, err := json.Marshal(m.Variants)
	if err != nil {
		return model.Media{}, fmt.Errorf("encoding variants: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO media (id, filename, original_name, slug, path, url, mime, size, width, height,
		 title, alt, caption, description, tags, active_variant, variants, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Filename, m.OriginalName, m.Slug, m.Path, m.URL, m.Mime, m.Size,
		m.Width, m.Height, m.Title, m.Alt, m.Caption, m.Description,
		string(tags), m.ActiveVariant, string(variants), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return model.Media{}, fmt.Errorf("inserting media: %w", err)
	}

	return m, nil
}

// GetMedia returns one media item by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetMedia(ctx context.Context, id string) (model.Media, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+mediaColumns+" FROM media WHERE id = ?", id)
	return scanMedia(row)
}

// ListMedia returns a page of media items newest first, plus the total count.
func (s *Store) ListMedia(ctx context.Context, limit, offset int) ([]model.Media, int64, error) {
	q := builder.Select(mediaColumns).From("media").OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building media query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing media: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]model.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting media: %w", err)
	}

	return items, total, nil
}

// UpdateMedia applies a partial metadata update. Changing the active
// variant to one the item does not have fails with ErrUnknownVariant.
func (s *Store) UpdateMedia(ctx context.Context, id string, params UpdateMediaParams) (model.Media, error) {
	existing, err := s.GetMedia(ctx, id)
	if err != nil {
		return model.Media{}, err
	}

	if params.Title != nil {
		existing.Title = *params.Title
	}
	if params.Alt != nil {
		existing.Alt = *params.Alt
	}
	if params.Caption != nil {
		existing.Caption = *params.Caption
	}
	if params.Description != nil {
		existing.Description = *params.Description
	}
	if params.Tags != nil {
		existing.Tags = *params.Tags
	}
	if params.ActiveVariant != nil {
		if _, ok := existing.Variants[*params.ActiveVariant]; !ok {
			return model.Media{}, ErrUnknownVariant
		}
		existing.ActiveVariant = *params.ActiveVariant
		existing.URL = existing.Variants[*params.ActiveVariant]
	}

	now := time.Now().UTC()
	existing.UpdatedAt = sql.NullTime{Time: now, Valid: true}

	tags, err := json.Marshal(existing.Tags)
	if err != nil {
		return model.Media{}, fmt.Errorf("encoding tags: %w", err)
	}

	update := builder.Update("media").
		Set("title", existing.Title).
		Set("alt", existing.Alt).
		Set("caption", existing.Caption).
		Set("description", existing.Description).
		Set("tags", string(tags)).
		Set("active_variant", existing.ActiveVariant).
		Set("url", existing.URL).
		Set("updated_at", now).
		Where(sq.Eq{"id": id})

	query, args, err := update.ToSql()
	if err != nil {
		return model.Media{}, fmt.Errorf("building media update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.Media{}, fmt.Errorf("updating media: %w", err)
	}

	return existing, nil
}

// DeleteMedia removes a media record. Returns sql.ErrNoRows when absent.
func (s *Store) DeleteMedia(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM media WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AllMediaIDs returns the set of every stored media id. Used by the orphan
// diagnostics to compare against referenced ids.
func (s *Store) AllMediaIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM media")
	if err != nil {
		return nil, fmt.Errorf("listing media ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning media id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func scanMedia(row rowScanner) (model.Media, error) {
	var m model.Media
	var tags, variants string
	err := row.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.Slug, &m.Path, &m.URL,
		&m.Mime, &m.Size, &m.Width, &m.Height, &m.Title, &m.Alt, &m.Caption,
		&m.Description, &tags, &m.ActiveVariant, &variants, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Media{}, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return model.Media{}, fmt.Errorf("decoding media tags: %w", err)
	}
	if err := json.Unmarshal([]byte(variants), &m.Variants); err != nil {
		return model.Media{}, fmt.Errorf("decoding media variants: %w", err)
	}
	return m, nil
}
