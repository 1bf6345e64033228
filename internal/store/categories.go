// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/foliolab/folio/internal/model"
	"github.com/foliolab/folio/internal/util"
)

const categoryColumns = "id, name, label, color, description, show_on_homepage, position"

// UpdateCategoryParams are the editable fields of a category. Nil leaves
// the stored value untouched. Position changes only through Reorder.
type UpdateCategoryParams struct {
	Name           *string
	Label          *string
	Color          *string
	Description    *string
	ShowOnHomepage *bool
}

// ListCategories returns all categories in display order.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY position, name")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cats := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetCategory returns one category by id. Returns sql.ErrNoRows when absent.
func (s *Store) GetCategory(ctx context.Context, id string) (model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	return scanCategory(row)
}

// CreateCategory inserts a category. The id doubles as the slug and is
// derived from the name when absent; duplicates fail with ErrSlugTaken.
// New categories append to the end of the display order.
func (s *Store) CreateCategory(ctx context.Context, c model.Category) (model.Category, error) {
	if c.ID == "" {
		c.ID = util.Slugify(c.Name)
	} else {
		c.ID = util.Slugify(c.ID)
	}
	if c.ID == "" {
		return model.Category{}, fmt.Errorf("category needs a name or id")
	}
	if c.Label == "" {
		c.Label = c.Name
	}

	var exists int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM categories WHERE id = ?", c.ID).Scan(&exists); err != nil {
		return model.Category{}, fmt.Errorf("checking category id: %w", err)
	}
	if exists > 0 {
		return model.Category{}, ErrSlugTaken
	}

	var maxPos sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		"SELECT MAX(position) FROM categories").Scan(&maxPos); err != nil {
		return model.Category{}, fmt.Errorf("reading category positions: %w", err)
	}
	c.Position = maxPos.Int64 + 1

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, label, color, description, show_on_homepage, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Label, c.Color, c.Description, c.ShowOnHomepage, c.Position)
	if err != nil {
		return model.Category{}, fmt.Errorf("inserting category: %w", err)
	}

	return c, nil
}

// UpdateCategory applies a partial update to a category.
func (s *Store) UpdateCategory(ctx context.Context, id string, params UpdateCategoryParams) (model.Category, error) {
	existing, err := s.GetCategory(ctx, id)
	if err != nil {
		return model.Category{}, err
	}

	if params.Name != nil {
		existing.Name = *params.Name
	}
	if params.Label != nil {
		existing.Label = *params.Label
	}
	if params.Color != nil {
		existing.Color = *params.Color
	}
	if params.Description != nil {
		existing.Description = *params.Description
	}
	if params.ShowOnHomepage != nil {
		existing.ShowOnHomepage = *params.ShowOnHomepage
	}

	update := builder.Update("categories").
		Set("name", existing.Name).
		Set("label", existing.Label).
		Set("color", existing.Color).
		Set("description", existing.Description).
		Set("show_on_homepage", existing.ShowOnHomepage).
		Where(sq.Eq{"id": id})

	query, args, err := update.ToSql()
	if err != nil {
		return model.Category{}, fmt.Errorf("building category update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return model.Category{}, fmt.Errorf("updating category: %w", err)
	}

	return existing, nil
}

// DeleteCategory removes a category. Returns sql.ErrNoRows when absent.
// Entries referencing the id keep their dangling reference; the repair
// tooling reports those, deletion does not cascade.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reorder rewrites category positions to match the given id order inside
// one transaction. Ids not present in the list keep their relative order
// and are re-sequenced after the listed ones; unknown ids are ignored.
func (s *Store) Reorder(ctx context.Context, orderedIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting reorder: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.ID] = true
	}

	pos := int64(1)
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := tx.ExecContext(ctx,
			"UPDATE categories SET position = ? WHERE id = ?", pos, id); err != nil {
			return fmt.Errorf("reordering category %s: %w", id, err)
		}
		pos++
	}

	// Omitted categories follow, keeping their previous relative order.
	for _, c := range existing {
		if seen[c.ID] {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE categories SET position = ? WHERE id = ?", pos, c.ID); err != nil {
			return fmt.Errorf("reordering category %s: %w", c.ID, err)
		}
		pos++
	}

	return tx.Commit()
}

func scanCategory(row rowScanner) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Label, &c.Color, &c.Description,
		&c.ShowOnHomepage, &c.Position)
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}
