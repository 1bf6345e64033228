// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"log/slog"

	"github.com/foliolab/folio/internal/model"
)

// Seed creates a starter taxonomy and a sample draft post when the
// database is empty. Users are never seeded; the first owner account comes
// from the setup endpoint.
func Seed(ctx context.Context, s *Store) error {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(cats) > 0 {
		slog.Info("categories already exist, skipping seed")
		return nil
	}

	seedCategories := []model.Category{
		{Name: "Painting", Color: "#c0504d", ShowOnHomepage: true},
		{Name: "Photography", Color: "#4f81bd", ShowOnHomepage: true},
		{Name: "Sketches", Color: "#9bbb59"},
	}
	for _, c := range seedCategories {
		if _, err := s.CreateCategory(ctx, c); err != nil {
			return err
		}
	}

	_, err = s.CreateEntry(ctx, "posts", CreateEntryParams{
		Data: map[string]any{
			"title":      "Welcome to Folio",
			"summary":    "This draft shows what a post looks like. Edit or delete it.",
			"categories": []any{"painting"},
		},
	})
	if err != nil {
		return err
	}

	slog.Info("seeded starter categories and sample post")
	return nil
}
