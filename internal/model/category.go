// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Category is a small manually-ordered taxonomy record. The ID doubles as
// the URL slug; Position defines display order and is only mutated through
// an explicit reorder.
type Category struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Label          string `json:"label"`
	Color          string `json:"color"`
	Description    string `json:"description,omitempty"`
	ShowOnHomepage bool   `json:"show_on_homepage"`
	Position       int64  `json:"order"`
}
