// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema holds the collection registry: the single source of truth
// for which content collections exist, which fields they carry and how
// entries are validated before publishing.
package schema

// Field types understood by the validator.
const (
	TypeString       = "string"
	TypeText         = "text"
	TypeNumber       = "number"
	TypeBool         = "bool"
	TypeList         = "list"
	TypeBlocks       = "blocks"
	TypeMedia        = "media"
	TypeMediaList    = "mediaList"
	TypeCategoryList = "categoryList"
	TypeObject       = "object"
)

// Field describes a single field of a collection schema.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// Collection describes one content collection: its fields, the field used
// as the human title (and slug source), and the default list sort.
type Collection struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	TitleField string  `json:"title_field"`
	SortField  string  `json:"sort_field"`
	SortDesc   bool    `json:"sort_desc"`
	Fields     []Field `json:"fields"`
}

// Field returns the named field definition.
func (c Collection) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Registry is an in-memory lookup of collection schemas.
type Registry struct {
	collections map[string]Collection
	order       []string
}

// NewRegistry builds a registry from the given collections, preserving order.
func NewRegistry(collections ...Collection) *Registry {
	r := &Registry{collections: make(map[string]Collection, len(collections))}
	for _, c := range collections {
		r.collections[c.Name] = c
		r.order = append(r.order, c.Name)
	}
	return r
}

// Lookup returns the schema for a collection name.
func (r *Registry) Lookup(name string) (Collection, bool) {
	c, ok := r.collections[name]
	return c, ok
}

// Names returns all collection names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns all collection schemas in registration order.
func (r *Registry) All() []Collection {
	out := make([]Collection, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.collections[name])
	}
	return out
}

// Default returns the built-in registry: posts, articles and pages.
func Default() *Registry {
	return NewRegistry(
		Collection{
			Name:       "posts",
			Label:      "Posts",
			TitleField: "title",
			SortField:  "created_at",
			SortDesc:   true,
			Fields: []Field{
				{Name: "title", Type: TypeString, Label: "Title", Required: true},
				{Name: "summary", Type: TypeText, Label: "Summary"},
				{Name: "body", Type: TypeText, Label: "Body"},
				{Name: "featuredImage", Type: TypeMedia, Label: "Featured image"},
				{Name: "media", Type: TypeMediaList, Label: "Carousel media"},
				{Name: "categories", Type: TypeCategoryList, Label: "Categories"},
				{Name: "seo", Type: TypeObject, Label: "SEO"},
			},
		},
		Collection{
			Name:       "articles",
			Label:      "Articles",
			TitleField: "title",
			SortField:  "created_at",
			SortDesc:   true,
			Fields: []Field{
				{Name: "title", Type: TypeString, Label: "Title", Required: true},
				{Name: "subtitle", Type: TypeString, Label: "Subtitle"},
				{Name: "blocks", Type: TypeBlocks, Label: "Content blocks", Required: true},
				{Name: "featuredImage", Type: TypeMedia, Label: "Featured image"},
				{Name: "categories", Type: TypeCategoryList, Label: "Categories"},
				{Name: "seo", Type: TypeObject, Label: "SEO"},
			},
		},
		Collection{
			Name:       "pages",
			Label:      "Pages",
			TitleField: "title",
			SortField:  "slug",
			Fields: []Field{
				{Name: "title", Type: TypeString, Label: "Title", Required: true},
				{Name: "body", Type: TypeText, Label: "Body"},
				{Name: "seo", Type: TypeObject, Label: "SEO"},
			},
		},
	)
}
