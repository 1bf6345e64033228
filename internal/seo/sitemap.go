// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the sitemap and robots.txt for the public site.
package seo

import (
	"encoding/xml"
	"fmt"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Valid change frequency values.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapBuilder collects site URLs and renders them as sitemap XML.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a builder. siteURL is the absolute site root
// without a trailing slash.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: siteURL,
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddEntry adds a published entry detail page.
func (b *SitemapBuilder) AddEntry(collection, slug string, updatedAt time.Time) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        fmt.Sprintf("%s/%s/%s", b.siteURL, collection, slug),
		LastMod:    updatedAt.UTC().Format("2006-01-02"),
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.8",
	})
}

// AddCategory adds a category feed page.
func (b *SitemapBuilder) AddCategory(id string) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        fmt.Sprintf("%s/category/%s", b.siteURL, id),
		ChangeFreq: ChangeFreqWeekly,
		Priority:   "0.5",
	})
}

// Build renders the collected URLs as sitemap XML with the XML header.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	out, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}
