// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Named image variants generated for every uploaded image.
const (
	VariantOriginal = "original"
	VariantThumb    = "thumb"
	VariantMedium   = "medium"
	VariantLarge    = "large"
	VariantDisplay  = "display"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypeSVG  = "image/svg+xml"
	MimeTypePDF  = "application/pdf"
	MimeTypeMP4  = "video/mp4"
	MimeTypeWebM = "video/webm"
)

// ImageVariantConfig defines settings for generating image variants.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
}

// ImageVariants defines the default image variant configurations. All
// variants fit within bounds; the original is always kept alongside.
var ImageVariants = map[string]ImageVariantConfig{
	VariantThumb:   {Width: 320, Height: 320, Quality: 80},
	VariantMedium:  {Width: 768, Height: 768, Quality: 85},
	VariantLarge:   {Width: 1280, Height: 1280, Quality: 88},
	VariantDisplay: {Width: 1920, Height: 1920, Quality: 90},
}

// Media represents one uploaded asset plus its generated size variants.
// Binary bytes live on disk under the uploads directory; the record links
// to them by path/URL only.
type Media struct {
	ID            string            `json:"id"`
	Filename      string            `json:"filename"`
	OriginalName  string            `json:"original_name"`
	Slug          string            `json:"slug"`
	Path          string            `json:"path"`
	URL           string            `json:"url"`
	Mime          string            `json:"mime"`
	Size          int64             `json:"size"`
	Width         sql.NullInt64     `json:"width,omitempty"`
	Height        sql.NullInt64     `json:"height,omitempty"`
	Title         string            `json:"title,omitempty"`
	Alt           string            `json:"alt,omitempty"`
	Caption       string            `json:"caption,omitempty"`
	Description   string            `json:"description,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	ActiveVariant string            `json:"active_variant"`
	Variants      map[string]string `json:"variants"` // variant name -> URL
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     sql.NullTime      `json:"updated_at,omitempty"`
}

// ActiveURL returns the URL of the active variant, falling back to the
// canonical URL when the variant is unknown.
func (m *Media) ActiveURL() string {
	if u, ok := m.Variants[m.ActiveVariant]; ok && u != "" {
		return u
	}
	return m.URL
}

// IsImage returns true if the media type is a raster image.
func (m *Media) IsImage() bool {
	switch m.Mime {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// SupportedImageTypes returns the image MIME types the variant pipeline
// can process.
func SupportedImageTypes() []string {
	return []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP}
}

// AllSupportedTypes returns all MIME types accepted for upload.
func AllSupportedTypes() []string {
	return []string{
		MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP, MimeTypeSVG,
		MimeTypePDF, MimeTypeMP4, MimeTypeWebM,
	}
}

// IsSupportedMimeType checks if a MIME type is accepted for upload.
func IsSupportedMimeType(mimeType string) bool {
	for _, t := range AllSupportedTypes() {
		if t == mimeType {
			return true
		}
	}
	return false
}

// MimeByExtension maps lowercase file extensions to MIME types. Used when
// the upload omits a content type and by the orphan repair tooling.
var MimeByExtension = map[string]string{
	".jpg":  MimeTypeJPEG,
	".jpeg": MimeTypeJPEG,
	".png":  MimeTypePNG,
	".gif":  MimeTypeGIF,
	".webp": MimeTypeWebP,
	".svg":  MimeTypeSVG,
	".pdf":  MimeTypePDF,
	".mp4":  MimeTypeMP4,
	".webm": MimeTypeWebM,
}
