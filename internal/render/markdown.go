// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer strips anything bluemonday's UGC policy considers unsafe.
// Markdown arrives from the editor, so it is treated as user-generated content.
var htmlSanitizer = bluemonday.UGCPolicy()

// Markdown converts markdown source to sanitized HTML.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		// Fall back to the escaped source rather than dropping content.
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped above
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized above
}

// SanitizeHTML runs raw HTML through the shared UGC policy.
func SanitizeHTML(src string) template.HTML {
	return template.HTML(htmlSanitizer.Sanitize(src)) //nolint:gosec // sanitized above
}
