// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

// Set via ldflags at build time, e.g.
// -ldflags "-X github.com/foliolab/folio/internal/version.Version=v1.2.3"
var (
	Version   = "dev"     // Semantic version from git tags
	GitCommit = "unknown" // Short git commit hash
	BuildTime = "unknown" // Build timestamp in RFC3339 format
)
