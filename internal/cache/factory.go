// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"time"

	"github.com/foliolab/folio/internal/config"
)

// Options holds configuration for cache creation.
type Options struct {
	// RedisURL selects the Redis backend when non-empty.
	// Example: redis://localhost:6379/0
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	// DefaultTTL is the default TTL for cache entries.
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for the memory cache
	// (0 = unlimited).
	MaxSize int
}

// New creates a cache backend from the provided options: Redis when a URL
// is configured, in-process memory otherwise.
func New(opts Options) (Cacher, error) {
	if opts.RedisURL != "" {
		return NewRedisCacheFromURL(opts.RedisURL, opts.Prefix, opts.DefaultTTL)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      opts.DefaultTTL,
		MaxSize:         opts.MaxSize,
		CleanupInterval: time.Minute,
	}), nil
}

// NewFromConfig creates a cache backend from the application config.
func NewFromConfig(cfg *config.Config) (Cacher, error) {
	return New(Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:    cfg.CacheMaxSize,
	})
}
