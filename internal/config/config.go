// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"FOLIO_DB_PATH" envDefault:"./data/folio.db"`
	ServerHost string `env:"FOLIO_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"FOLIO_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"FOLIO_ENV" envDefault:"development"`
	LogLevel   string `env:"FOLIO_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"FOLIO_UPLOADS_DIR" envDefault:"./uploads"`

	// BaseURL is prepended to generated media URLs. Empty means
	// root-relative URLs, which is what the bundled site expects.
	BaseURL string `env:"FOLIO_BASE_URL"`

	// Cache configuration
	RedisURL     string `env:"FOLIO_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"FOLIO_CACHE_PREFIX" envDefault:"folio:"`  // Redis key prefix
	CacheTTL     int    `env:"FOLIO_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"FOLIO_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Upload limits
	MaxUploadSize int64 `env:"FOLIO_MAX_UPLOAD_SIZE" envDefault:"20971520"` // 20MB

	// Seeding configuration
	DoSeed bool `env:"FOLIO_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("FOLIO_SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}

	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("FOLIO_MAX_UPLOAD_SIZE must be positive, got %d", cfg.MaxUploadSize)
	}

	return cfg, nil
}
