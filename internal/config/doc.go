// Package config loads, normalizes, and validates reelsync configuration.
//
// Configuration comes from a TOML file (default ~/.config/reelsync/config.toml
// or ./reelsync.toml) with environment variable overrides for credentials so
// the pipeline can run unattended with the same surface as the original
// deployment (TMDB_API_KEY, DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD).
package config
