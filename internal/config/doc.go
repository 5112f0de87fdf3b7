// Package config loads, normalizes, and validates suimu configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SUIMU_DOWNLOADER. Command-line flags are folded in through ApplyOverrides so
// every command sees one sanitized Config.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
