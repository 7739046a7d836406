// Package config loads, normalizes, and validates subsonar's TOML
// configuration. Path fields are tilde-expanded and made absolute during
// Load; callers can rely on them being usable as-is.
package config
