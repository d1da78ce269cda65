// Package config loads, normalizes, and validates clipforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and clamps free-form values such as colors and
// opacities into canonical form. The Config type centralizes every knob the
// CLI and render pipeline need, so music/background directories, encoder
// preferences and overlay parameters are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
