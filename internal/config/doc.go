// Package config loads, normalizes, and validates pagesig configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// PAGESIG_TOLERANCE. The Config type centralizes the locations of the
// screenshot corpus, the annotation table, and the signature table together
// with the match tolerance, so every command resolves them in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
