// Package config loads, normalizes, and validates Atenea configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and ATENEA_PYTHON. Model roots and checkpoint directories are
// derived from paths.models_dir when not set explicitly, so a fresh install
// only needs the model checkouts placed under one directory.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
