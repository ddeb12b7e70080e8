// Package config loads and merges git-dump-commit configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (GITDUMP_OUTPUT_DIR, GITDUMP_NO_MERGES, etc.)
//  3. Config file ($XDG_CONFIG_HOME/git-dump-commit/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
