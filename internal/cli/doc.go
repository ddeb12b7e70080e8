// Package cli wires together the Cobra command tree for the git-dump-commit
// binary.
//
// The root command performs the dump itself. Subcommands manage the config
// file (config), saved cursors (cursor), the post-commit hook (hook) and print
// the version. Exit codes: 0 on success, 1 for repository or filesystem
// failures, 2 for invalid arguments or configuration.
package cli
