// Package fsio holds the filesystem error type shared by the patch writer and
// the cursor store, plus an atomic write helper built on afero.
//
// Every failure surfaced by these packages wraps [ErrIO], so callers can tell
// local I/O problems apart from repository problems with errors.Is.
package fsio
