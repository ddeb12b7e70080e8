// Package dump runs one incremental dump of a repository.
//
// [Run] is a pure orchestration step over explicit state: it receives the
// cursor loaded by the caller, enumerates the commits after it, resolves each
// commit's destination directory, hands every commit that is not already on
// disk to the patch sink, and returns the cursor to persist. It never writes
// the cursor itself. [Incremental] wraps Run with a cursor store, loading the
// cursor before and saving it once after a fully successful run.
//
// A failed run returns the cursor it started from, so the next attempt covers the
// same range; the sink's per-directory commit index turns the already written
// part of that range into skips.
package dump
