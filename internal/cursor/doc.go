// Package cursor persists the last commit dumped for each selector.
//
// A selector names the layout and tag filter of a run ([Selector]). Each
// selector has its own JSON entry under <output>/.gitdump, keyed by a SHA-256
// hash of the selector string, so a filtered run never moves the cursor of an
// unfiltered one. Nothing is written inside the repository's own .git
// directory.
//
// Entries are replaced atomically. Callers save only after every patch of a
// run was written, which keeps the previous value intact when a run fails.
package cursor
