// Package patch names and writes per-commit patch files.
//
// File names have the form NNNN-slug.patch. The sequence number is scoped to
// the destination directory and continues after the highest number already
// present there ([NextSequence]); no counter is stored anywhere else. The slug
// is derived from the commit subject by [Slug].
//
// A [Writer] indexes the patches already present in a directory by the commit
// SHA on their first line, so re-running over a range that was partially
// written skips those commits instead of numbering them twice. New files are
// written atomically and existing names are never overwritten.
package patch
