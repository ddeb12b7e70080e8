// Package gitctx reads commits, tags and patches from a git repository.
//
// Everything is obtained by shelling out to the git executable; this package
// never parses repository storage itself. A [Repo] is bound to a working
// directory and runs each git invocation with the caller's context.
//
// [Repo.ListCommits] enumerates commits between an exclusive boundary and an
// inclusive tip, oldest first. [Repo.Tags] and [Repo.Ancestry] supply the
// inputs for tag resolution, and [Repo.FormatPatch] renders a single commit
// as an mbox-style patch that git am can apply.
//
// Every failure reported by git is returned as a [*RepositoryError], which
// matches [ErrRepository] under errors.Is.
package gitctx
