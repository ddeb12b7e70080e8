// git-dump-commit writes the commits of a git repository as patch files,
// one directory per release tag.
//
// Each commit lands in the directory of the earliest tag that contains it;
// commits not tagged yet go to "unreleased". Re-running only dumps what was
// committed since the previous run.
//
// Usage:
//
//	git-dump-commit                    # dump into DUMP-COMMIT/<tag>/NNNN-subject.patch
//	git-dump-commit -a                 # one flat directory
//	git-dump-commit 'v2.*'             # only commits released under v2.x tags
//	git-dump-commit -o /tmp/patches -v # custom output directory, progress on stderr
//	git-dump-commit hook install       # dump after every commit
package main
