package dump

import (
	"context"
	"fmt"

	"github.com/dshills/gitdump/internal/gitctx"
)

// fakeRepo is an in-memory commit graph standing in for git.
type fakeRepo struct {
	order    []string
	parents  map[string][]string
	subjects map[string]string
	tagRefs  []gitctx.TagRef
	head     string

	failPatch      string
	patchCalls     int
	tagCalls       int
	listedNoMerges bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		parents:  make(map[string][]string),
		subjects: make(map[string]string),
	}
}

// commit appends a commit on top of head (or with explicit parents).
func (f *fakeRepo) commit(sha, subject string, parents ...string) {
	if len(parents) == 0 && f.head != "" {
		parents = []string{f.head}
	}
	f.order = append(f.order, sha)
	f.parents[sha] = parents
	f.subjects[sha] = subject
	f.head = sha
}

func (f *fakeRepo) tag(name, sha string) {
	f.tagRefs = append(f.tagRefs, gitctx.TagRef{Name: name, Commit: sha})
}

func (f *fakeRepo) reachable(tips ...string) map[string]bool {
	seen := make(map[string]bool)
	stack := append([]string(nil), tips...)
	for len(stack) > 0 {
		sha := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if sha == "" || seen[sha] {
			continue
		}
		seen[sha] = true
		stack = append(stack, f.parents[sha]...)
	}
	return seen
}

func (f *fakeRepo) Head(ctx context.Context) (string, error) {
	if f.head == "" {
		return "", &gitctx.RepositoryError{Op: "rev-parse", Err: gitctx.ErrNoCommits}
	}
	return f.head, nil
}

func (f *fakeRepo) VerifyBoundary(ctx context.Context, boundary, tip string) error {
	if boundary == "" {
		return nil
	}
	if _, ok := f.parents[boundary]; !ok {
		return &gitctx.RepositoryError{Op: "cat-file", Err: gitctx.ErrUnknownCommit}
	}
	if !f.reachable(tip)[boundary] {
		return &gitctx.RepositoryError{Op: "merge-base", Err: gitctx.ErrNotAncestor}
	}
	return nil
}

func (f *fakeRepo) ListCommits(ctx context.Context, boundary, tip string, noMerges bool) ([]gitctx.CommitInfo, error) {
	f.listedNoMerges = noMerges
	include := f.reachable(tip)
	exclude := f.reachable(boundary)
	var out []gitctx.CommitInfo
	for _, sha := range f.order {
		if !include[sha] || exclude[sha] {
			continue
		}
		c := gitctx.CommitInfo{SHA: sha, Parents: f.parents[sha], Subject: f.subjects[sha]}
		if noMerges && c.IsMerge() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) Tags(ctx context.Context) ([]gitctx.TagRef, error) {
	f.tagCalls++
	return f.tagRefs, nil
}

func (f *fakeRepo) Ancestry(ctx context.Context, tips []string, boundary string) (map[string][]string, error) {
	include := f.reachable(tips...)
	exclude := f.reachable(boundary)
	graph := make(map[string][]string)
	for sha := range include {
		if !exclude[sha] {
			graph[sha] = f.parents[sha]
		}
	}
	return graph, nil
}

func (f *fakeRepo) FormatPatch(ctx context.Context, sha string) ([]byte, error) {
	f.patchCalls++
	if sha == f.failPatch {
		return nil, &gitctx.RepositoryError{Op: "show", Stderr: "fatal: bad object " + sha}
	}
	return []byte(fmt.Sprintf("From %s Mon Sep 17 00:00:00 2001\nSubject: [PATCH] %s\n\n---\n", sha, f.subjects[sha])), nil
}
