package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// CommitInfo holds a commit SHA, its parents and its subject line.
type CommitInfo struct {
	SHA     string
	Parents []string
	Subject string
}

// IsMerge reports whether the commit has more than one parent.
func (c CommitInfo) IsMerge() bool {
	return len(c.Parents) > 1
}

// TagRef binds a tag name to the commit it points at (peeled).
type TagRef struct {
	Name   string
	Commit string
}

// Repo runs git commands inside a single repository.
type Repo struct {
	dir    string
	root   string
	logger *slog.Logger
}

// Open checks that dir is inside a git work tree and returns a Repo rooted at
// its top level.
func Open(ctx context.Context, dir string, logger *slog.Logger) (*Repo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repo{dir: dir, logger: logger}
	root, err := r.output(ctx, "", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	r.root = strings.TrimSpace(root)
	r.dir = r.root
	return r, nil
}

// Root returns the top-level directory of the work tree.
func (r *Repo) Root() string {
	return r.root
}

// Meta collects repository metadata. A repository without commits reports an
// empty Head.
func (r *Repo) Meta(ctx context.Context) RepoMeta {
	meta := RepoMeta{Root: r.root}
	if head, err := r.output(ctx, "", "rev-parse", "--verify", "--quiet", "HEAD^{commit}"); err == nil {
		meta.Head = strings.TrimSpace(head)
	}
	if branch, err := r.output(ctx, "", "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		meta.Branch = strings.TrimSpace(branch)
	}
	return meta
}

// Head resolves the commit at the tip of the current branch.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.output(ctx, "", "rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err != nil {
		var repoErr *RepositoryError
		if errors.As(err, &repoErr) && repoErr.Err != nil && exitCode(repoErr.Err) == 1 {
			repoErr.Err = ErrNoCommits
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// VerifyBoundary checks that boundary still names a commit and that it is an
// ancestor of tip. An empty boundary is always valid.
func (r *Repo) VerifyBoundary(ctx context.Context, boundary, tip string) error {
	if boundary == "" {
		return nil
	}
	if _, err := r.output(ctx, "", "cat-file", "-e", boundary+"^{commit}"); err != nil {
		var repoErr *RepositoryError
		if errors.As(err, &repoErr) {
			repoErr.Err = fmt.Errorf("%w: %s", ErrUnknownCommit, boundary)
		}
		return err
	}
	_, err := r.output(ctx, "", "merge-base", "--is-ancestor", boundary, tip)
	if err == nil {
		return nil
	}
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) && repoErr.Err != nil && exitCode(repoErr.Err) == 1 {
		repoErr.Err = fmt.Errorf("%w: %s is not reachable from %s", ErrNotAncestor, boundary, tip)
	}
	return err
}

// ListCommits returns the commits reachable from tip and not from boundary,
// oldest first in topological order. An empty boundary lists the whole
// history. With noMerges set, merge commits are left out.
func (r *Repo) ListCommits(ctx context.Context, boundary, tip string, noMerges bool) ([]CommitInfo, error) {
	// Output format: "commit <sha> <parent>...\n\x1f<subject>\n" per commit.
	// The marker keeps the subject line present when the message is empty.
	args := []string{"rev-list", "--reverse", "--topo-order", "--parents", "--format=" + subjectFormat}
	if noMerges {
		args = append(args, "--no-merges")
	}
	args = append(args, tip)
	if boundary != "" {
		args = append(args, "^"+boundary)
	}
	args = append(args, "--")

	out, err := r.output(ctx, "", args...)
	if err != nil {
		return nil, err
	}
	return parseCommitList(out), nil
}

const (
	subjectMarker = "\x1f"
	subjectFormat = "%x1f%s"
)

func parseCommitList(out string) []CommitInfo {
	out = strings.TrimRight(out, "\n")
	if strings.TrimSpace(out) == "" {
		return nil
	}

	lines := strings.Split(out, "\n")
	var commits []CommitInfo
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "commit ") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "commit "))
		if len(fields) == 0 {
			continue
		}
		var subject string
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], subjectMarker) {
			subject = strings.TrimSpace(strings.TrimPrefix(lines[i+1], subjectMarker))
			i++
		}
		commits = append(commits, CommitInfo{
			SHA:     fields[0],
			Parents: fields[1:],
			Subject: subject,
		})
	}
	return commits
}

// Tags lists every tag that (after peeling) points at a commit, sorted by name.
func (r *Repo) Tags(ctx context.Context) ([]TagRef, error) {
	out, err := r.output(ctx, "", "for-each-ref",
		"--format=%(refname:strip=2)%09%(objecttype)%09%(objectname)%09%(*objecttype)%09%(*objectname)",
		"refs/tags")
	if err != nil {
		return nil, err
	}
	refs := parseTagRefs(out)
	r.logger.Debug("listed tags", slog.Int("count", len(refs)))
	return refs, nil
}

func parseTagRefs(out string) []TagRef {
	var refs []TagRef
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		name, kind, sha := fields[0], fields[1], fields[2]
		if len(fields) >= 5 && fields[3] != "" {
			kind, sha = fields[3], fields[4]
		}
		if kind != "commit" {
			continue
		}
		refs = append(refs, TagRef{Name: name, Commit: sha})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

// Ancestry returns the parent list of every commit reachable from tips and
// not reachable from boundary. Revisions are fed on stdin so repositories with
// thousands of tags do not hit argument length limits.
func (r *Repo) Ancestry(ctx context.Context, tips []string, boundary string) (map[string][]string, error) {
	graph := make(map[string][]string)
	if len(tips) == 0 {
		return graph, nil
	}

	var stdin strings.Builder
	for _, tip := range tips {
		stdin.WriteString(tip)
		stdin.WriteString("\n")
	}
	if boundary != "" {
		stdin.WriteString("^" + boundary + "\n")
	}

	out, err := r.output(ctx, stdin.String(), "rev-list", "--parents", "--stdin")
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		graph[fields[0]] = fields[1:]
	}
	r.logger.Debug("loaded ancestry", slog.Int("commits", len(graph)))
	return graph, nil
}

// FormatPatch renders one commit as an mbox-style patch: From line, author,
// date, subject, message body, diffstat and a unified diff. Merge commits are
// diffed against their first parent so the result stays reapplicable.
func (r *Repo) FormatPatch(ctx context.Context, sha string) ([]byte, error) {
	out, err := r.output(ctx, "", "show",
		"--pretty=email",
		"--patch-with-stat",
		"--binary",
		"--no-color",
		"--no-notes",
		"--no-ext-diff",
		"-m", "--first-parent",
		sha, "--")
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// GitPath resolves a path inside the repository's git directory, honouring
// core.hooksPath and linked worktrees.
func (r *Repo) GitPath(ctx context.Context, name string) (string, error) {
	out, err := r.output(ctx, "", "rev-parse", "--git-path", name)
	if err != nil {
		return "", err
	}
	path := strings.TrimSpace(out)
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}
	return path, nil
}

func (r *Repo) output(ctx context.Context, stdin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), newRepositoryError(args, stderr.String(), err)
	}
	return stdout.String(), nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
