package dump

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dshills/gitdump/internal/gitctx"
	"github.com/dshills/gitdump/internal/tags"
)

// DefaultUnreleasedDir is the directory for commits no tag contains yet.
const DefaultUnreleasedDir = "unreleased"

// Source is the repository side of a dump. *gitctx.Repo implements it.
type Source interface {
	Head(ctx context.Context) (string, error)
	VerifyBoundary(ctx context.Context, boundary, tip string) error
	ListCommits(ctx context.Context, boundary, tip string, noMerges bool) ([]gitctx.CommitInfo, error)
	Tags(ctx context.Context) ([]gitctx.TagRef, error)
	Ancestry(ctx context.Context, tips []string, boundary string) (map[string][]string, error)
	FormatPatch(ctx context.Context, sha string) ([]byte, error)
}

// Sink stores rendered patches. *patch.Writer implements it.
type Sink interface {
	Has(dir, sha string) (bool, error)
	Write(dir, sha, subject string, content []byte) (string, error)
}

// CursorStore persists the cursor between runs. *cursor.Store implements it.
type CursorStore interface {
	Load() (string, bool, error)
	Save(commit string) error
}

// Options controls commit selection and placement.
type Options struct {
	// Flat puts every patch directly in the output root.
	Flat bool
	// Glob keeps only commits whose tag matches; unreleased commits are dropped.
	Glob            string
	NoMerges        bool
	NestPrereleases bool
	UnreleasedDir   string
	Logger          *slog.Logger
}

// State is the cursor a run starts from. An empty Cursor means the whole
// history.
type State struct {
	Cursor string
}

// Patch describes one file written by a run.
type Patch struct {
	Commit  string `json:"commit"`
	Subject string `json:"subject"`
	Tag     string `json:"tag,omitempty"`
	Dir     string `json:"dir"`
	Path    string `json:"path"`
	Bytes   int    `json:"bytes"`
}

// Result summarizes a run. Cursor is the value to persist; it equals Previous
// when nothing new was processed. A filtered run leaves Cursor on the newest
// tagged commit it enumerated, short of Tip while untagged commits remain.
type Result struct {
	Previous   string  `json:"previous,omitempty"`
	Tip        string  `json:"tip"`
	Cursor     string  `json:"cursor"`
	Enumerated int     `json:"enumerated"`
	Filtered   int     `json:"filtered"`
	Skipped    int     `json:"skipped"`
	Patches    []Patch `json:"patches"`
}

// Advanced reports whether the cursor moved.
func (r Result) Advanced() bool {
	return r.Cursor != r.Previous
}

// Bytes returns the total size of the patches written.
func (r Result) Bytes() int64 {
	var n int64
	for _, p := range r.Patches {
		n += int64(p.Bytes)
	}
	return n
}

// DirCounts returns the number of patches written per directory.
func (r Result) DirCounts() map[string]int {
	counts := make(map[string]int)
	for _, p := range r.Patches {
		counts[p.Dir]++
	}
	return counts
}

// Dirs returns the directories written to, sorted.
func (r Result) Dirs() []string {
	counts := r.DirCounts()
	dirs := make([]string, 0, len(counts))
	for d := range counts {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

type placement struct {
	commit gitctx.CommitInfo
	tag    string
	dir    string
}

// Run dumps the commits after state.Cursor up to the current tip.
func Run(ctx context.Context, src Source, sink Sink, opts Options, state State) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	res := Result{Previous: state.Cursor, Cursor: state.Cursor}

	tip, err := src.Head(ctx)
	if err != nil {
		return res, fmt.Errorf("resolving tip: %w", err)
	}
	res.Tip = tip
	if tip == state.Cursor {
		logger.Debug("already up to date", slog.String("tip", tip))
		return res, nil
	}

	if err := src.VerifyBoundary(ctx, state.Cursor, tip); err != nil {
		return res, fmt.Errorf("cursor %s is no longer usable (history rewritten?): %w", state.Cursor, err)
	}

	commits, err := src.ListCommits(ctx, state.Cursor, tip, opts.NoMerges)
	if err != nil {
		return res, fmt.Errorf("listing commits: %w", err)
	}
	res.Enumerated = len(commits)
	logger.Debug("enumerated commits",
		slog.String("from", state.Cursor),
		slog.String("to", tip),
		slog.Int("count", len(commits)),
	)

	placements, filtered, lastTagged, err := place(ctx, src, commits, opts, state.Cursor, logger)
	if err != nil {
		return res, err
	}
	res.Filtered = filtered

	// A filtered run stops at the newest tagged commit so untagged commits
	// are enumerated again once a tag reaches them.
	next := tip
	if opts.Glob != "" {
		next = state.Cursor
		if lastTagged != "" {
			next = lastTagged
		}
	}

	var patches []Patch
	skipped := 0
	for _, p := range placements {
		sha := p.commit.SHA
		has, err := sink.Has(p.dir, sha)
		if err != nil {
			return res, err
		}
		if has {
			logger.Debug("patch already present", slog.String("commit", sha), slog.String("dir", p.dir))
			skipped++
			continue
		}

		content, err := src.FormatPatch(ctx, sha)
		if err != nil {
			return res, fmt.Errorf("rendering %s: %w", sha, err)
		}
		path, err := sink.Write(p.dir, sha, p.commit.Subject, content)
		if err != nil {
			return res, err
		}
		logger.Info("dumped commit", slog.String("commit", shortSHA(sha)), slog.String("file", path))
		patches = append(patches, Patch{
			Commit:  sha,
			Subject: p.commit.Subject,
			Tag:     p.tag,
			Dir:     p.dir,
			Path:    path,
			Bytes:   len(content),
		})
	}

	res.Patches = patches
	res.Skipped = skipped
	res.Cursor = next
	return res, nil
}

// Incremental loads the cursor from store, runs the dump and saves the new
// cursor only when the run succeeded and the cursor moved.
func Incremental(ctx context.Context, src Source, sink Sink, store CursorStore, opts Options) (Result, error) {
	prev, _, err := store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("loading cursor: %w", err)
	}
	res, err := Run(ctx, src, sink, opts, State{Cursor: prev})
	if err != nil {
		return res, err
	}
	if res.Advanced() {
		if err := store.Save(res.Cursor); err != nil {
			return res, fmt.Errorf("saving cursor: %w", err)
		}
	}
	return res, nil
}

// place decides the directory of every commit and drops those the glob
// excludes. It also returns the last tagged commit in enumeration order. Tag
// resolution is skipped entirely for an unfiltered flat dump.
func place(ctx context.Context, src Source, commits []gitctx.CommitInfo, opts Options, boundary string, logger *slog.Logger) ([]placement, int, string, error) {
	if len(commits) == 0 {
		return nil, 0, "", nil
	}
	if opts.Flat && opts.Glob == "" {
		out := make([]placement, len(commits))
		for i, c := range commits {
			out[i] = placement{commit: c}
		}
		return out, 0, "", nil
	}

	labels, err := resolveLabels(ctx, src, boundary, logger)
	if err != nil {
		return nil, 0, "", err
	}

	unreleased := opts.UnreleasedDir
	if unreleased == "" {
		unreleased = DefaultUnreleasedDir
	}

	var out []placement
	filtered := 0
	lastTagged := ""
	for _, c := range commits {
		tag := labels[c.SHA].Tag
		if tag != "" {
			lastTagged = c.SHA
		}
		if !tags.Match(opts.Glob, tag) {
			filtered++
			continue
		}
		dir := ""
		if !opts.Flat {
			dir = tags.Dir(tag, unreleased, opts.NestPrereleases)
		}
		out = append(out, placement{commit: c, tag: tag, dir: dir})
	}
	if filtered > 0 {
		logger.Debug("filtered commits by tag pattern",
			slog.String("pattern", opts.Glob),
			slog.Int("excluded", filtered),
		)
	}
	return out, filtered, lastTagged, nil
}

func resolveLabels(ctx context.Context, src Source, boundary string, logger *slog.Logger) (map[string]tags.Label, error) {
	refs, err := src.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	if len(refs) == 0 {
		return map[string]tags.Label{}, nil
	}

	tips := make([]string, 0, len(refs))
	seen := make(map[string]bool)
	for _, ref := range refs {
		if !seen[ref.Commit] {
			seen[ref.Commit] = true
			tips = append(tips, ref.Commit)
		}
	}
	graph, err := src.Ancestry(ctx, tips, boundary)
	if err != nil {
		return nil, fmt.Errorf("loading tag ancestry: %w", err)
	}

	labels := tags.Resolve(graph, refs)
	logger.Debug("resolved tags",
		slog.Int("tags", len(refs)),
		slog.Int("tagged_commits", len(labels)),
		slog.Int("groups", len(tags.Names(labels))),
	)
	return labels, nil
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
