package output

import (
	"time"

	"github.com/dshills/gitdump/internal/dump"
	"github.com/dshills/gitdump/internal/gitctx"
)

// Report is the summary of one dump run.
type Report struct {
	Tool    string       `json:"tool"`
	Version string       `json:"version"`
	Repo    RepoInfo     `json:"repo"`
	Output  OutputInfo   `json:"output"`
	Cursor  CursorInfo   `json:"cursor"`
	Summary Summary      `json:"summary"`
	Patches []dump.Patch `json:"patches"`
	Timing  Timing       `json:"timing"`
}

// RepoInfo identifies the dumped repository.
type RepoInfo struct {
	Root   string `json:"root"`
	Branch string `json:"branch,omitempty"`
	Tip    string `json:"tip"`
}

// OutputInfo describes where and how patches were written.
type OutputInfo struct {
	Dir      string `json:"dir"`
	Selector string `json:"selector"`
	Flat     bool   `json:"flat"`
	Glob     string `json:"glob,omitempty"`
}

// CursorInfo holds the cursor before and after the run.
type CursorInfo struct {
	Previous string `json:"previous,omitempty"`
	Current  string `json:"current"`
	Advanced bool   `json:"advanced"`
}

// Summary counts what the run did.
type Summary struct {
	Enumerated int            `json:"enumerated"`
	Written    int            `json:"written"`
	Skipped    int            `json:"skipped"`
	Filtered   int            `json:"filtered"`
	Bytes      int64          `json:"bytes"`
	Dirs       map[string]int `json:"dirs"`
}

// Timing records how long the run took.
type Timing struct {
	TotalMs int64 `json:"totalMs"`
}

// RunInfo carries the run context that is not part of dump.Result.
type RunInfo struct {
	Version  string
	Meta     gitctx.RepoMeta
	OutDir   string
	Selector string
	Flat     bool
	Glob     string
	Elapsed  time.Duration
}

// NewReport builds a Report from a finished run.
func NewReport(info RunInfo, res dump.Result) *Report {
	patches := res.Patches
	if patches == nil {
		patches = []dump.Patch{}
	}
	return &Report{
		Tool:    "git-dump-commit",
		Version: info.Version,
		Repo: RepoInfo{
			Root:   info.Meta.Root,
			Branch: info.Meta.Branch,
			Tip:    res.Tip,
		},
		Output: OutputInfo{
			Dir:      info.OutDir,
			Selector: info.Selector,
			Flat:     info.Flat,
			Glob:     info.Glob,
		},
		Cursor: CursorInfo{
			Previous: res.Previous,
			Current:  res.Cursor,
			Advanced: res.Advanced(),
		},
		Summary: Summary{
			Enumerated: res.Enumerated,
			Written:    len(res.Patches),
			Skipped:    res.Skipped,
			Filtered:   res.Filtered,
			Bytes:      res.Bytes(),
			Dirs:       res.DirCounts(),
		},
		Patches: patches,
		Timing:  Timing{TotalMs: info.Elapsed.Milliseconds()},
	}
}
