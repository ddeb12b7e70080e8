package tags

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/gitdump/internal/gitctx"
)

// Graph maps a commit SHA to its parent SHAs.
type Graph map[string][]string

// Label is the tag a commit resolves to and how many parent edges separate
// the tagged commit from it.
type Label struct {
	Tag      string
	Distance int
}

func (l Label) less(o Label) bool {
	if l.Distance != o.Distance {
		return l.Distance < o.Distance
	}
	return l.Tag < o.Tag
}

// Resolve labels every commit reachable from a tag in graph. Tags whose
// commit is not part of graph are ignored.
func Resolve(graph Graph, refs []gitctx.TagRef) map[string]Label {
	labels := make(map[string]Label)

	for _, ref := range refs {
		if _, ok := graph[ref.Commit]; !ok {
			continue
		}
		l := Label{Tag: ref.Name}
		if cur, ok := labels[ref.Commit]; !ok || l.less(cur) {
			labels[ref.Commit] = l
		}
	}

	frontier := make([]string, 0, len(labels))
	for sha := range labels {
		frontier = append(frontier, sha)
	}

	// Every commit in a frontier has the same distance, so the best label for
	// a parent is the smallest tag name among its children in that frontier.
	for dist := 1; len(frontier) > 0; dist++ {
		candidates := make(map[string]string)
		for _, sha := range frontier {
			tag := labels[sha].Tag
			for _, parent := range graph[sha] {
				if _, done := labels[parent]; done {
					continue
				}
				if cur, ok := candidates[parent]; !ok || tag < cur {
					candidates[parent] = tag
				}
			}
		}
		frontier = frontier[:0]
		for sha, tag := range candidates {
			labels[sha] = Label{Tag: tag, Distance: dist}
			frontier = append(frontier, sha)
		}
	}
	return labels
}

// ValidateGlob reports a malformed tag glob.
func ValidateGlob(glob string) error {
	if _, err := path.Match(glob, ""); err != nil {
		return fmt.Errorf("invalid tag pattern %q: %w", glob, err)
	}
	return nil
}

// Match reports whether tag satisfies glob. An empty glob matches every tag,
// including the empty tag of unreleased commits; a non-empty glob never
// matches an unreleased commit.
func Match(glob, tag string) bool {
	if glob == "" {
		return true
	}
	if tag == "" {
		return false
	}
	ok, err := path.Match(glob, tag)
	return err == nil && ok
}

// Dir returns the output directory, relative to the output root, for commits
// attributed to tag. An empty tag maps to unreleased. With nest set the tag is
// placed below its base version, the part before the first '-', so v3.0-rc1
// lands in v3.0/v3.0-rc1.
func Dir(tag, unreleased string, nest bool) string {
	if tag == "" {
		return unreleased
	}
	if nest {
		base, _, _ := strings.Cut(tag, "-")
		if base != "" {
			return filepath.Join(filepath.FromSlash(base), filepath.FromSlash(tag))
		}
	}
	return filepath.FromSlash(tag)
}

// Names returns the distinct tag names referenced by labels, sorted.
func Names(labels map[string]Label) []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range labels {
		if !seen[l.Tag] {
			seen[l.Tag] = true
			names = append(names, l.Tag)
		}
	}
	sort.Strings(names)
	return names
}
