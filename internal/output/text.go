package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	units "github.com/docker/go-units"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("Dumped %s", report.Repo.Root)
	if report.Repo.Branch != "" {
		ew.printf(" (branch: %s)", report.Repo.Branch)
	}
	ew.println("")
	ew.printf("Output: %s", report.Output.Dir)
	if report.Output.Flat {
		ew.printf(" [flat]")
	}
	if report.Output.Glob != "" {
		ew.printf(" [tags: %s]", report.Output.Glob)
	}
	ew.println("")
	ew.println(strings.Repeat("-", 60))

	if !report.Cursor.Advanced {
		if report.Summary.Filtered > 0 {
			ew.printf("Waiting for a tag: %d commits after %s\n", report.Summary.Filtered, cursorLabel(report.Cursor.Current))
			return ew.err
		}
		ew.printf("Already up to date at %s\n", shortSHA(report.Cursor.Current))
		return ew.err
	}

	ew.printf("Cursor: %s -> %s\n", cursorLabel(report.Cursor.Previous), shortSHA(report.Cursor.Current))
	ew.printf("Commits: %d new", report.Summary.Enumerated)
	if report.Summary.Filtered > 0 {
		ew.printf(", %d filtered", report.Summary.Filtered)
	}
	if report.Summary.Skipped > 0 {
		ew.printf(", %d already dumped", report.Summary.Skipped)
	}
	ew.println("")
	ew.printf("Patches: %d written (%s)\n", report.Summary.Written, units.HumanSize(float64(report.Summary.Bytes)))

	if len(report.Summary.Dirs) > 0 {
		ew.println("")
		dirs := make([]string, 0, len(report.Summary.Dirs))
		for d := range report.Summary.Dirs {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		for _, d := range dirs {
			ew.printf("  %-30s %d\n", dirLabel(d), report.Summary.Dirs[d])
		}
	}

	ew.printf("\nCompleted in %dms\n", report.Timing.TotalMs)
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func dirLabel(dir string) string {
	if dir == "" {
		return "."
	}
	return dir + "/"
}

func cursorLabel(sha string) string {
	if sha == "" {
		return "(start)"
	}
	return shortSHA(sha)
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
