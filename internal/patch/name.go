package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMaxNameLength matches git format-patch's default file name limit.
const DefaultMaxNameLength = 64

const (
	extension    = ".patch"
	emptySlug    = "untitled"
	minSeqDigits = 4
)

var (
	patchPrefix = regexp.MustCompile(`^\[PATCH[^]]*\]`)
	unsafeChars = regexp.MustCompile(`[^-a-zA-Z0-9._]`)
	ellipsis    = regexp.MustCompile(`\.\.\.+`)
	dashRuns    = regexp.MustCompile(`-{2,}`)
	seqFileName = regexp.MustCompile(`^([0-9]+)-.*\.patch$`)
)

// Slug turns a commit subject into a file-name-safe fragment.
func Slug(subject string) string {
	s := strings.TrimSpace(subject)
	s = patchPrefix.ReplaceAllString(s, "")
	s = unsafeChars.ReplaceAllString(s, "-")
	s = ellipsis.ReplaceAllString(s, ".")
	s = dashRuns.ReplaceAllString(s, "-")
	s = trimSlug(s)
	if s == "" {
		return emptySlug
	}
	return s
}

func trimSlug(s string) string {
	for {
		t := strings.Trim(s, "-")
		t = strings.TrimRight(t, ".")
		if t == s {
			return s
		}
		s = t
	}
}

// FileName builds the file name for sequence number seq. The slug is cut so
// the whole name fits in maxLen bytes; maxLen <= 0 disables the limit.
func FileName(seq int, slug string, maxLen int) string {
	prefix := fmt.Sprintf("%0*d-", minSeqDigits, seq)
	if maxLen > 0 {
		avail := maxLen - len(prefix) - len(extension)
		if avail < 1 {
			avail = 1
		}
		if len(slug) > avail {
			slug = trimSlug(slug[:avail])
		}
	}
	if slug == "" {
		slug = emptySlug
	}
	return prefix + slug + extension
}

// ParseSequence returns the sequence number encoded in a patch file name.
func ParseSequence(name string) (int, bool) {
	m := seqFileName.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextSequence returns the number following the highest sequence found among
// names, or 1 when none of them is a patch file.
func NextSequence(names []string) int {
	highest := 0
	for _, name := range names {
		if n, ok := ParseSequence(name); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}
