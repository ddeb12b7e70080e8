package patch

import (
	"bufio"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/dshills/gitdump/internal/fsio"
)

// Options controls how patch files are named.
type Options struct {
	MaxNameLength int
}

// Writer stores rendered patches below a root directory.
type Writer struct {
	fs     afero.Fs
	root   string
	opts   Options
	logger *slog.Logger
	dirs   map[string]*dirState
}

type dirState struct {
	next int
	// commit SHA -> file name
	files map[string]string
}

// NewWriter creates a Writer rooted at root on fs.
func NewWriter(fs afero.Fs, root string, opts Options, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		fs:     fs,
		root:   root,
		opts:   opts,
		logger: logger,
		dirs:   make(map[string]*dirState),
	}
}

// Has reports whether dir already holds a patch for commit sha.
func (w *Writer) Has(dir, sha string) (bool, error) {
	st, err := w.load(dir)
	if err != nil {
		return false, err
	}
	_, ok := st.files[sha]
	return ok, nil
}

// Write stores content as the next patch in dir and returns the file path
// relative to the root.
func (w *Writer) Write(dir, sha, subject string, content []byte) (string, error) {
	st, err := w.load(dir)
	if err != nil {
		return "", err
	}

	name := FileName(st.next, Slug(subject), w.opts.MaxNameLength)
	rel := filepath.Join(dir, name)
	if err := fsio.WriteAtomic(w.fs, filepath.Join(w.root, rel), content, 0o644, true); err != nil {
		return "", err
	}
	st.next++
	st.files[sha] = name

	w.logger.Debug("wrote patch",
		slog.String("commit", sha),
		slog.String("file", rel),
		slog.Int("bytes", len(content)),
	)
	return rel, nil
}

// load scans dir once, creating it when missing.
func (w *Writer) load(dir string) (*dirState, error) {
	if st, ok := w.dirs[dir]; ok {
		return st, nil
	}

	full := filepath.Join(w.root, dir)
	if err := w.fs.MkdirAll(full, 0o755); err != nil {
		return nil, fsio.Wrap("mkdir", full, err)
	}
	entries, err := afero.ReadDir(w.fs, full)
	if err != nil {
		return nil, fsio.Wrap("readdir", full, err)
	}

	st := &dirState{files: make(map[string]string)}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := ParseSequence(e.Name()); !ok {
			continue
		}
		names = append(names, e.Name())

		sha, err := w.headerCommit(filepath.Join(full, e.Name()))
		if err != nil {
			return nil, err
		}
		if sha != "" {
			st.files[sha] = e.Name()
		}
	}
	st.next = NextSequence(names)
	w.dirs[dir] = st

	w.logger.Debug("scanned patch directory",
		slog.String("dir", full),
		slog.Int("patches", len(names)),
		slog.Int("next", st.next),
	)
	return st, nil
}

func (w *Writer) headerCommit(path string) (string, error) {
	f, err := w.fs.Open(path)
	if err != nil {
		return "", fsio.Wrap("open", path, err)
	}
	defer f.Close()

	line, err := bufio.NewReader(io.LimitReader(f, 512)).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fsio.Wrap("read", path, err)
	}
	return CommitFromHeader(line), nil
}

// CommitFromHeader extracts the SHA from an mbox "From <sha> <date>" line.
func CommitFromHeader(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "From" {
		return ""
	}
	return fields[1]
}
