package fsio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrIO is the sentinel matched by every IOError.
var ErrIO = errors.New("i/o error")

// IOError records a failed filesystem operation and the path it touched.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// Wrap returns nil for a nil err, otherwise an *IOError.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// WriteAtomic writes data to a temporary file next to path and renames it into
// place, so readers never observe a partially written file. When noClobber is
// set an existing path is left untouched and os.ErrExist is reported.
func WriteAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode, noClobber bool) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return Wrap("mkdir", dir, err)
	}
	if noClobber {
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return Wrap("stat", path, err)
		}
		if exists {
			return Wrap("create", path, os.ErrExist)
		}
	}

	tmp, err := afero.TempFile(fs, dir, ".tmp-*")
	if err != nil {
		return Wrap("create", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return Wrap("write", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return Wrap("close", tmpName, err)
	}
	if err := fs.Chmod(tmpName, perm); err != nil {
		fs.Remove(tmpName)
		return Wrap("chmod", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return Wrap("rename", path, err)
	}
	return nil
}
