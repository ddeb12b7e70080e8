package cursor

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/dshills/gitdump/internal/fsio"
)

// StateDir is the directory below the output root that holds cursor entries.
const StateDir = ".gitdump"

// Entry represents a persisted cursor.
type Entry struct {
	Selector  string    `json:"selector"`
	Commit    string    `json:"commit"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store loads and saves the cursor of one selector.
type Store struct {
	fs       afero.Fs
	dir      string
	selector string
}

// Selector identifies a run by layout and tag glob.
func Selector(flat bool, glob string) string {
	layout := "tags"
	if flat {
		layout = "all"
	}
	return layout + ":" + glob
}

// New creates a Store for selector below the output root.
func New(fs afero.Fs, root, selector string) *Store {
	return &Store{
		fs:       fs,
		dir:      filepath.Join(root, StateDir),
		selector: selector,
	}
}

// Selector returns the selector this store is bound to.
func (s *Store) Selector() string {
	return s.selector
}

// Load returns the saved commit, or ok=false when there is none. A corrupt
// entry is an error rather than a silent restart from the beginning.
func (s *Store) Load() (string, bool, error) {
	path := s.entryPath()
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fsio.Wrap("read", path, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false, fsio.Wrap("parse", path, err)
	}
	if entry.Commit == "" {
		return "", false, nil
	}
	return entry.Commit, true, nil
}

// Save records commit as the cursor.
func (s *Store) Save(commit string) error {
	entry := Entry{
		Selector:  s.selector,
		Commit:    commit,
		UpdatedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cursor entry: %w", err)
	}
	return fsio.WriteAtomic(s.fs, s.entryPath(), append(data, '\n'), 0o644, false)
}

// Reset removes the cursor so the next run starts from the repository root.
func (s *Store) Reset() (bool, error) {
	path := s.entryPath()
	if err := s.fs.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fsio.Wrap("remove", path, err)
	}
	return true, nil
}

// List returns every cursor entry below root, sorted by selector.
func List(fs afero.Fs, root string) ([]Entry, error) {
	dir := filepath.Join(root, StateDir)
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fsio.Wrap("readdir", dir, err)
	}
	var entries []Entry
	for _, info := range infos {
		if info.IsDir() || filepath.Ext(info.Name()) != ".json" {
			continue
		}
		data, err := afero.ReadFile(fs, filepath.Join(dir, info.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Selector < entries[j].Selector })
	return entries, nil
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

func (s *Store) entryPath() string {
	return filepath.Join(s.dir, HashKey(s.selector)+".json")
}
