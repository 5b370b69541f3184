package gui

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Entry is one line of a file listing.
type Entry struct {
	Name string
	Dir  bool
}

// FileSelector browses the file system one directory at a time. Picking a
// file ends the selection.
type FileSelector struct {
	// Filter, when set, hides files it rejects. Directories always show.
	Filter func(name string) bool

	active    bool
	dir       string
	entries   []Entry
	cursor    int
	selection string
}

// Start opens the selector at dir.
func (s *FileSelector) Start(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("start selector: %w", err)
	}
	if err := s.list(abs); err != nil {
		return err
	}
	s.active = true
	s.selection = ""
	return nil
}

// Cancel closes the selector without a selection.
func (s *FileSelector) Cancel() { s.active = false }

// IsActive reports whether the selector is open.
func (s *FileSelector) IsActive() bool { return s.active }

// Dir returns the directory being listed.
func (s *FileSelector) Dir() string { return s.dir }

// Entries returns the current listing: "..", then directories, then files.
func (s *FileSelector) Entries() []Entry { return s.entries }

// Cursor returns the highlighted entry index.
func (s *FileSelector) Cursor() int { return s.cursor }

// Selection returns the last picked file.
func (s *FileSelector) Selection() string { return s.selection }

// Move shifts the cursor by delta, stopping at either end.
func (s *FileSelector) Move(delta int) {
	if len(s.entries) == 0 {
		return
	}
	s.cursor = min(max(s.cursor+delta, 0), len(s.entries)-1)
}

// Enter opens the highlighted directory, or picks the highlighted file and
// returns its path.
func (s *FileSelector) Enter() (string, bool, error) {
	if !s.active || len(s.entries) == 0 {
		return "", false, nil
	}
	e := s.entries[s.cursor]
	path := filepath.Join(s.dir, e.Name)
	if e.Dir {
		return "", false, s.list(filepath.Clean(path))
	}
	s.selection = path
	s.active = false
	return path, true, nil
}

func (s *FileSelector) list(dir string) error {
	des, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}

	var dirs, files []Entry
	for _, de := range des {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch {
		case de.IsDir():
			dirs = append(dirs, Entry{Name: name, Dir: true})
		case s.Filter == nil || s.Filter(name):
			files = append(files, Entry{Name: name})
		}
	}
	byName := func(a, b Entry) int { return strings.Compare(a.Name, b.Name) }
	slices.SortFunc(dirs, byName)
	slices.SortFunc(files, byName)

	entries := []Entry{}
	if parent := filepath.Dir(dir); parent != dir {
		entries = append(entries, Entry{Name: "..", Dir: true})
	}
	entries = append(entries, dirs...)
	entries = append(entries, files...)

	s.dir = dir
	s.entries = entries
	s.cursor = 0
	return nil
}

// ExtFilter accepts names ending in one of exts, ignoring case.
func ExtFilter(exts ...string) func(string) bool {
	return func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		return slices.Contains(exts, ext)
	}
}
