// Package scan diffs the on-disk music directory against the file names
// the catalog already tracks.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the audio file extensions considered part of the
// library unless the configuration adds more.
var DefaultExtensions = []string{
	".mp3",
	".wav",
	".m4a",
}

// Scanner lists the music directory and computes set differences against
// the tracked file set. The directory is flat; the library keeps every
// file in one folder, named after artist and title.
type Scanner struct {
	dir        string
	extensions map[string]bool
}

// New creates a Scanner for the given music directory. Additional
// extensions extend the default allow-list; matching is
// case-insensitive.
func New(dir string, additionalExts []string) *Scanner {
	extMap := make(map[string]bool)
	for _, ext := range DefaultExtensions {
		extMap[strings.ToLower(ext)] = true
	}
	for _, ext := range additionalExts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[strings.ToLower(ext)] = true
	}
	return &Scanner{dir: dir, extensions: extMap}
}

// list returns the allow-listed file names in the music directory,
// stripped of the directory prefix. An unreadable directory is fatal and
// surfaced unmodified.
func (s *Scanner) list() (map[string]struct{}, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory %s: %w", s.dir, err)
	}

	files := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if s.extensions[strings.ToLower(filepath.Ext(name))] {
			files[name] = struct{}{}
		}
	}
	return files, nil
}

// Untracked returns the files on disk that the catalog does not know
// about yet, sorted.
func (s *Scanner) Untracked(known map[string]struct{}) ([]string, error) {
	onDisk, err := s.list()
	if err != nil {
		return nil, err
	}
	var out []string
	for name := range onDisk {
		if _, ok := known[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Missing returns the files the catalog tracks that are no longer on
// disk, sorted. These are candidates for a remove.
func (s *Scanner) Missing(known map[string]struct{}) ([]string, error) {
	onDisk, err := s.list()
	if err != nil {
		return nil, err
	}
	var out []string
	for name := range known {
		if _, ok := onDisk[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}
