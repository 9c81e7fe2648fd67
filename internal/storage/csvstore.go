package storage

import (
	"strings"
)

// headerMarkers are column-name substrings that identify a header line.
// Historical headers vary in column order and naming, so this is a loose
// membership check, not a strict format check.
var headerMarkers = []string{
	"start_date",
	"end_time",
	"duration_minutes",
	"project",
	"notes",
	"mood",
}

// CSVStore exposes byte-level access to year partition files, managing the
// header line so callers only deal in row content.
type CSVStore struct {
	files   *FileAccess
	baseDir string
}

// NewCSVStore creates a store over baseDir using the given file access layer.
func NewCSVStore(files *FileAccess, baseDir string) *CSVStore {
	return &CSVStore{files: files, baseDir: baseDir}
}

// BaseDir returns the directory holding the partition files.
func (s *CSVStore) BaseDir() string {
	return s.baseDir
}

// ReadYear returns the full content of a year's partition file. A missing
// file reads as empty content: no data for that partition.
func (s *CSVStore) ReadYear(year int) (string, error) {
	path := PathForYear(s.baseDir, year)
	if !s.files.Exists(path) {
		return "", nil
	}
	return s.files.Read(path)
}

// WriteYear overwrites a year's partition file with the given content,
// header included. Used after any in-memory rewrite of that year's records.
func (s *CSVStore) WriteYear(year int, content string) error {
	return s.files.Write(PathForYear(s.baseDir, year), content)
}

// AppendYear appends row content to a year's partition file. When the file
// is missing or its first line does not look like a header, the header is
// written first so the file always starts with one.
func (s *CSVStore) AppendYear(year int, header, rows string) error {
	path := PathForYear(s.baseDir, year)
	if !s.files.Exists(path) {
		return s.files.Write(path, header+rows)
	}

	content, err := s.files.Read(path)
	if err != nil {
		return err
	}
	if !HasHeader(content) {
		return s.files.Write(path, header+content+rows)
	}
	return s.files.Append(path, rows)
}

// HasHeader reports whether the first non-empty line of content looks like a
// session file header. Matching is case-insensitive on known column names.
func HasHeader(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, marker := range headerMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
		return false
	}
	return false
}
