package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"
)

// FileAccess serializes filesystem operations per path. All mutations against
// a given path are totally ordered; writes are atomic (temp file + rename) so
// a concurrent reader sees either the old content or the new content, never a
// partial write. Single process only; there is no cross-process locking.
type FileAccess struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileAccess creates an empty file access layer.
func NewFileAccess() *FileAccess {
	return &FileAccess{locks: make(map[string]*sync.Mutex)}
}

// pathLock returns the mutex guarding a single path, creating it on first use.
func (fa *FileAccess) pathLock(path string) *sync.Mutex {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	lock, ok := fa.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		fa.locks[path] = lock
	}
	return lock
}

// Read returns the file content as a string. Invalid UTF-8 is replaced rather
// than failing outright: one bad byte must not make a whole year unreadable.
func (fa *FileAccess) Read(path string) (string, error) {
	lock := fa.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(b) {
		return strings.ToValidUTF8(string(b), "�"), nil
	}
	return string(b), nil
}

// Write replaces the file content atomically. The new content is staged in a
// temporary file in the same directory and renamed over the target, so the
// old content stays visible until the rename commits.
func (fa *FileAccess) Write(path, content string) error {
	lock := fa.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("atomic rename %s: %w", path, err)
	}
	return nil
}

// Append opens the file for appending and writes the content at end-of-file.
// It never reads or rewrites the existing content.
func (fa *FileAccess) Append(path, content string) error {
	lock := fa.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("append to %s: %w", path, err)
	}
	return f.Close()
}

// Remove deletes the file. Removing an absent file is not an error.
func (fa *FileAccess) Remove(path string) error {
	lock := fa.pathLock(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// Exists reports whether the path exists.
func (fa *FileAccess) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Size returns the file size in bytes, or 0 for an absent file.
func (fa *FileAccess) Size(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// EnsureDir creates the directory (and parents) if missing.
func (fa *FileAccess) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// IsEmptyDir reports whether the directory exists and contains no entries.
func (fa *FileAccess) IsEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	return len(entries) == 0
}
