package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store abstracts whole-record blobs and append-only line logs so the
// repositories above it never touch the filesystem directly.
type Store interface {
	Read(name string) (string, error)
	Write(name string, content string) error
	AppendLine(logName string, line string) error
	ReadAllLines(logName string) ([]string, error)
}

// FileStore persists records as plain text files under a root directory.
type FileStore struct {
	root string
}

// NewFileStore builds a store rooted at dir. The directory itself is
// created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Read returns the full content of the named record, or ErrNotFound when
// the file is missing.
func (s *FileStore) Read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// Write replaces the named record with content, creating parent
// directories as needed.
func (s *FileStore) Write(name string, content string) error {
	path := filepath.Join(s.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// AppendLine adds a single line to the named log, creating it if absent.
func (s *FileStore) AppendLine(logName string, line string) error {
	path := filepath.Join(s.root, logName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", logName, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", logName, err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append %s: %w", logName, err)
	}
	return nil
}

// ReadAllLines returns every line of the named log in file order. A
// missing log reads as empty, not as an error.
func (s *FileStore) ReadAllLines(logName string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, logName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", logName, err)
	}
	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}
