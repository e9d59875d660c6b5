// Package usage keeps the persisted count of calls made to the
// text-generation API.
package usage

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Backend loads and saves the usage count.
type Backend interface {
	Load() (int, error)
	Save(n int) error
}

// Counter is an in-memory usage count backed by a Backend. Increments within
// one process are serialized; separate processes sharing the same backend
// can still lose updates.
type Counter struct {
	mu      sync.Mutex
	backend Backend
	n       int
}

// Load creates a Counter initialized from the backend.
func Load(b Backend) (*Counter, error) {
	n, err := b.Load()
	if err != nil {
		return nil, fmt.Errorf("load usage count: %w", err)
	}
	return &Counter{backend: b, n: n}, nil
}

// Count returns the current value.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Increment adds one to the count and persists it, returning the new value.
// The in-memory value is advanced even if saving fails.
func (c *Counter) Increment() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	if err := c.backend.Save(c.n); err != nil {
		return c.n, fmt.Errorf("save usage count: %w", err)
	}
	return c.n, nil
}

// FileBackend stores the count as a decimal integer in a plain-text file.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a backend for the file at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// Load reads the count. A missing file or blank content counts as zero.
func (f *FileBackend) Load() (int, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return ParseCount(string(data))
}

// Save overwrites the file with n.
func (f *FileBackend) Save(n int) error {
	if err := os.WriteFile(f.Path, []byte(strconv.Itoa(n)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

// ParseCount parses a stored count. Blank input is zero; anything that is not
// a non-negative integer is an error.
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse usage count %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse usage count %q: negative value", s)
	}
	return n, nil
}
