// Package output is where a build's artifacts go: a directory on disk for
// the CLI, or an in-memory file set for hosts without a filesystem.
package output

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Sink receives generated files. Names are slash-separated and relative.
type Sink interface {
	WriteFile(name string, data []byte) error
}

// DirSink writes under Root, replacing files atomically.
type DirSink struct {
	Root string
}

func (s DirSink) WriteFile(name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	p := filepath.Join(s.Root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", clean, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", clean, err)
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", clean, err)
	}
	return nil
}

// MemSink keeps files in memory. Safe for concurrent use.
type MemSink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemSink() *MemSink {
	return &MemSink{files: make(map[string][]byte)}
}

func (s *MemSink) WriteFile(name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[clean] = slices.Clone(data)
	return nil
}

// ReadFile returns a stored file.
func (s *MemSink) ReadFile(name string) ([]byte, bool) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[clean]
	return data, ok
}

// List returns the stored names under dir, sorted. An empty dir lists all.
func (s *MemSink) List(dir string) []string {
	prefix := strings.TrimSuffix(path.Clean("/"+dir), "/")
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for name := range s.files {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the number of stored files.
func (s *MemSink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

func cleanName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty output name")
	}
	slashed := filepath.ToSlash(name)
	if path.IsAbs(slashed) {
		return "", fmt.Errorf("output name %q must be relative", name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("output name %q escapes the output root", name)
	}
	return clean, nil
}
