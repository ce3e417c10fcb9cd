package source

import (
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// Files interns host file paths. The pass never reads file contents; paths
// exist only so diagnostics can say where a declaration came from.
type Files struct {
	paths []string          // индекс -> путь (paths[0] = "" для NoFileID)
	index map[string]FileID // путь -> ID
}

// NewFiles creates an empty table.
func NewFiles() *Files {
	return &Files{
		paths: []string{""},
		index: map[string]FileID{},
	}
}

// Add interns path and returns its ID. An empty path yields NoFileID.
func (f *Files) Add(path string) FileID {
	if path == "" {
		return NoFileID
	}
	path = filepath.ToSlash(path)
	if id, ok := f.index[path]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(f.paths))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	f.paths = append(f.paths, path)
	f.index[path] = id
	return id
}

// Path returns the path for id, or "" when unknown.
func (f *Files) Path(id FileID) string {
	if f == nil || int(id) >= len(f.paths) {
		return ""
	}
	return f.paths[id]
}

// Len counts interned paths, excluding NoFileID.
func (f *Files) Len() int {
	return len(f.paths) - 1
}

// Format renders sp as path:line:col, dropping the parts that are unknown.
func (f *Files) Format(sp Span) string {
	path := f.Path(sp.File)
	switch {
	case path == "" && sp.Line == 0:
		return "<unknown>"
	case path == "":
		return fmt.Sprintf("<unknown>:%d:%d", sp.Line, sp.Col)
	case sp.Line == 0:
		return path
	default:
		return fmt.Sprintf("%s:%d:%d", path, sp.Line, sp.Col)
	}
}
