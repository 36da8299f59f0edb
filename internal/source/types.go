package source

import (
	"fmt"

	"fortio.org/safecast"
)

// FileID uniquely identifies a source file within a FileSet.
type FileID uint32

// NoFileID marks synthetic entities (prelude, default imports).
const NoFileID FileID = 0

// FileSet maps file IDs to the paths they were loaded from.
type FileSet struct {
	paths []string
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{
		paths: []string{""},
		index: make(map[string]FileID),
	}
}

// Add registers path and returns its ID. Adding the same path twice returns
// the ID assigned the first time.
func (fs *FileSet) Add(path string) FileID {
	if id, ok := fs.index[path]; ok {
		return id
	}
	value, err := safecast.Conv[uint32](len(fs.paths))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(value)
	fs.paths = append(fs.paths, path)
	fs.index[path] = id
	return id
}

// Path returns the path registered for id, or "" for synthetic files.
func (fs *FileSet) Path(id FileID) string {
	if fs == nil || int(id) >= len(fs.paths) {
		return ""
	}
	return fs.paths[id]
}

// Len reports the number of registered files.
func (fs *FileSet) Len() int { return len(fs.paths) - 1 }

// Format renders a span as path:line:col for listings.
func (fs *FileSet) Format(sp Span) string {
	path := fs.Path(sp.File)
	if path == "" {
		path = "<synthetic>"
	}
	if sp.Line == 0 {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, sp.Line, sp.Col)
}
