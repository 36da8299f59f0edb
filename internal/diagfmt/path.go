package diagfmt

import (
	"fmt"
	"path/filepath"
	"strings"
)

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return path
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative, PathModeAuto:
		if base == "" {
			return path
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(base, abs)
		if err != nil || (mode == PathModeAuto && strings.HasPrefix(rel, "..")) {
			return path
		}
		return rel
	default:
		return path
	}
}

// location renders file:line:col with the path in the requested mode. An
// empty file falls back to the precomputed location text.
func location(file string, line, col uint32, fallback string, mode PathMode, base string) string {
	if file == "" {
		return fallback
	}
	p := formatPath(file, mode, base)
	if line == 0 {
		return p
	}
	return fmt.Sprintf("%s:%d:%d", p, line, col)
}
