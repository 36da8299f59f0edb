package source

import (
	"fmt"
)

// Span points at a declaration or expression inside a source file. Line and
// Col are 1-based; a zero Line means the position is unknown.
type Span struct {
	File FileID
	Line uint32
	Col  uint32
}

func (s Span) Known() bool {
	return s.File != NoFileID && s.Line != 0
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d", s.File, s.Line, s.Col)
}

// Before orders spans by file, then line, then column.
func (s Span) Before(other Span) bool {
	if s.File != other.File {
		return s.File < other.File
	}
	if s.Line != other.Line {
		return s.Line < other.Line
	}
	return s.Col < other.Col
}
