package source

import (
	"fmt"
)

// FileID identifies a host file within a Files table. NoFileID means the
// position is unknown (synthesized members, tests).
type FileID uint32

const NoFileID FileID = 0

// Span points at an annotation or declaration as reported by the host front
// end. Line and Col are 1-based; zero means unknown.
type Span struct {
	File FileID
	Line uint32
	Col  uint32
}

// Known reports whether the span carries any position at all.
func (s Span) Known() bool {
	return s.File != NoFileID || s.Line != 0
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
