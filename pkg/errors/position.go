package errors

import "fmt"

// Position represents a specific location in a source file.
// Line and column numbers are 1-based for human-readability.
type Position struct {
	File   string // Path of the file, empty for in-memory sources
	Line   int    // 1-based line number
	Column int    // 1-based column number
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool { return p.Line > 0 }
