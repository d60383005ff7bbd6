package source

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// SourceFile is a scenario document set as read from disk or memory
type SourceFile struct {
	Name    string   // Display name (e.g., "array_of.yaml", "<inline>")
	Path    string   // Full file path (empty for in-memory input)
	Content string   // The raw YAML text
	lines   []string // Cached split lines (lazy initialization)
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewInlineSource creates a source for YAML that did not come from a file
func NewInlineSource(content string) *SourceFile {
	return NewSourceFile("<inline>", "", content)
}

// Read loads the file at path.
func Read(path string) (*SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read scenario file %s", path)
	}
	return FromFile(path, string(data)), nil
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line n without its line terminator.
func (sf *SourceFile) Line(n int) (string, bool) {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile returns true if this represents an actual file (has a path)
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}

// FromFile creates a SourceFile from a file path and content
func FromFile(filePath, content string) *SourceFile {
	name := filepath.Base(filePath)
	return NewSourceFile(name, filePath, content)
}
