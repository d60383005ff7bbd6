package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadAndLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte("name: a\r\noperation: {kind: call}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sf, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if sf.Name != "s.yaml" || sf.DisplayPath() != path || !sf.IsFile() {
		t.Errorf("unexpected metadata: %+v", sf)
	}
	if line, ok := sf.Line(1); !ok || line != "name: a" {
		t.Errorf("Line(1) = %q, %v", line, ok)
	}
	if line, ok := sf.Line(2); !ok || line != "operation: {kind: call}" {
		t.Errorf("Line(2) = %q, %v", line, ok)
	}
	if _, ok := sf.Line(0); ok {
		t.Error("Line(0) should be out of range")
	}
	if _, ok := sf.Line(4); ok {
		t.Error("Line(4) should be out of range")
	}
}

func TestInlineSource(t *testing.T) {
	sf := NewInlineSource("x")
	if sf.IsFile() || sf.DisplayPath() != "<inline>" {
		t.Errorf("inline source: %+v", sf)
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("expected an error")
	}
}
