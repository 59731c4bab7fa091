package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docstitch/internal/adapter/fs"
)

func TestRenderWritesMarkdown(t *testing.T) {
	root := t.TempDir()
	src := `"""Geometry helpers."""

class Shape:
    """A closed figure."""

    def area(self):
        """Returns the enclosed area."""
        pass

def helper():
    pass
`
	writeSource(t, filepath.Join(root, "shapes.py"), src)

	outDir := filepath.Join(t.TempDir(), "docs")
	uc := NewRenderUseCase(fs.NewWalker(nil, nil), true)

	pages, err := uc.Render(context.Background(), root, outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages != 1 {
		t.Fatalf("expected 1 page, got %d", pages)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "shapes.md"))
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)

	for _, want := range []string{
		"# shapes",
		"Geometry helpers.",
		"## Classes",
		"### Shape",
		"A closed figure.",
		"## Functions",
		"### area",
		"Returns the enclosed area.",
		"### helper",
		"```python",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in rendered page:\n%s", want, md)
		}
	}
}

func TestRenderSkipsInit(t *testing.T) {
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "__init__.py"), "")
	writeSource(t, filepath.Join(root, "mod.py"), "def f():\n    pass\n")

	outDir := filepath.Join(t.TempDir(), "docs")
	uc := NewRenderUseCase(fs.NewWalker(nil, nil), true)

	pages, err := uc.Render(context.Background(), root, outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages != 1 {
		t.Errorf("expected only mod.py to render, got %d pages", pages)
	}
	if _, err := os.Stat(filepath.Join(outDir, "__init__.md")); !os.IsNotExist(err) {
		t.Error("__init__.py must be skipped")
	}
}

func TestRenderNeverModifiesSources(t *testing.T) {
	root := t.TempDir()
	src := "def f():\n    pass\n"
	path := filepath.Join(root, "mod.py")
	writeSource(t, path, src)

	uc := NewRenderUseCase(fs.NewWalker(nil, nil), false)
	if _, err := uc.Render(context.Background(), root, filepath.Join(t.TempDir(), "docs")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != src {
		t.Errorf("source file was modified:\n%s", data)
	}
}
