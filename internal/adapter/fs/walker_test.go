package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("pass\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkerIncludesAndExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"))
	writeFile(t, filepath.Join(root, "pkg", "b.py"))
	writeFile(t, filepath.Join(root, "README.md"))
	writeFile(t, filepath.Join(root, ".venv", "lib", "c.py"))
	writeFile(t, filepath.Join(root, "pkg", "__pycache__", "b.cpython-312.py"))

	w := NewWalker(nil, []string{"**/.venv/**", "**/__pycache__/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		got[filepath.ToSlash(rel)] = true
	}

	want := []string{"a.py", "pkg/b.py"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, rel := range want {
		if !got[rel] {
			t.Errorf("expected %s in walk results", rel)
		}
	}
}

func TestWalkerDefaultIncludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "only.txt"))

	w := NewWalker(nil, nil)
	files, err := w.Walk(root)
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("non-Python files must not be picked up: %v", files)
	}
}

func TestWalkerMissingRoot(t *testing.T) {
	w := NewWalker(nil, nil)
	if _, err := w.Walk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected an error for a missing root")
	}
}
