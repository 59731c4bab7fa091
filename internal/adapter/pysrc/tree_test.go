package pysrc

import (
	"context"
	"errors"
	"testing"

	"docstitch/internal/domain"
)

func TestInsertSimpleFunction(t *testing.T) {
	src := []byte("def f():\n    pass\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	units := tree.Units()
	if len(units) != 2 {
		t.Fatalf("expected 2 units (module, f), got %d", len(units))
	}
	if !units[1].DocMissing() {
		t.Fatal("expected f to have no docstring")
	}

	if err := tree.Insert(1, "Computes nothing."); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if !tree.Changed() {
		t.Fatal("expected tree to report a change")
	}

	got := string(tree.Serialize())
	want := "def f():\n    \"\"\"Computes nothing.\"\"\"\n    pass\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if err := Validate(context.Background(), []byte(got)); err != nil {
		t.Errorf("serialized output does not re-parse: %v", err)
	}
}

func TestDocumentedFunctionUnchanged(t *testing.T) {
	src := []byte("def g():\n    \"\"\"Already documented.\"\"\"\n    pass\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	units := tree.Units()
	if units[1].DocMissing() {
		t.Fatal("expected g to have a docstring")
	}
	if *units[1].Doc != "Already documented." {
		t.Errorf("unexpected docstring content: %q", *units[1].Doc)
	}
	if tree.Changed() {
		t.Fatal("expected no change")
	}
}

func TestInsertClassAndMethod(t *testing.T) {
	src := []byte("class C:\n    def m(self):\n        pass\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	units := tree.Units()
	if len(units) != 3 {
		t.Fatalf("expected 3 units (module, C, m), got %d", len(units))
	}
	if units[1].Kind != domain.KindClass || units[1].Name != "C" {
		t.Fatalf("expected class C at index 1, got %s %s", units[1].Kind, units[1].Name)
	}
	if units[2].Kind != domain.KindFunction || units[2].Name != "m" {
		t.Fatalf("expected method m at index 2, got %s %s", units[2].Kind, units[2].Name)
	}

	if err := tree.Insert(1, "Class doc."); err != nil {
		t.Fatalf("class insert failed: %v", err)
	}
	if err := tree.Insert(2, "Method doc."); err != nil {
		t.Fatalf("method insert failed: %v", err)
	}

	got := string(tree.Serialize())
	want := "class C:\n    \"\"\"Class doc.\"\"\"\n    def m(self):\n        \"\"\"Method doc.\"\"\"\n        pass\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if err := Validate(context.Background(), []byte(got)); err != nil {
		t.Errorf("serialized output does not re-parse: %v", err)
	}
}

func TestInsertInlineBody(t *testing.T) {
	src := []byte("def f(): pass\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if err := tree.Insert(1, "Inline body."); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	out := tree.Serialize()
	if err := Validate(context.Background(), out); err != nil {
		t.Fatalf("serialized output does not re-parse: %v\n%s", err, out)
	}

	// The rewritten body must carry the docstring ahead of the statement.
	reparsed, err := Parse(context.Background(), out, "test.py")
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	units := reparsed.Units()
	if units[1].DocMissing() || *units[1].Doc != "Inline body." {
		t.Errorf("docstring not found after inline insertion:\n%s", out)
	}
}

func TestInsertIdempotent(t *testing.T) {
	src := []byte("class C:\n    def m(self):\n        pass\n\ndef f():\n    return 1\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	for i, u := range tree.Units() {
		if u.Kind == domain.KindModule || !u.DocMissing() {
			continue
		}
		if err := tree.Insert(i, "Doc for "+u.Name+"."); err != nil {
			t.Fatalf("insert failed for %s: %v", u.Name, err)
		}
	}

	out := tree.Serialize()
	second, err := Parse(context.Background(), out, "test.py")
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	for _, u := range second.Units() {
		if u.Kind == domain.KindModule {
			continue
		}
		if u.DocMissing() {
			t.Errorf("unit %s still missing a docstring after the first pass", u.Name)
		}
	}
}

func TestSerializeWithoutChangeIsOriginal(t *testing.T) {
	src := []byte("x = 1\n\ndef f():\n    \"\"\"ok\"\"\"\n    return x\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := string(tree.Serialize()); got != string(src) {
		t.Errorf("serialization of an untouched tree altered the source:\n%q", got)
	}
}

func TestGateRejectsCorruptedEmission(t *testing.T) {
	src := []byte("def f():\n    pass\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	// Plant an unterminated literal directly in the arena, bypassing the
	// quoting that normally guarantees validity.
	tree.nodes[1].insert = `"""`
	tree.changed = true

	out := tree.Serialize()
	if err := Validate(context.Background(), out); err == nil {
		t.Fatalf("expected validation to reject corrupted output:\n%s", out)
	}
}

func TestParseFailure(t *testing.T) {
	src := []byte("def f(:\n")

	_, err := Parse(context.Background(), src, "broken.py")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !errors.Is(err, domain.ErrParseFailure) {
		t.Errorf("expected ErrParseFailure, got %v", err)
	}
}

func TestSnippetModuleSentinel(t *testing.T) {
	src := []byte("def f():\n    pass\n")

	tree, err := Parse(context.Background(), src, "test.py")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if _, ok := tree.Snippet(0); ok {
		t.Error("module snippet should not be extractable from the sentinel span")
	}
	snippet, ok := tree.Snippet(1)
	if !ok {
		t.Fatal("expected a snippet for f")
	}
	if snippet != "def f():\n    pass" {
		t.Errorf("unexpected snippet: %q", snippet)
	}
}
