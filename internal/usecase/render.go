package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"docstitch/internal/adapter/fs"
	"docstitch/internal/adapter/pysrc"
	"docstitch/internal/domain"
	"docstitch/internal/port"
)

// RenderUseCase writes one Markdown page per source file from the same unit
// records the annotation pass extracts. A leaf consumer of the extractor: it
// never modifies source files.
type RenderUseCase struct {
	walker   port.FileWalker
	skipInit bool
}

func NewRenderUseCase(walker port.FileWalker, skipInit bool) *RenderUseCase {
	return &RenderUseCase{
		walker:   walker,
		skipInit: skipInit,
	}
}

// Render generates documentation for every file under root into outDir,
// creating the directory as needed. Returns the number of pages written.
// Per-file failures are logged and skipped.
func (u *RenderUseCase) Render(ctx context.Context, root, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return 0, fmt.Errorf("failed to walk directory: %w", err)
	}

	count := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if u.skipInit && filepath.Base(f.Path) == "__init__.py" {
			continue
		}
		if err := u.renderFile(ctx, f.Path, outDir); err != nil {
			slog.Error("failed to render documentation", "file", f.Path, "error", err)
			continue
		}
		count++
	}
	return count, nil
}

func (u *RenderUseCase) renderFile(ctx context.Context, path, outDir string) error {
	src, _, err := fs.ReadSource(path)
	if err != nil {
		return err
	}

	tree, err := pysrc.Parse(ctx, src, path)
	if err != nil {
		return err
	}

	md := renderMarkdown(tree)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+".md")
	if err := os.WriteFile(outPath, []byte(md), 0644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIOFailure, err)
	}

	slog.Info("documentation page written", "file", path, "output", outPath)
	return nil
}

// renderMarkdown lays the page out as module header, then all functions and
// methods, then classes.
func renderMarkdown(tree *pysrc.Tree) string {
	units := tree.Units()

	var funcs, classes []int
	for i, u := range units {
		switch u.Kind {
		case domain.KindFunction, domain.KindAsyncFunction:
			funcs = append(funcs, i)
		case domain.KindClass:
			classes = append(classes, i)
		}
	}

	var sb strings.Builder

	mod := units[0]
	sb.WriteString("# " + mod.Name + "\n\n")
	if mod.Doc != nil && *mod.Doc != "" {
		sb.WriteString(*mod.Doc + "\n\n")
	}

	writeSection := func(title string, idxs []int) {
		if len(idxs) == 0 {
			return
		}
		sb.WriteString("## " + title + "\n\n")
		for _, i := range idxs {
			u := units[i]
			sb.WriteString("### " + u.Name + "\n\n")
			if u.Doc != nil && *u.Doc != "" {
				sb.WriteString(*u.Doc + "\n\n")
			}
			if code, ok := tree.Snippet(i); ok {
				sb.WriteString("```python\n" + code + "\n```\n\n")
			}
		}
	}

	writeSection("Functions", funcs)
	writeSection("Classes", classes)

	return sb.String()
}
