package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"docstitch/internal/adapter/cache"
	"docstitch/internal/adapter/pysrc"
	"docstitch/internal/domain"
	"docstitch/internal/port"
)

// AnnotateUseCase runs one file's annotation pass: parse, flag units with no
// docstring, obtain text from the generator, insert, then serialize behind
// the re-parse gate. It never touches the filesystem and keeps no state
// between files, so a single instance is shared across the worker pool.
type AnnotateUseCase struct {
	gen      port.Generator
	genCache port.GenCache // nil when caching is disabled
}

func NewAnnotateUseCase(gen port.Generator, genCache port.GenCache) *AnnotateUseCase {
	return &AnnotateUseCase{
		gen:      gen,
		genCache: genCache,
	}
}

// Annotate transforms in-memory source text. The returned result is quiescent
// (Changed=false, nil NewSource) when no unit needed a docstring. A non-nil
// error is file-scoped: ErrParseFailure for unusable input, or
// ErrSerializationCorruption when the regenerated text failed to re-parse and
// must not be written. Per-unit generator failures are logged and skipped;
// they never fail the file.
func (u *AnnotateUseCase) Annotate(ctx context.Context, filename string, src []byte) (domain.TransformResult, domain.AnnotateStats, error) {
	var stats domain.AnnotateStats

	tree, err := pysrc.Parse(ctx, src, filename)
	if err != nil {
		return domain.TransformResult{}, stats, err
	}

	// Pre-order over the arena: a class is handled before its methods, and a
	// unit's children are visited no matter how the unit itself fared.
	units := tree.Units()
	stats.UnitsSeen = len(units)

	for i, unit := range units {
		if unit.Kind == domain.KindModule {
			continue
		}
		if !unit.DocMissing() {
			slog.Debug("docstring already present", "unit", unit.Name, "file", filename)
			continue
		}
		stats.UnitsMissing++
		slog.Info("missing docstring detected", "unit", unit.DisplayName(), "file", filename)

		snippet, ok := tree.Snippet(i)
		if !ok {
			slog.Warn("could not extract source segment", "unit", unit.Name, "file", filename)
			continue
		}

		text, err := u.generate(ctx, unit, snippet, filename)
		if err != nil {
			slog.Warn("docstring generation failed", "unit", unit.DisplayName(), "file", filename, "error", err)
			continue
		}

		if err := tree.Insert(i, text); err != nil {
			slog.Warn("could not insert docstring", "unit", unit.DisplayName(), "file", filename, "error", err)
			continue
		}
		stats.UnitsDocumented++
		slog.Info("docstring added", "unit", unit.DisplayName(), "file", filename)
	}

	if !tree.Changed() {
		return domain.TransformResult{Changed: false}, stats, nil
	}

	out := tree.Serialize()
	if err := pysrc.Validate(ctx, out); err != nil {
		return domain.TransformResult{}, stats, fmt.Errorf("%w: %s: %v", domain.ErrSerializationCorruption, filename, err)
	}

	return domain.TransformResult{NewSource: out, Changed: true}, stats, nil
}

// generate obtains docstring content for one unit, consulting the cache when
// one is configured. One request per unit per run; no retries.
func (u *AnnotateUseCase) generate(ctx context.Context, unit domain.SourceUnit, snippet, filename string) (string, error) {
	var key string
	if u.genCache != nil {
		key = cache.Key(u.gen.ModelName(), unit.Kind.String(), snippet)
		if text, ok, err := u.genCache.Get(key); err == nil && ok {
			slog.Debug("docstring served from cache", "unit", unit.Name, "file", filename)
			return text, nil
		}
	}

	req := domain.GenRequest{
		Snippet:   snippet,
		KindLabel: unit.Kind.String(),
		Name:      unit.DisplayName(),
		File:      filename,
	}
	text, err := u.gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	if u.genCache != nil {
		if err := u.genCache.Put(key, text); err != nil {
			slog.Debug("failed to store docstring in cache", "unit", unit.Name, "error", err)
		}
	}
	return text, nil
}
