package port

import (
	"context"

	"docstitch/internal/domain"
)

// Annotator runs one file's annotation pass over in-memory source text.
// It never touches the filesystem; the caller persists the result.
type Annotator interface {
	Annotate(ctx context.Context, filename string, src []byte) (domain.TransformResult, domain.AnnotateStats, error)
}
