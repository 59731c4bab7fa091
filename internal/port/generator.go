package port

import (
	"context"

	"docstitch/internal/domain"
)

// Generator produces docstring text for one source unit. It is the only
// component permitted to perform network calls. An error or empty result
// means the unit stays undocumented; the caller moves on.
type Generator interface {
	// Generate returns normalized docstring content for the request.
	Generate(ctx context.Context, req domain.GenRequest) (string, error)

	// ModelName returns the name of the backing model.
	ModelName() string
}

// GenCache is an optional store for generated docstrings, keyed by a digest
// of model, unit kind and source snippet.
type GenCache interface {
	Get(key string) (string, bool, error)
	Put(key, text string) error
	Close() error
}
