package domain

import "fmt"

// UnitKind identifies the kind of a documentable declaration.
type UnitKind int

const (
	KindModule UnitKind = iota
	KindFunction
	KindAsyncFunction
	KindClass
)

func (k UnitKind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindFunction:
		return "function"
	case KindAsyncFunction:
		return "async function"
	case KindClass:
		return "class"
	default:
		return "unknown"
	}
}

// Span is a half-open byte interval [StartByte, EndByte) into the original
// source text. The module unit carries the zero Span as a sentinel; it is
// never used for re-extraction.
type Span struct {
	StartByte int
	EndByte   int
}

// IsZero reports whether the span is the module sentinel.
func (s Span) IsZero() bool {
	return s.StartByte == 0 && s.EndByte == 0
}

// SourceUnit is one documentable declaration extracted from a file.
// Doc is nil when no docstring is present; a non-nil empty string means an
// empty docstring literal exists and the unit counts as documented.
type SourceUnit struct {
	Kind       UnitKind
	Name       string
	Signature  string
	Span       Span
	Doc        *string
	Params     []string
	ReturnHint string
	Raises     []string
}

// DocMissing reports whether the unit has no docstring at all.
func (u SourceUnit) DocMissing() bool {
	return u.Doc == nil
}

// DisplayName is the human-readable label used in prompts and logs.
func (u SourceUnit) DisplayName() string {
	if u.Kind == KindClass {
		return "class " + u.Name
	}
	return u.Name
}

// GenRequest is the payload for one docstring generation call.
type GenRequest struct {
	Snippet   string
	KindLabel string
	Name      string
	File      string
}

// TransformResult is the outcome of one file's annotation pass.
// Changed=false with a nil NewSource is the quiescent outcome: nothing was
// missing and the file must be left untouched.
type TransformResult struct {
	NewSource []byte
	Changed   bool
}

// AnnotateStats counts what one file's pass saw and did.
type AnnotateStats struct {
	UnitsSeen       int
	UnitsMissing    int
	UnitsDocumented int
}

// FileReport describes the outcome of processing one file in a batch.
type FileReport struct {
	Path    string
	Stats   AnnotateStats
	Written bool
	Err     error
}

func (r FileReport) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Path, r.Err)
	}
	return fmt.Sprintf("%s: %d/%d units documented", r.Path, r.Stats.UnitsDocumented, r.Stats.UnitsMissing)
}
