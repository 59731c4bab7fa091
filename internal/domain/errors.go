package domain

import "errors"

// Failure taxonomy. Every failure is scoped to one file or one unit; none of
// these aborts the batch.
var (
	// ErrParseFailure: the input text does not parse. Aborts that file only.
	ErrParseFailure = errors.New("parse failure")

	// ErrBackendFailure: the generation backend errored or returned unusable
	// text. Skips that unit only; the file continues.
	ErrBackendFailure = errors.New("backend failure")

	// ErrSerializationCorruption: the regenerated text failed to re-parse.
	// The write is rejected and the original file is left intact.
	ErrSerializationCorruption = errors.New("serialization corruption")

	// ErrIOFailure: read, write, or encoding error. Aborts that file only.
	ErrIOFailure = errors.New("i/o failure")
)
