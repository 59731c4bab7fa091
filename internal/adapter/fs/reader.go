package fs

import (
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"docstitch/internal/domain"
)

// Encoding identifies which decoding succeeded when a file was read. The
// same encoding is used to write the file back.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingLatin1
)

func (e Encoding) String() string {
	if e == EncodingLatin1 {
		return "latin-1"
	}
	return "utf-8"
}

// ReadSource reads a whole file as UTF-8, falling back to latin-1 when the
// content is not valid UTF-8. The handle is held only for the read.
func ReadSource(path string) ([]byte, Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, EncodingUTF8, fmt.Errorf("%w: %v", domain.ErrIOFailure, err)
	}

	if utf8.Valid(data) {
		return data, EncodingUTF8, nil
	}

	slog.Warn("file is not valid UTF-8, falling back to latin-1", "path", path)
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, EncodingLatin1, fmt.Errorf("%w: failed to decode %s as latin-1: %v", domain.ErrIOFailure, path, err)
	}
	return decoded, EncodingLatin1, nil
}

// WriteSource writes the full text back using the encoding that succeeded at
// read time. The caller must only invoke this with validated text; the write
// starts once the complete content is in hand.
func WriteSource(path string, text []byte, enc Encoding) error {
	data := text
	if enc == EncodingLatin1 {
		encoded, err := charmap.ISO8859_1.NewEncoder().Bytes(text)
		if err != nil {
			return fmt.Errorf("%w: failed to encode %s as latin-1: %v", domain.ErrIOFailure, path, err)
		}
		data = encoded
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIOFailure, err)
	}
	return nil
}
