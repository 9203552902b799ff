// Package extractor pulls plain text and hyperlinks out of résumé documents.
//
// PDF text and link annotations are read with github.com/ledongthuc/pdf.
// DOCX files are read as the ZIP container of WordprocessingML parts they
// are. Both extractors also recover links written as plain text.
package extractor

import (
	"fmt"
	"os"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Result is the outcome of a single extraction. Links never holds
// duplicates; its order carries no meaning.
type Result struct {
	Text  string
	Links []string
	Pages int
}

// ParseError reports a document that could not be read as its declared kind.
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Func extracts a Result from the document stored at path.
type Func func(path string) (*Result, error)

// ForContentType returns the extractor for a declared content type.
func ForContentType(contentType string) (Func, bool) {
	switch contentType {
	case ContentTypePDF:
		return ExtractPDF, true
	case ContentTypeDOCX:
		return ExtractDOCX, true
	default:
		return nil, false
	}
}

// extractBytes writes data to a temporary file, runs fn on it and removes
// the file again.
func extractBytes(data []byte, pattern string, fn Func) (*Result, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return fn(tmp.Name())
}
