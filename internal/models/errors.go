// ABOUTME: Sentinel errors for document ingestion and lookup
// ABOUTME: Client-input errors are distinguishable from provider failures via IsClientError
package models

import "errors"

var (
	// ErrUnsupportedFileType is returned for extensions other than .pdf and .txt
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrEmptyContent is returned when a document has no extractable text
	ErrEmptyContent = errors.New("document contains no extractable text")
	// ErrChunkingFailed is returned when non-empty text produced no chunks
	ErrChunkingFailed = errors.New("document could not be chunked")
	// ErrInvalidEncoding is returned when a text file is not valid UTF-8
	ErrInvalidEncoding = errors.New("text file is not valid UTF-8")
	// ErrDocumentNotFound is returned when a document ID is not in the registry
	ErrDocumentNotFound = errors.New("document not found")
)

// IsClientError reports whether err was caused by the submitted document
// rather than by a provider or storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrChunkingFailed) ||
		errors.Is(err, ErrInvalidEncoding)
}
