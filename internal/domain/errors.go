package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFile signals an upload that is not a readable PDF.
	ErrInvalidFile = errors.New("invalid file")
	// ErrDuplicateID signals a document_id that is already registered.
	ErrDuplicateID = errors.New("duplicate document id")
	// ErrNotFound signals a missing document or namespace.
	ErrNotFound = errors.New("not found")
	// ErrPageLimitExceeded signals a PDF with more pages than allowed.
	ErrPageLimitExceeded = errors.New("page limit exceeded")
	// ErrCorruptFile signals a stored PDF that cannot be parsed.
	ErrCorruptFile = errors.New("corrupt file")
	// ErrInvalidConfig signals invalid pipeline parameters.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrEmbeddingService signals an embedding backend failure.
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrGeneration signals a generation backend failure.
	ErrGeneration = errors.New("generation error")
	// ErrNotProcessed signals a request against a document that is not processed yet.
	ErrNotProcessed = errors.New("document not processed")
	// ErrUnknownRequestKind signals an unsupported summary or extraction type.
	ErrUnknownRequestKind = errors.New("unknown request kind")
	// ErrTimeout signals an external call that ran out of time.
	ErrTimeout = errors.New("timeout")
	// ErrInvalidRequest signals missing or malformed request arguments.
	ErrInvalidRequest = errors.New("invalid request")
)

// PageLimitError wraps ErrPageLimitExceeded with the offending page count.
type PageLimitError struct {
	Pages int
	Limit int
}

func (e *PageLimitError) Error() string {
	return fmt.Sprintf("%s: document has %d pages, limit is %d", ErrPageLimitExceeded.Error(), e.Pages, e.Limit)
}

func (e *PageLimitError) Unwrap() error { return ErrPageLimitExceeded }

// NewPageLimitError creates a page limit error.
func NewPageLimitError(pages, limit int) error {
	return &PageLimitError{Pages: pages, Limit: limit}
}
