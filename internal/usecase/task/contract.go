package task

import (
	"context"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
)

// DocumentReader reads document metadata.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}

// Extractor reads page text from a stored PDF.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]chunk.Page, error)
}

// Splitter segments page text into chunks.
type Splitter interface {
	Split(documentID string, pages []chunk.Page) []chunk.Chunk
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, p domain.Prompt) (domain.GenerationResult, error)
}
