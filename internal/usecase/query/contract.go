package query

import (
	"context"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	"github.com/kailas-cloud/pdfagent/internal/repository/vector"
)

// DocumentReader reads document metadata.
type DocumentReader interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
}

// Retriever returns the chunks most similar to a question.
type Retriever interface {
	Query(ctx context.Context, docID, text string, k int) ([]vector.Hit, error)
}

// Generator produces the answer text.
type Generator interface {
	Generate(ctx context.Context, p domain.Prompt) (domain.GenerationResult, error)
}
