package vectorindex

import (
	"context"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/repository/vector"
)

// Repository defines the generation-based vector storage contract.
type Repository interface {
	NextGeneration(ctx context.Context, docID string) (int64, error)
	CreateGeneration(ctx context.Context, docID string, gen int64) error
	Write(ctx context.Context, docID string, gen int64, entries []vector.Entry) error
	Activate(ctx context.Context, docID string, gen int64) (int64, error)
	DropGeneration(ctx context.Context, docID string, gen int64) error
	Search(ctx context.Context, docID string, vec []float32, k int) ([]vector.Hit, error)
	DeleteDocument(ctx context.Context, docID string) error
}

// BatchEmbedder vectorizes chunk texts.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
