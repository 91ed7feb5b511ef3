package process

import (
	"context"

	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	"github.com/kailas-cloud/pdfagent/internal/progress"
)

// Repository is the document metadata contract used by the pipeline.
type Repository interface {
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Update(ctx context.Context, id string, fn func(*domdoc.Document) error) (domdoc.Document, error)
}

// Extractor reads page text from a stored PDF.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]chunk.Page, error)
}

// Splitter segments page text into chunks.
type Splitter interface {
	Split(documentID string, pages []chunk.Page) []chunk.Chunk
}

// Indexer rebuilds a document's vector namespace.
type Indexer interface {
	Index(ctx context.Context, docID string, chunks []chunk.Chunk, onProgress func(done, total int)) (int, error)
	Delete(ctx context.Context, docID string) error
}

// Publisher receives progress events.
type Publisher interface {
	Publish(ev progress.Event)
	Status(documentID string) (progress.Event, bool)
}

// Locker serializes runs per document.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
