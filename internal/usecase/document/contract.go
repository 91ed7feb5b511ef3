package document

import (
	"context"

	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Create(ctx context.Context, doc *domdoc.Document, data []byte) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
	FilePath(id string) string
}

// VectorDeleter removes a document's vector namespace.
type VectorDeleter interface {
	Delete(ctx context.Context, docID string) error
}

// Locker serializes destructive work with processing runs.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
