package document

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not security
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	"github.com/kailas-cloud/pdfagent/internal/extract"
	"github.com/kailas-cloud/pdfagent/internal/logger"
)

// UploadInput is one file to register.
type UploadInput struct {
	DocumentID string // optional; generated when empty
	Filename   string
	Data       []byte
}

// Service handles document registration and lookup.
type Service struct {
	repo    Repository
	vectors VectorDeleter
	locks   Locker
	now     func() time.Time
	newID   func() string
}

// New creates a document service.
func New(repo Repository, vectors VectorDeleter, locks Locker) *Service {
	return &Service{
		repo:    repo,
		vectors: vectors,
		locks:   locks,
		now:     time.Now,
		newID:   func() string { return "doc-" + uuid.NewString() },
	}
}

// Upload validates the payload and stores it with status uploaded.
// Validation failures leave the store untouched.
func (s *Service) Upload(ctx context.Context, in UploadInput) (domdoc.Document, error) {
	name := filepath.Base(strings.TrimSpace(in.Filename))
	if name == "" || name == "." || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return domdoc.Document{}, fmt.Errorf("%w: only .pdf files are accepted, got %q", domain.ErrInvalidFile, in.Filename)
	}
	if len(in.Data) == 0 {
		return domdoc.Document{}, fmt.Errorf("%w: empty file", domain.ErrInvalidFile)
	}

	id := strings.TrimSpace(in.DocumentID)
	if id == "" {
		id = s.newID()
	}
	if err := domdoc.ValidateID(id); err != nil {
		return domdoc.Document{}, err
	}

	pages, err := extract.PageCount(in.Data)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("read %s: %w", name, err)
	}

	sum := md5.Sum(in.Data) //nolint:gosec // content fingerprint
	doc, err := domdoc.New(id, name, s.repo.FilePath(id), pages, int64(len(in.Data)), hex.EncodeToString(sum[:]), s.now())
	if err != nil {
		return domdoc.Document{}, err
	}

	if err := s.repo.Create(ctx, &doc, in.Data); err != nil {
		return domdoc.Document{}, fmt.Errorf("store document: %w", err)
	}

	logger.FromContext(ctx).Info("Document uploaded",
		zap.String("document_id", id),
		zap.String("filename", name),
		zap.Int("pages", pages),
		zap.Int("bytes", len(in.Data)),
	)
	return doc, nil
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, id string) (domdoc.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns all documents in upload order.
func (s *Service) List(ctx context.Context) ([]domdoc.Document, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes the vectors, the record and the stored file. It waits for
// an in-flight processing run of the same document to finish.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: wait for processing lock: %w", domain.ErrTimeout, err)
		}
		return fmt.Errorf("wait for processing lock: %w", err)
	}
	defer unlock()

	if err := s.vectors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.FromContext(ctx).Info("Document deleted", zap.String("document_id", id))
	return nil
}
