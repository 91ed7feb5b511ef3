package vectorindex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
	"github.com/kailas-cloud/pdfagent/internal/repository/vector"
)

// Service embeds chunks and swaps them into a document's namespace.
type Service struct {
	repo          Repository
	docEmbedder   BatchEmbedder
	queryEmbedder Embedder
	batchSize     int
	concurrency   int
	logger        *zap.Logger
}

// New creates a vector index service.
func New(repo Repository, docEmbedder BatchEmbedder, queryEmbedder Embedder, logger *zap.Logger) *Service {
	return &Service{
		repo:          repo,
		docEmbedder:   docEmbedder,
		queryEmbedder: queryEmbedder,
		batchSize:     64,
		concurrency:   4,
		logger:        logger,
	}
}

// WithBatching configures embedding batch size and parallelism.
func (s *Service) WithBatching(batchSize, concurrency int) *Service {
	if batchSize > 0 {
		s.batchSize = batchSize
	}
	if concurrency > 0 {
		s.concurrency = concurrency
	}
	return s
}

// Index rebuilds the namespace of docID from chunks. The new entries become
// visible only once all of them are written; on failure the previous
// namespace stays active and the partial build is dropped.
//
// onProgress receives the number of chunks embedded so far. Calls are
// serialized and done never decreases.
func (s *Service) Index(
	ctx context.Context, docID string, chunks []chunk.Chunk, onProgress func(done, total int),
) (int, error) {
	start := time.Now()

	gen, err := s.repo.NextGeneration(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("allocate generation: %w", err)
	}

	if err := s.build(ctx, docID, gen, chunks, onProgress); err != nil {
		s.dropGeneration(ctx, docID, gen)
		return 0, err
	}

	prev, err := s.repo.Activate(ctx, docID, gen)
	if err != nil {
		s.dropGeneration(ctx, docID, gen)
		return 0, fmt.Errorf("activate generation: %w", err)
	}
	if prev != 0 && prev != gen {
		s.dropGeneration(ctx, docID, prev)
	}

	s.logger.Info("Vector index built",
		zap.String("document_id", docID),
		zap.Int64("generation", gen),
		zap.Int("chunks", len(chunks)),
		zap.Duration("duration", time.Since(start)),
	)
	return len(chunks), nil
}

func (s *Service) build(
	ctx context.Context, docID string, gen int64, chunks []chunk.Chunk, onProgress func(done, total int),
) error {
	if err := s.repo.CreateGeneration(ctx, docID, gen); err != nil {
		return fmt.Errorf("create namespace: %w", err)
	}

	total := len(chunks)
	var (
		mu   sync.Mutex
		done int
	)
	report := func(n int) {
		if onProgress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done += n
		onProgress(done, total)
	}
	report(0)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for offset := 0; offset < total; offset += s.batchSize {
		batch := chunks[offset:min(offset+s.batchSize, total)]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i := range batch {
				texts[i] = batch[i].Text
			}

			res, err := s.docEmbedder.BatchEmbed(gctx, texts)
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", batch[0].Index, batch[len(batch)-1].Index, err)
			}
			if len(res.Embeddings) != len(batch) {
				return fmt.Errorf("%w: got %d vectors for %d chunks",
					domain.ErrEmbeddingService, len(res.Embeddings), len(batch))
			}

			entries := make([]vector.Entry, len(batch))
			for i := range batch {
				entries[i] = vector.Entry{Chunk: batch[i], Vector: res.Embeddings[i]}
			}
			if err := s.repo.Write(gctx, docID, gen, entries); err != nil {
				return fmt.Errorf("write chunks: %w", err)
			}
			report(len(batch))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck // already wrapped per batch
	}
	return nil
}

// dropGeneration removes a generation that is not (or no longer) active.
// Runs on a detached context so cleanup survives caller cancellation.
func (s *Service) dropGeneration(ctx context.Context, docID string, gen int64) {
	if err := s.repo.DropGeneration(context.WithoutCancel(ctx), docID, gen); err != nil {
		s.logger.Error("Failed to drop vector generation",
			zap.String("document_id", docID),
			zap.Int64("generation", gen),
			zap.Error(err),
		)
	}
}

// Query embeds text and returns at most k chunks by descending similarity.
func (s *Service) Query(ctx context.Context, docID, text string, k int) ([]vector.Hit, error) {
	res, err := s.queryEmbedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	hits, err := s.repo.Search(ctx, docID, res.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

// Delete removes the namespace of docID. Idempotent.
func (s *Service) Delete(ctx context.Context, docID string) error {
	if err := s.repo.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	return nil
}
