package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	"github.com/kailas-cloud/pdfagent/internal/logger"
	"github.com/kailas-cloud/pdfagent/internal/metrics"
	"github.com/kailas-cloud/pdfagent/internal/progress"
)

// Result summarizes a successful run.
type Result struct {
	NumPages  int `json:"num_pages"`
	NumChunks int `json:"num_chunks"`
}

// Service drives extract -> chunk -> index for one document at a time.
type Service struct {
	repo      Repository
	extractor Extractor
	splitter  Splitter
	indexer   Indexer
	events    Publisher
	locks     Locker
	now       func() time.Time
}

// New creates a processing service.
func New(repo Repository, extractor Extractor, splitter Splitter, indexer Indexer, events Publisher, locks Locker) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		splitter:  splitter,
		indexer:   indexer,
		events:    events,
		locks:     locks,
		now:       time.Now,
	}
}

// Process runs the full pipeline. Failures are recorded on the document as
// status=error and returned; nothing is retried or resumed.
func (s *Service) Process(ctx context.Context, id string) (Result, error) {
	log := logger.FromContext(ctx).With(zap.String("document_id", id))

	if _, err := s.repo.Get(ctx, id); err != nil {
		return Result{}, fmt.Errorf("get document: %w", err)
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%w: waiting for processing lock", domain.ErrTimeout)
		}
		return Result{}, fmt.Errorf("wait for processing lock: %w", err)
	}
	defer unlock()

	doc, err := s.repo.Update(ctx, id, func(d *domdoc.Document) error { return d.StartProcessing() })
	if err != nil {
		return Result{}, fmt.Errorf("start processing: %w", err)
	}

	start := s.now()
	log.Info("Processing started", zap.String("filename", doc.Filename()))

	res, err := s.run(ctx, &doc)
	if err != nil {
		s.fail(ctx, id, err)
		metrics.DocumentsProcessedTotal.WithLabelValues("error").Inc()
		log.Error("Processing failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return Result{}, err
	}

	if _, err := s.repo.Update(ctx, id, func(d *domdoc.Document) error { return d.MarkProcessed(res.NumChunks) }); err != nil {
		// The new namespace is already live; an error status must not keep it.
		if derr := s.indexer.Delete(context.WithoutCancel(ctx), id); derr != nil {
			log.Error("Failed to drop index after status write failure", zap.Error(derr))
		}
		s.fail(ctx, id, err)
		metrics.DocumentsProcessedTotal.WithLabelValues("error").Inc()
		log.Error("Processing failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return Result{}, fmt.Errorf("mark processed: %w", err)
	}

	s.events.Publish(progress.Event{
		DocumentID: id, Stage: progress.StageProcessed,
		Progress: res.NumChunks, Total: res.NumChunks,
	})
	metrics.DocumentsProcessedTotal.WithLabelValues("processed").Inc()
	metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	metrics.ChunksIndexedTotal.Add(float64(res.NumChunks))

	log.Info("Processing finished",
		zap.Int("pages", res.NumPages),
		zap.Int("chunks", res.NumChunks),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context, doc *domdoc.Document) (Result, error) {
	id := doc.ID()

	s.events.Publish(progress.Event{DocumentID: id, Stage: progress.StageExtracting, Total: doc.NumPages()})
	pages, err := s.extractor.Extract(ctx, doc.Path())
	if err != nil {
		return Result{}, fmt.Errorf("extract text: %w", err)
	}

	s.events.Publish(progress.Event{DocumentID: id, Stage: progress.StageChunking, Progress: len(pages), Total: len(pages)})
	chunks := s.splitter.Split(id, pages)

	n, err := s.indexer.Index(ctx, id, chunks, func(done, total int) {
		s.events.Publish(progress.Event{DocumentID: id, Stage: progress.StageEmbedding, Progress: done, Total: total})
	})
	if err != nil {
		return Result{}, fmt.Errorf("index chunks: %w", err)
	}
	return Result{NumPages: len(pages), NumChunks: n}, nil
}

// fail records the error on the document even if ctx was canceled.
func (s *Service) fail(ctx context.Context, id string, cause error) {
	detached := context.WithoutCancel(ctx)
	msg := cause.Error()
	if _, err := s.repo.Update(detached, id, func(d *domdoc.Document) error { return d.MarkFailed(msg) }); err != nil {
		logger.FromContext(ctx).Error("Failed to record processing error",
			zap.String("document_id", id), zap.Error(err))
	}
	s.events.Publish(progress.Event{DocumentID: id, Stage: progress.StageFailed, Message: msg})
}

// Status returns the in-flight progress of a document, or its stored state
// as a terminal event when no run is active.
func (s *Service) Status(ctx context.Context, id string) (progress.Event, error) {
	if ev, ok := s.events.Status(id); ok {
		return ev, nil
	}
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return progress.Event{}, fmt.Errorf("get document: %w", err)
	}
	ev := progress.Event{DocumentID: id, Stage: progress.Stage(doc.Status()), Message: doc.Error()}
	if doc.Processed() {
		ev.Progress, ev.Total = doc.NumChunks(), doc.NumChunks()
	}
	return ev, nil
}

// RecoverInterrupted marks documents left in processing by a previous
// process as failed. Call once at start-up before serving requests.
func (s *Service) RecoverInterrupted(ctx context.Context) (int, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list documents: %w", err)
	}
	var recovered int
	for i := range docs {
		if docs[i].Status() != domdoc.StatusProcessing {
			continue
		}
		_, err := s.repo.Update(ctx, docs[i].ID(), func(d *domdoc.Document) error {
			return d.MarkFailed("processing interrupted by shutdown")
		})
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return recovered, fmt.Errorf("recover %s: %w", docs[i].ID(), err)
		}
		recovered++
	}
	return recovered, nil
}
