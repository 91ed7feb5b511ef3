package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/chunker"
	"github.com/kailas-cloud/pdfagent/internal/config"
	dbRedis "github.com/kailas-cloud/pdfagent/internal/db/redis"
	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/extract"
	"github.com/kailas-cloud/pdfagent/internal/keylock"
	logpkg "github.com/kailas-cloud/pdfagent/internal/logger"
	"github.com/kailas-cloud/pdfagent/internal/metrics"
	"github.com/kailas-cloud/pdfagent/internal/progress"
	docrepo "github.com/kailas-cloud/pdfagent/internal/repository/document"
	"github.com/kailas-cloud/pdfagent/internal/repository/embcache"
	"github.com/kailas-cloud/pdfagent/internal/repository/vector"
	openaiT "github.com/kailas-cloud/pdfagent/internal/transport/openai"
	documentuc "github.com/kailas-cloud/pdfagent/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/pdfagent/internal/usecase/embedding"
	generationuc "github.com/kailas-cloud/pdfagent/internal/usecase/generation"
	healthuc "github.com/kailas-cloud/pdfagent/internal/usecase/health"
	processuc "github.com/kailas-cloud/pdfagent/internal/usecase/process"
	queryuc "github.com/kailas-cloud/pdfagent/internal/usecase/query"
	taskuc "github.com/kailas-cloud/pdfagent/internal/usecase/task"
	"github.com/kailas-cloud/pdfagent/internal/usecase/vectorindex"
)

const providerName = "openai"

// app is the composition root shared by every command.
type app struct {
	logger    *zap.Logger
	store     *dbRedis.Store
	docs      *docrepo.Repo
	events    *progress.Registry
	documents *documentuc.Service
	processor *processuc.Service
	answers   *queryuc.Service
	tasks     *taskuc.Service
	health    *healthuc.Service
}

// newLogger builds the command logger. One-shot commands default to warn so
// their stdout stays readable.
func newLogger(quiet bool, opts ...logpkg.Option) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if level == "" && quiet {
		level = "warn"
	}
	return logpkg.NewLogger(envName, level, opts...)
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	docs, err := docrepo.Open(cfg.Storage.DataDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open document store: %w", err)
	}

	// Register application metrics explicitly (no init())
	metrics.Register()

	splitter, err := chunker.New(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)
	if err != nil {
		_ = docs.Close()
		store.Close()
		return nil, err
	}

	embBase := openaiT.NewEmbedder(&openaiT.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   providerName,
		Logger:     logger,
	})
	embTimeout := time.Duration(cfg.Embedding.TimeoutSec) * time.Second
	docEmbedder := embeddinguc.NewInstrumentedEmbedder(embBase, providerName, cfg.Embedding.Model, embTimeout, logger)

	// Questions repeat far more often than chunks, so only the query path is cached.
	var queryInner domain.Embedder = embBase
	if cfg.Embedding.CacheTTLHours > 0 {
		queryInner = embcache.New(embBase, store, cfg.Storage.KeyPrefix, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour, metrics.EmbeddingCacheTotal, logger)
	}
	queryEmbedder := embeddinguc.NewInstrumentedEmbedder(queryInner, providerName, cfg.Embedding.Model, embTimeout, logger)

	genBase := openaiT.NewGenerator(&openaiT.GeneratorConfig{
		Config: openaiT.Config{
			APIKey:   cfg.Generation.APIKey,
			BaseURL:  cfg.Generation.BaseURL,
			Model:    cfg.Generation.Model,
			Provider: providerName,
			Logger:   logger,
		},
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	})
	generator := generationuc.NewInstrumentedGenerator(genBase, cfg.Generation.Model,
		time.Duration(cfg.Generation.TimeoutSec)*time.Second, logger)

	vectors := vector.New(store, cfg.Storage.KeyPrefix, vector.IndexOptions{
		Dimensions:  cfg.Embedding.Dimensions,
		Algorithm:   cfg.Processing.IndexAlgorithm,
		M:           cfg.Processing.HNSWM,
		EFConstruct: cfg.Processing.HNSWEFConstruct,
	})
	indexer := vectorindex.New(vectors, docEmbedder, queryEmbedder, logger).
		WithBatching(cfg.Processing.EmbedBatchSize, cfg.Processing.EmbedConcurrency)

	extractor := extract.New(cfg.Processing.MaxPages)
	events := progress.NewRegistry(logger)
	locks := keylock.New()

	a := &app{
		logger:    logger,
		store:     store,
		docs:      docs,
		events:    events,
		documents: documentuc.New(docs, indexer, locks),
		processor: processuc.New(docs, extractor, splitter, indexer, events, locks),
		answers: queryuc.New(docs, indexer, generator).
			WithLimits(cfg.Processing.TopK, cfg.Processing.MaxSources, cfg.Processing.PreviewChars),
		tasks:  taskuc.New(docs, extractor, splitter, generator, cfg.Processing.DirectTextLimit),
		health: healthuc.New(store, docEmbedder, genBase),
	}

	n, err := a.processor.RecoverInterrupted(ctx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("recover interrupted runs: %w", err)
	}
	if n > 0 {
		logger.Warn("Marked interrupted processing runs as failed", zap.Int("documents", n))
	}

	logger.Debug("Application wired",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("generation_model", cfg.Generation.Model),
		zap.String("data_dir", cfg.Storage.DataDir),
	)
	return a, nil
}

// Close releases the stores and stops event delivery.
func (a *app) Close() {
	a.events.Close()
	if err := a.docs.Close(); err != nil {
		a.logger.Warn("Close document store", zap.Error(err))
	}
	a.store.Close()
}
