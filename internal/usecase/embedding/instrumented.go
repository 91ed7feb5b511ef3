package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one API request.
const DefaultMaxAPIBatchSize = 256

// InstrumentedEmbedder wraps Embedder with a per-call timeout, error
// classification and logging. Transport metrics are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	timeout  time.Duration
	maxBatch int
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder. A zero timeout disables the deadline.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	timeout time.Duration, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		timeout:  timeout,
		maxBatch: DefaultMaxAPIBatchSize,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder under the configured deadline.
func (p *InstrumentedEmbedder) Embed(
	ctx context.Context, text string,
) (domain.EmbeddingResult, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, classify(ctx, err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// BatchEmbed splits texts into API-sized sub-batches and delegates to inner.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()

	result, err := p.embedChunked(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

func (p *InstrumentedEmbedder) embedChunked(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	allEmbeddings := make([][]float32, 0, len(texts))
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		part := texts[offset:min(offset+p.maxBatch, len(texts))]

		partResult, err := p.embedInner(ctx, part)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(part)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, err
		}
		if len(partResult.Embeddings) != len(part) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: got %d vectors for %d texts",
				domain.ErrEmbeddingService, len(partResult.Embeddings), len(part))
		}

		allEmbeddings = append(allEmbeddings, partResult.Embeddings...)
		totalPrompt += partResult.PromptTokens
		totalTokens += partResult.TotalTokens
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   allEmbeddings,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

func (p *InstrumentedEmbedder) embedInner(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var (
		res domain.BatchEmbeddingResult
		err error
	)
	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
	} else {
		res, err = domain.BatchFallback(ctx, p.inner, texts)
	}
	if err != nil {
		return domain.BatchEmbeddingResult{}, classify(ctx, err)
	}
	return res, nil
}

// HealthCheck forwards to the inner provider when it supports one.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()
	if err := hc.HealthCheck(ctx); err != nil {
		return classify(ctx, err)
	}
	return nil
}

func (p *InstrumentedEmbedder) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

// classify maps provider errors onto ErrEmbeddingService, adding ErrTimeout
// when the deadline expired.
func classify(ctx context.Context, err error) error {
	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	switch {
	case timedOut:
		return fmt.Errorf("%w: %w: %v", domain.ErrEmbeddingService, domain.ErrTimeout, err)
	case errors.Is(err, domain.ErrEmbeddingService):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
}
