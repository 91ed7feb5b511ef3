package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
)

// InstrumentedGenerator bounds each generation call with a deadline and
// normalizes provider failures to ErrGeneration. Timeouts also match ErrTimeout.
// There are no retries.
type InstrumentedGenerator struct {
	inner   domain.Generator
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewInstrumentedGenerator wraps a generator. A zero timeout disables the deadline.
func NewInstrumentedGenerator(inner domain.Generator, model string, timeout time.Duration, logger *zap.Logger) *InstrumentedGenerator {
	return &InstrumentedGenerator{inner: inner, model: model, timeout: timeout, logger: logger}
}

// Generate runs one generation call.
func (g *InstrumentedGenerator) Generate(ctx context.Context, p domain.Prompt) (domain.GenerationResult, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := g.inner.Generate(ctx, p)
	duration := time.Since(start)

	if err != nil {
		g.logger.Error("Generation request failed",
			zap.String("model", g.model),
			zap.Duration("duration", duration),
			zap.Int("prompt_chars", len(p.System)+len(p.User)),
			zap.Error(err),
		)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.GenerationResult{}, fmt.Errorf("%w: %w: generation after %s: %v", domain.ErrGeneration, domain.ErrTimeout, duration.Round(time.Millisecond), err)
		}
		if errors.Is(err, domain.ErrGeneration) {
			return domain.GenerationResult{}, err
		}
		return domain.GenerationResult{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	g.logger.Debug("Generation request completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("completion_tokens", res.CompletionTokens),
	)
	return res, nil
}
