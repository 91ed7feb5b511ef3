package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
	"github.com/kailas-cloud/pdfagent/internal/logger"
	"github.com/kailas-cloud/pdfagent/internal/metrics"
)

// Source is a chunk that was supplied to the model.
type Source struct {
	PageNumber     int     `json:"page_number"`
	ContentPreview string  `json:"content_preview"`
	Score          float64 `json:"score"`
}

// Answer is a grounded response to one question about one document.
type Answer struct {
	DocumentID string   `json:"document_id"`
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
}

// DocumentAnswer is one document's part of a multi-document query.
type DocumentAnswer struct {
	DocumentID string  `json:"document_id"`
	Answer     *Answer `json:"result,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// MultiAnswer combines per-document answers.
type MultiAnswer struct {
	Query       string           `json:"query"`
	Synthesized string           `json:"synthesized_answer"`
	Results     []DocumentAnswer `json:"individual_results"`
}

// Service answers questions over processed documents.
type Service struct {
	docs         DocumentReader
	retriever    Retriever
	gen          Generator
	topK         int
	maxSources   int
	previewChars int
}

// New creates a query service.
func New(docs DocumentReader, retriever Retriever, gen Generator) *Service {
	return &Service{docs: docs, retriever: retriever, gen: gen, topK: 5, maxSources: 5, previewChars: 200}
}

// WithLimits configures retrieval depth, the number of chunks passed to the
// model and the preview length of returned sources.
func (s *Service) WithLimits(topK, maxSources, previewChars int) *Service {
	if topK > 0 {
		s.topK = topK
	}
	if maxSources > 0 {
		s.maxSources = maxSources
	}
	if previewChars > 0 {
		s.previewChars = previewChars
	}
	return s
}

// Ask answers question about document id. Sources are exactly the chunks
// placed in the prompt.
func (s *Service) Ask(ctx context.Context, id, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return Answer{}, fmt.Errorf("get document: %w", err)
	}
	if !doc.Processed() {
		metrics.RequestsTotal.WithLabelValues("query", "not_processed").Inc()
		return Answer{}, fmt.Errorf("%w: %s is %s", domain.ErrNotProcessed, id, doc.Status())
	}

	hits, err := s.retriever.Query(ctx, id, question, s.topK)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("query", "error").Inc()
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if len(hits) > s.maxSources {
		hits = hits[:s.maxSources]
	}

	res, err := s.gen.Generate(ctx, answerPrompt(question, hits))
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("query", "error").Inc()
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]Source, len(hits))
	for i := range hits {
		sources[i] = Source{
			PageNumber:     hits[i].Chunk.PageNumber,
			ContentPreview: chunk.Preview(hits[i].Chunk.Text, s.previewChars),
			Score:          hits[i].Score,
		}
	}

	metrics.RequestsTotal.WithLabelValues("query", "success").Inc()
	logger.FromContext(ctx).Info("Query answered",
		zap.String("document_id", id),
		zap.Int("sources", len(sources)),
		zap.Int("completion_tokens", res.CompletionTokens),
	)

	return Answer{DocumentID: id, Query: question, Answer: res.Text, Sources: sources}, nil
}

// AskMany answers question for each document and synthesizes one combined
// answer. A failing document is reported inline and does not fail the call.
func (s *Service) AskMany(ctx context.Context, ids []string, question string) (MultiAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return MultiAnswer{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(ids) == 0 {
		return MultiAnswer{}, fmt.Errorf("%w: document_ids is required", domain.ErrInvalidRequest)
	}

	results := make([]DocumentAnswer, len(ids))
	answered := 0
	for i, id := range ids {
		results[i].DocumentID = id
		ans, err := s.Ask(ctx, id, question)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		results[i].Answer = &ans
		answered++
	}

	out := MultiAnswer{Query: question, Results: results}
	if answered == 0 {
		return out, nil
	}

	res, err := s.gen.Generate(ctx, synthesisPrompt(question, results))
	if err != nil {
		return MultiAnswer{}, fmt.Errorf("synthesize: %w", err)
	}
	out.Synthesized = res.Text
	return out, nil
}
