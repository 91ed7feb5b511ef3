package task

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/logger"
	"github.com/kailas-cloud/pdfagent/internal/metrics"
)

// Summary is the result of a summarize request.
type Summary struct {
	DocumentID  string `json:"document_id"`
	SummaryType string `json:"summary_type"`
	Summary     string `json:"summary"`
}

// Extraction is the result of an extract request.
type Extraction struct {
	DocumentID     string `json:"document_id"`
	ExtractionType string `json:"extraction_type"`
	ExtractedInfo  string `json:"extracted_info"`
}

// Analysis combines a detailed summary with key point and statistics extraction.
type Analysis struct {
	DocumentID string     `json:"document_id"`
	Summary    Summary    `json:"summary"`
	KeyPoints  Extraction `json:"key_points"`
	Statistics Extraction `json:"statistics"`
}

// Service routes summarize/extract requests to their prompt and text
// selection, then makes one generation call per request.
type Service struct {
	docs        DocumentReader
	extractor   Extractor
	splitter    Splitter
	gen         Generator
	directLimit int
}

// New creates a task router. directLimit is the number of characters sent
// whole before representative chunk selection applies.
func New(docs DocumentReader, extractor Extractor, splitter Splitter, gen Generator, directLimit int) *Service {
	return &Service{docs: docs, extractor: extractor, splitter: splitter, gen: gen, directLimit: directLimit}
}

// Summarize produces a summary of the given type (brief, detailed, executive).
func (s *Service) Summarize(ctx context.Context, id, summaryType string) (Summary, error) {
	kind, err := ParseKind(OpSummarize, summaryType)
	if err != nil {
		return Summary{}, err
	}
	src, err := s.load(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	text, err := s.run(ctx, kind, src)
	if err != nil {
		return Summary{}, err
	}
	return Summary{DocumentID: id, SummaryType: kind.Variant, Summary: text}, nil
}

// Extract pulls one kind of information out of the document.
func (s *Service) Extract(ctx context.Context, id, extractionType string) (Extraction, error) {
	kind, err := ParseKind(OpExtract, extractionType)
	if err != nil {
		return Extraction{}, err
	}
	src, err := s.load(ctx, id)
	if err != nil {
		return Extraction{}, err
	}
	text, err := s.run(ctx, kind, src)
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{DocumentID: id, ExtractionType: kind.Variant, ExtractedInfo: text}, nil
}

// Analyze runs detailed summary, key points and statistics over one read of
// the document. Any failing part fails the whole request.
func (s *Service) Analyze(ctx context.Context, id string) (Analysis, error) {
	src, err := s.load(ctx, id)
	if err != nil {
		return Analysis{}, err
	}

	out := Analysis{DocumentID: id}
	summary, err := s.run(ctx, Kind{OpSummarize, "detailed"}, src)
	if err != nil {
		return Analysis{}, err
	}
	out.Summary = Summary{DocumentID: id, SummaryType: "detailed", Summary: summary}

	keyPoints, err := s.run(ctx, Kind{OpExtract, "key_points"}, src)
	if err != nil {
		return Analysis{}, err
	}
	out.KeyPoints = Extraction{DocumentID: id, ExtractionType: "key_points", ExtractedInfo: keyPoints}

	stats, err := s.run(ctx, Kind{OpExtract, "statistics"}, src)
	if err != nil {
		return Analysis{}, err
	}
	out.Statistics = Extraction{DocumentID: id, ExtractionType: "statistics", ExtractedInfo: stats}
	return out, nil
}

type source struct {
	id     string
	sample map[selection]string
}

// load checks the document is processed and prepares the text each
// selection policy would send.
func (s *Service) load(ctx context.Context, id string) (*source, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if !doc.Processed() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrNotProcessed, id, doc.Status())
	}

	pages, err := s.extractor.Extract(ctx, doc.Path())
	if err != nil {
		return nil, fmt.Errorf("read document text: %w", err)
	}
	chunks := s.splitter.Split(id, pages)

	return &source{
		id: id,
		sample: map[selection]string{
			spread: selectText(pages, chunks, s.directLimit, spread),
			tail:   selectText(pages, chunks, s.directLimit, tail),
		},
	}, nil
}

// run is the single dispatch point: the kind picks template and text, then
// one generation call produces the result.
func (s *Service) run(ctx context.Context, kind Kind, src *source) (string, error) {
	v := variants[kind]
	prompt := domain.Prompt{
		System: v.system,
		User:   v.instruction + "\n\nDocument content:\n" + src.sample[v.selection],
	}

	res, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(string(kind.Op), "error").Inc()
		return "", fmt.Errorf("%s: %w", kind, err)
	}

	metrics.RequestsTotal.WithLabelValues(string(kind.Op), "success").Inc()
	logger.FromContext(ctx).Info("Task completed",
		zap.String("document_id", src.id),
		zap.String("kind", kind.String()),
		zap.Int("completion_tokens", res.CompletionTokens),
	)
	return res.Text, nil
}
