package task

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/pdfagent/internal/chunker"
	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
)

// --- Mocks ---

type mockDocs struct {
	docs map[string]domdoc.Document
}

func (m *mockDocs) Get(_ context.Context, id string) (domdoc.Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrNotFound
	}
	return d, nil
}

type mockExtractor struct {
	pages []chunk.Page
	err   error
	calls int
}

func (m *mockExtractor) Extract(_ context.Context, _ string) ([]chunk.Page, error) {
	m.calls++
	return m.pages, m.err
}

type mockGenerator struct {
	prompts []domain.Prompt
	failOn  int
	err     error
}

func (m *mockGenerator) Generate(_ context.Context, p domain.Prompt) (domain.GenerationResult, error) {
	m.prompts = append(m.prompts, p)
	if m.failOn > 0 && len(m.prompts) == m.failOn {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: "result " + string(rune('0'+len(m.prompts)))}, nil
}

func doc(id string, status domdoc.Status) domdoc.Document {
	return domdoc.Reconstruct(id, id+".pdf", "/tmp/"+id+".pdf", 2, 100, "h", time.Now(), status, 3, "")
}

func newTestService(t *testing.T, gen *mockGenerator, ext *mockExtractor, limit int) *Service {
	t.Helper()
	split, err := chunker.New(100, 10)
	if err != nil {
		t.Fatal(err)
	}
	docs := &mockDocs{docs: map[string]domdoc.Document{
		"doc":     doc("doc", domdoc.StatusProcessed),
		"pending": doc("pending", domdoc.StatusProcessing),
	}}
	return New(docs, ext, split, gen, limit)
}

func shortPages() []chunk.Page {
	return []chunk.Page{
		{Number: 1, Text: "Revenue was 4.2 million in 2025."},
		{Number: 2, Text: "See Smith et al. (2024)."},
	}
}

// --- Tests ---

func TestSummarize_TemplatesPerType(t *testing.T) {
	for _, tc := range []struct {
		typ    string
		marker string
	}{
		{"brief", "2-3 paragraph"},
		{"detailed", "Main topics and themes"},
		{"executive", "Purpose and scope"},
		{"", "Main topics and themes"},
	} {
		t.Run(tc.typ, func(t *testing.T) {
			gen := &mockGenerator{}
			svc := newTestService(t, gen, &mockExtractor{pages: shortPages()}, 1000)

			res, err := svc.Summarize(context.Background(), "doc", tc.typ)
			if err != nil {
				t.Fatal(err)
			}
			if len(gen.prompts) != 1 {
				t.Fatalf("generation calls = %d, want 1", len(gen.prompts))
			}
			p := gen.prompts[0].User
			if !strings.Contains(p, tc.marker) {
				t.Errorf("prompt missing %q: %q", tc.marker, p)
			}
			if !strings.Contains(p, "Revenue was 4.2 million in 2025.\n\nSee Smith") {
				t.Errorf("short document should be sent whole: %q", p)
			}
			if res.Summary != "result 1" || res.DocumentID != "doc" {
				t.Errorf("result = %+v", res)
			}
			if tc.typ != "" && res.SummaryType != tc.typ {
				t.Errorf("summary_type = %q", res.SummaryType)
			}
		})
	}
}

func TestExtract_AllTypes(t *testing.T) {
	for _, typ := range Variants(OpExtract) {
		gen := &mockGenerator{}
		svc := newTestService(t, gen, &mockExtractor{pages: shortPages()}, 1000)

		res, err := svc.Extract(context.Background(), "doc", typ)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if res.ExtractionType != typ || res.ExtractedInfo == "" {
			t.Errorf("%s: result = %+v", typ, res)
		}
		if gen.prompts[0].System != extractSystem {
			t.Errorf("%s: wrong system prompt", typ)
		}
	}
}

func TestRouter_UnknownKind(t *testing.T) {
	gen := &mockGenerator{}
	ext := &mockExtractor{pages: shortPages()}
	svc := newTestService(t, gen, ext, 1000)

	if _, err := svc.Summarize(context.Background(), "doc", "haiku"); !errors.Is(err, domain.ErrUnknownRequestKind) {
		t.Errorf("expected ErrUnknownRequestKind, got %v", err)
	}
	if _, err := svc.Extract(context.Background(), "doc", "emails"); !errors.Is(err, domain.ErrUnknownRequestKind) {
		t.Errorf("expected ErrUnknownRequestKind, got %v", err)
	}
	if ext.calls != 0 || len(gen.prompts) != 0 {
		t.Error("unknown kinds must be rejected before any work")
	}
}

func TestRouter_RequiresProcessed(t *testing.T) {
	gen := &mockGenerator{}
	svc := newTestService(t, gen, &mockExtractor{pages: shortPages()}, 1000)

	if _, err := svc.Summarize(context.Background(), "pending", "brief"); !errors.Is(err, domain.ErrNotProcessed) {
		t.Errorf("expected ErrNotProcessed, got %v", err)
	}
	if _, err := svc.Analyze(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRouter_LongDocumentSampled(t *testing.T) {
	var pages []chunk.Page
	for i := range 40 {
		pages = append(pages, chunk.Page{Number: i + 1, Text: strings.Repeat("lorem ipsum ", 20)})
	}
	gen := &mockGenerator{}
	svc := newTestService(t, gen, &mockExtractor{pages: pages}, 1500)

	if _, err := svc.Summarize(context.Background(), "doc", "brief"); err != nil {
		t.Fatal(err)
	}
	p := gen.prompts[0].User
	if !strings.Contains(p, "[Page 1]") || !strings.Contains(p, gapMarker) {
		t.Errorf("expected sampled chunks with page markers")
	}
	if len(p) > 3000 {
		t.Errorf("prompt not reduced: %d bytes", len(p))
	}
}

func TestAnalyze(t *testing.T) {
	gen := &mockGenerator{}
	ext := &mockExtractor{pages: shortPages()}
	svc := newTestService(t, gen, ext, 1000)

	res, err := svc.Analyze(context.Background(), "doc")
	if err != nil {
		t.Fatal(err)
	}
	if ext.calls != 1 {
		t.Errorf("document read %d times, want 1", ext.calls)
	}
	if len(gen.prompts) != 3 {
		t.Fatalf("generation calls = %d, want 3", len(gen.prompts))
	}
	if res.Summary.SummaryType != "detailed" || res.KeyPoints.ExtractionType != "key_points" ||
		res.Statistics.ExtractionType != "statistics" {
		t.Errorf("analysis = %+v", res)
	}
	if res.Statistics.ExtractedInfo != "result 3" {
		t.Errorf("statistics = %q", res.Statistics.ExtractedInfo)
	}
}

func TestAnalyze_PartFails(t *testing.T) {
	gen := &mockGenerator{failOn: 2, err: domain.ErrGeneration}
	svc := newTestService(t, gen, &mockExtractor{pages: shortPages()}, 1000)

	if _, err := svc.Analyze(context.Background(), "doc"); !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestExtract_ReadError(t *testing.T) {
	svc := newTestService(t, &mockGenerator{}, &mockExtractor{err: domain.ErrCorruptFile}, 1000)
	if _, err := svc.Extract(context.Background(), "doc", "statistics"); !errors.Is(err, domain.ErrCorruptFile) {
		t.Errorf("expected ErrCorruptFile, got %v", err)
	}
}
