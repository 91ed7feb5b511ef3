package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/pdftest"
)

func TestExtract_PagesInOrder(t *testing.T) {
	path := pdftest.WriteFile(t, "three.pdf", pdftest.Build(
		"Alpha page talks about revenue",
		"",
		"Gamma page lists definitions",
	))

	pages, err := New(500).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d numbered %d", i, p.Number)
		}
	}
	if !strings.Contains(pages[0].Text, "Alpha") {
		t.Errorf("page 1 text = %q", pages[0].Text)
	}
	if strings.TrimSpace(pages[1].Text) != "" {
		t.Errorf("blank page text = %q", pages[1].Text)
	}
	if !strings.Contains(pages[2].Text, "Gamma") {
		t.Errorf("page 3 text = %q", pages[2].Text)
	}
}

func TestExtract_PageLimitExceeded(t *testing.T) {
	path := pdftest.WriteFile(t, "big.pdf", pdftest.Blank(6))

	_, err := New(5).Extract(context.Background(), path)
	if !errors.Is(err, domain.ErrPageLimitExceeded) {
		t.Fatalf("expected ErrPageLimitExceeded, got %v", err)
	}
	var ple *domain.PageLimitError
	if !errors.As(err, &ple) || ple.Pages != 6 || ple.Limit != 5 {
		t.Errorf("unexpected page limit detail: %+v", ple)
	}
}

func TestExtract_AtLimit(t *testing.T) {
	path := pdftest.WriteFile(t, "edge.pdf", pdftest.Blank(5))

	pages, err := New(5).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 5 {
		t.Errorf("expected 5 pages, got %d", len(pages))
	}
}

func TestExtract_CorruptFile(t *testing.T) {
	data := pdftest.Build("hello")
	// keep the header, destroy the trailer
	data = append(data[:40:40], []byte(strings.Repeat("garbage ", 30))...)
	path := pdftest.WriteFile(t, "broken.pdf", data)

	_, err := New(500).Extract(context.Background(), path)
	if !errors.Is(err, domain.ErrCorruptFile) {
		t.Fatalf("expected ErrCorruptFile, got %v", err)
	}
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New(500).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	path := pdftest.WriteFile(t, "doc.pdf", pdftest.Build("one", "two"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(500).Extract(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPageCount(t *testing.T) {
	n, err := PageCount(pdftest.Build("a", "b", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 pages, got %d", n)
	}
}

func TestPageCount_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("just some text that is definitely not a pdf document at all")},
		{"header only", append([]byte("%PDF-1.4\n"), make([]byte, 200)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PageCount(tt.data)
			if !errors.Is(err, domain.ErrInvalidFile) {
				t.Fatalf("expected ErrInvalidFile, got %v", err)
			}
		})
	}
}

func TestGuard_RecoversPanic(t *testing.T) {
	err := guard(func() error { panic("boom") })
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected recovered error, got %v", err)
	}
}
