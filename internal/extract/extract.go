// Package extract pulls page-level text out of stored PDF files.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ledongthuc/pdf"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
)

var magic = []byte("%PDF-")

// Extractor reads PDF pages in physical order.
type Extractor struct {
	maxPages int
}

// New creates an extractor that rejects documents above maxPages.
func New(maxPages int) *Extractor {
	return &Extractor{maxPages: maxPages}
}

// MaxPages returns the configured page limit.
func (e *Extractor) MaxPages() int { return e.maxPages }

// PageCount validates an upload payload and returns its page count.
// Anything that is not a parseable PDF with at least one page is ErrInvalidFile.
func PageCount(data []byte) (int, error) {
	if !bytes.HasPrefix(data, magic) {
		return 0, fmt.Errorf("%w: missing PDF header", domain.ErrInvalidFile)
	}

	var n int
	err := guard(func() error {
		r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return err
		}
		n = r.NumPage()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidFile, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: document has no pages", domain.ErrInvalidFile)
	}
	return n, nil
}

// Extract returns the text of every page. Empty pages yield empty text.
// More pages than the limit is ErrPageLimitExceeded; a file that cannot be
// parsed, or a page whose content cannot be decoded, is ErrCorruptFile.
func (e *Extractor) Extract(ctx context.Context, path string) ([]chunk.Page, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: stored file %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return e.read(ctx, f, info.Size())
}

func (e *Extractor) read(ctx context.Context, ra io.ReaderAt, size int64) ([]chunk.Page, error) {
	var r *pdf.Reader
	var total int
	err := guard(func() error {
		var err error
		if r, err = pdf.NewReader(ra, size); err != nil {
			return err
		}
		total = r.NumPage()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptFile, err)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrCorruptFile)
	}
	if e.maxPages > 0 && total > e.maxPages {
		return nil, domain.NewPageLimitError(total, e.maxPages)
	}

	pages := make([]chunk.Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		text, err := pageText(r, i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", domain.ErrCorruptFile, i, err)
		}
		pages = append(pages, chunk.Page{Number: i, Text: text})
	}
	return pages, nil
}

func pageText(r *pdf.Reader, i int) (string, error) {
	var text string
	err := guard(func() error {
		p := r.Page(i)
		if p.V.IsNull() {
			return errors.New("missing page object")
		}
		var err error
		text, err = p.GetPlainText(nil)
		return err
	})
	return text, err
}

// guard turns parser panics on malformed input into errors.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser: %v", rec)
		}
	}()
	return fn()
}
