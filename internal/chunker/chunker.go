// Package chunker splits extracted page text into overlapping windows.
package chunker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
)

// PageSeparator joins consecutive pages into one document text.
const PageSeparator = "\n\n"

// separators are tried in order when looking for a natural cut point.
var separators = []string{"\n\n", "\n", ". ", " "}

// Chunker cuts text into windows of at most Size characters where
// consecutive windows share exactly Overlap characters.
type Chunker struct {
	size    int
	overlap int
}

// New validates the window parameters. 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk_overlap must be in [0, %d), got %d", domain.ErrInvalidConfig, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the maximum chunk length in characters.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of characters shared by consecutive chunks.
func (c *Chunker) Overlap() int { return c.overlap }

// Join concatenates page texts the same way Split sees them.
func Join(pages []chunk.Page) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, PageSeparator)
}

// Split cuts the pages of one document into ordered chunks. Output is a pure
// function of the input and the parameters. Text with no visible characters
// yields no chunks.
func (c *Chunker) Split(documentID string, pages []chunk.Page) []chunk.Chunk {
	text := []rune(Join(pages))
	if strings.TrimSpace(string(text)) == "" {
		return nil
	}
	starts := pageStarts(pages)

	var chunks []chunk.Chunk
	start := 0
	for {
		end := min(start+c.size, len(text))
		if end < len(text) {
			end = c.cutPoint(text, start, end)
		}

		chunks = append(chunks, chunk.Chunk{
			DocumentID: documentID,
			Index:      len(chunks),
			PageNumber: pageAt(pages, starts, start),
			EndPage:    pageAt(pages, starts, end-1),
			Start:      start,
			End:        end,
			Text:       string(text[start:end]),
		})

		if end == len(text) {
			return chunks
		}
		start = end - c.overlap
	}
}

// cutPoint picks the end of the window [start, limit). It prefers the last
// separator ending inside the upper half of the window and after the overlap,
// so every step advances by at least one character.
func (c *Chunker) cutPoint(text []rune, start, limit int) int {
	lo := max(start+c.overlap+1, start+c.size/2)
	window := string(text[start:limit])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + len([]rune(window[:idx+len(sep)]))
		if cut >= lo {
			return cut
		}
	}
	return limit
}

// pageStarts returns the rune offset at which each page begins in the joined text.
func pageStarts(pages []chunk.Page) []int {
	starts := make([]int, len(pages))
	off := 0
	sepLen := len([]rune(PageSeparator))
	for i, p := range pages {
		starts[i] = off
		off += len([]rune(p.Text)) + sepLen
	}
	return starts
}

// pageAt maps a rune offset to the page that contains it. The separator after a
// page belongs to that page.
func pageAt(pages []chunk.Page, starts []int, off int) int {
	if len(pages) == 0 {
		return 0
	}
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	return pages[i].Number
}
