package task

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pdfagent/internal/chunker"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
)

const gapMarker = "\n\n[...]\n\n"

// selectText returns the whole document when it fits in limit characters,
// otherwise a subset of chunks in document order chosen by policy.
func selectText(pages []chunk.Page, chunks []chunk.Chunk, limit int, policy selection) string {
	full := chunker.Join(pages)
	if limit <= 0 || utf8.RuneCountInString(full) <= limit {
		return full
	}
	if len(chunks) == 0 {
		return string([]rune(full)[:limit])
	}

	var picked []int
	switch policy {
	case tail:
		picked = pickTail(chunks, limit)
	default:
		picked = pickSpread(chunks, limit)
	}

	parts := make([]string, len(picked))
	for i, idx := range picked {
		parts[i] = fmt.Sprintf("[Page %d]\n%s", chunks[idx].PageNumber, strings.TrimSpace(chunks[idx].Text))
	}
	return strings.Join(parts, gapMarker)
}

// pickSpread chooses evenly spaced chunk indices whose total length fits in
// limit. The first chunk is always included.
func pickSpread(chunks []chunk.Chunk, limit int) []int {
	var total int
	for i := range chunks {
		total += chunks[i].Len()
	}
	avg := max(1, total/len(chunks))
	want := min(len(chunks), max(1, limit/avg))

	for ; want >= 1; want-- {
		idx := make([]int, want)
		used := 0
		for i := range want {
			idx[i] = i * len(chunks) / want
			used += chunks[idx[i]].Len()
		}
		if used <= limit || want == 1 {
			return idx
		}
	}
	return []int{0}
}

// pickTail walks back from the last chunk while the total fits in limit.
func pickTail(chunks []chunk.Chunk, limit int) []int {
	used := 0
	start := len(chunks)
	for i := len(chunks) - 1; i >= 0; i-- {
		if start < len(chunks) && used+chunks[i].Len() > limit {
			break
		}
		used += chunks[i].Len()
		start = i
	}
	idx := make([]int, 0, len(chunks)-start)
	for i := start; i < len(chunks); i++ {
		idx = append(idx, i)
	}
	return idx
}
