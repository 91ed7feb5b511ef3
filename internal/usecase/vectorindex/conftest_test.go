package vectorindex

import (
	"context"
	"errors"
	"sync"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/repository/vector"
)

// fakeRepo models generations and the active pointer in memory.
type fakeRepo struct {
	mu      sync.Mutex
	counter map[string]int64
	active  map[string]int64
	gens    map[string]map[int64][]vector.Entry
	dropped []int64

	writeErr    error
	activateErr error
	searchFn    func(docID string, vec []float32, k int) ([]vector.Hit, error)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		counter: make(map[string]int64),
		active:  make(map[string]int64),
		gens:    make(map[string]map[int64][]vector.Entry),
	}
}

func (f *fakeRepo) NextGeneration(_ context.Context, docID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter[docID]++
	return f.counter[docID], nil
}

func (f *fakeRepo) CreateGeneration(_ context.Context, docID string, gen int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gens[docID] == nil {
		f.gens[docID] = make(map[int64][]vector.Entry)
	}
	f.gens[docID][gen] = []vector.Entry{}
	return nil
}

func (f *fakeRepo) Write(_ context.Context, docID string, gen int64, entries []vector.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.gens[docID][gen] = append(f.gens[docID][gen], entries...)
	return nil
}

func (f *fakeRepo) Activate(_ context.Context, docID string, gen int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activateErr != nil {
		return 0, f.activateErr
	}
	prev := f.active[docID]
	f.active[docID] = gen
	return prev, nil
}

func (f *fakeRepo) DropGeneration(_ context.Context, docID string, gen int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.gens[docID], gen)
	f.dropped = append(f.dropped, gen)
	return nil
}

func (f *fakeRepo) Search(_ context.Context, docID string, vec []float32, k int) ([]vector.Hit, error) {
	if f.searchFn != nil {
		return f.searchFn(docID, vec, k)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.active[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var hits []vector.Hit
	for _, e := range f.gens[docID][gen] {
		if len(hits) == k {
			break
		}
		hits = append(hits, vector.Hit{Chunk: e.Chunk, Score: 1})
	}
	return hits, nil
}

func (f *fakeRepo) DeleteDocument(_ context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.gens, docID)
	delete(f.active, docID)
	return nil
}

func (f *fakeRepo) activeEntries(docID string) []vector.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.active[docID]
	if !ok {
		return nil
	}
	return f.gens[docID][gen]
}

// mockEmbedder returns one vector per text, optionally failing on a call number.
type mockEmbedder struct {
	mu       sync.Mutex
	calls    int
	failOn   int
	err      error
	embedErr error
	lastText string
}

var errEmbed = errors.New("provider unavailable")

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.mu.Unlock()
	if m.failOn > 0 && call >= m.failOn {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.lastText = text
	m.mu.Unlock()
	if m.embedErr != nil {
		return domain.EmbeddingResult{}, m.embedErr
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}
