package vector

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/pdfagent/internal/db"
	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
)

// store is the consumer interface for vector namespaces (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Incr(ctx context.Context, key string) (int64, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// IndexOptions configures the FT index of every generation.
type IndexOptions struct {
	Dimensions  int
	Algorithm   string // hnsw, flat
	M           int
	EFConstruct int
}

// Entry is one chunk with its embedding.
type Entry struct {
	Chunk  chunk.Chunk
	Vector []float32
}

// Hit is one search result.
type Hit struct {
	Chunk chunk.Chunk
	Score float64
}

// Repo stores a document's vectors as numbered generations. Readers only see
// the generation named by the active pointer, so a rebuild becomes visible in
// one SET once every entry is written.
type Repo struct {
	store store
	keys  keys
	opts  IndexOptions
}

// New creates a vector repository.
func New(s store, keyPrefix string, opts IndexOptions) *Repo {
	return &Repo{store: s, keys: keys{prefix: keyPrefix}, opts: opts}
}

// NextGeneration allocates a fresh generation number for docID.
func (r *Repo) NextGeneration(ctx context.Context, docID string) (int64, error) {
	gen, err := r.store.Incr(ctx, r.keys.counter(docID))
	if err != nil {
		return 0, fmt.Errorf("allocate generation for %s: %w", docID, err)
	}
	return gen, nil
}

// CreateGeneration creates the FT index of a new, empty generation.
func (r *Repo) CreateGeneration(ctx context.Context, docID string, gen int64) error {
	b := db.NewIndex(r.keys.index(docID, gen)).
		Prefix(r.keys.generation(docID, gen)).
		Tag(fieldDocumentID).
		Numeric(fieldChunkIndex)
	if r.opts.Algorithm == "flat" {
		b = b.VectorFlat(fieldEmbedding, r.opts.Dimensions, db.DistanceCosine, 0)
	} else {
		b = b.VectorHNSW(fieldEmbedding, r.opts.Dimensions, db.DistanceCosine, r.opts.M, r.opts.EFConstruct)
	}
	def, err := b.Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Write stores entries into a generation in one pipelined round-trip.
func (r *Repo) Write(ctx context.Context, docID string, gen int64, entries []Entry) error {
	items := make([]db.HashSetItem, len(entries))
	for i := range entries {
		e := &entries[i]
		if len(e.Vector) != r.opts.Dimensions {
			return fmt.Errorf("chunk %d: vector has %d dimensions, index expects %d",
				e.Chunk.Index, len(e.Vector), r.opts.Dimensions)
		}
		items[i] = db.HashSetItem{
			Key:    r.keys.entry(docID, gen, e.Chunk.Index),
			Fields: buildHashFields(&e.Chunk, e.Vector),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("write %d entries: %w", len(items), err)
	}
	return nil
}

// Activate points docID at gen and returns the previously active generation
// (0 when there was none).
func (r *Repo) Activate(ctx context.Context, docID string, gen int64) (int64, error) {
	prev, err := r.Active(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	if err := r.store.Set(ctx, r.keys.active(docID), []byte(strconv.FormatInt(gen, 10))); err != nil {
		return 0, fmt.Errorf("activate generation %d: %w", gen, err)
	}
	return prev, nil
}

// Active returns the active generation, ErrNotFound if docID was never indexed.
func (r *Repo) Active(ctx context.Context, docID string) (int64, error) {
	raw, err := r.store.Get(ctx, r.keys.active(docID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, fmt.Errorf("%w: no vector index for %s", domain.ErrNotFound, docID)
		}
		return 0, fmt.Errorf("get active generation: %w", err)
	}
	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse active generation %q: %w", raw, err)
	}
	return gen, nil
}

// DropGeneration removes a generation's index and entries. Missing pieces are fine.
func (r *Repo) DropGeneration(ctx context.Context, docID string, gen int64) error {
	if err := r.store.DropIndex(ctx, r.keys.index(docID, gen)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	return r.deleteMatching(ctx, r.keys.generation(docID, gen)+"*")
}

// Search runs KNN over the active generation. Results are sorted by
// descending similarity and never exceed k.
func (r *Repo) Search(ctx context.Context, docID string, vec []float32, k int) ([]Hit, error) {
	gen, err := r.Active(ctx, docID)
	if err != nil {
		return nil, err
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.keys.index(docID, gen),
		Vector:       vec,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: vector index for %s", domain.ErrNotFound, docID)
		}
		return nil, fmt.Errorf("search %s: %w", docID, err)
	}

	hits := make([]Hit, 0, min(k, len(res.Entries)))
	for _, e := range res.Entries {
		if len(hits) == k {
			break
		}
		hits = append(hits, Hit{Chunk: parseHashFields(e.Fields), Score: e.Score})
	}
	return hits, nil
}

// DeleteDocument removes every generation and pointer of docID. Idempotent.
func (r *Repo) DeleteDocument(ctx context.Context, docID string) error {
	last, err := r.lastGeneration(ctx, docID)
	if err != nil {
		return err
	}
	for gen := int64(1); gen <= last; gen++ {
		if err := r.store.DropIndex(ctx, r.keys.index(docID, gen)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index: %w", err)
		}
	}
	return r.deleteMatching(ctx, r.keys.doc(docID)+"*")
}

// lastGeneration reads the counter without advancing it.
func (r *Repo) lastGeneration(ctx context.Context, docID string) (int64, error) {
	raw, err := r.store.Get(ctx, r.keys.counter(docID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get generation counter: %w", err)
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse generation counter %q: %w", raw, err)
	}
	return n, nil
}

func (r *Repo) deleteMatching(ctx context.Context, pattern string) error {
	found, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	const batch = 500
	for i := 0; i < len(found); i += batch {
		if err := r.store.Del(ctx, found[i:min(i+batch, len(found))]...); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
	}
	return nil
}
