package vector

import (
	"context"
	"encoding/binary"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kailas-cloud/pdfagent/internal/db"
)

// memStore is an in-memory stand-in for the consumer interface. KNN runs a
// brute-force cosine scan over hashes under the index prefix.
type memStore struct {
	mu      sync.Mutex
	kv      map[string][]byte
	hashes  map[string]map[string]string
	indexes map[string]*db.IndexDefinition

	hsetErr   error
	searchErr error
	dropped   []string
}

func newMemStore() *memStore {
	return &memStore{
		kv:      make(map[string][]byte),
		hashes:  make(map[string]map[string]string),
		indexes: make(map[string]*db.IndexDefinition),
	}
}

func (m *memStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hsetErr != nil {
		return m.hsetErr
	}
	for _, it := range items {
		m.hashes[it.Key] = it.Fields
	}
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.kv, k)
		delete(m.hashes, k)
	}
	return nil
}

func (m *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.kv {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	for k := range m.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

func (m *memStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(string(m.kv[key]), 10, 64)
	n++
	m.kv[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

func (m *memStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	m.indexes[def.Name] = def
	return nil
}

func (m *memStore) DropIndex(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(m.indexes, name)
	m.dropped = append(m.dropped, name)
	return nil
}

func (m *memStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	def, ok := m.indexes[q.IndexName]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	var entries []db.SearchEntry
	for k, fields := range m.hashes {
		if !strings.HasPrefix(k, def.Prefixes[0]) {
			continue
		}
		score := cosine(q.Vector, bytesToVector(fields[fieldEmbedding]))
		ret := make(map[string]string, len(q.ReturnFields))
		for _, f := range q.ReturnFields {
			ret[f] = fields[f]
		}
		entries = append(entries, db.SearchEntry{Key: k, Score: score, Fields: ret})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > q.K {
		entries = entries[:q.K]
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func (m *memStore) hashCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hashes)
}

func bytesToVector(s string) []float32 {
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
