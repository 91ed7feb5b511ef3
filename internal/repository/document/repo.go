package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
)

var (
	bucketDocs  = []byte("documents")
	bucketOrder = []byte("upload_order")
)

// lockTimeout bounds the wait for the metadata file lock.
const lockTimeout = time.Second

// ErrLocked is returned by Open when another process holds the metadata file.
var ErrLocked = errors.New("data dir in use by another pdfagent process")

// Repo persists uploaded files under <data_dir>/uploads and their metadata in
// a bbolt file. Every mutation is a single bbolt transaction.
type Repo struct {
	db        *bbolt.DB
	uploadDir string
}

// Open creates the data directory layout and opens the metadata database.
func Open(dataDir string) (*Repo, error) {
	uploadDir := filepath.Join(dataDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dataDir, "metadata.db")
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: lockTimeout})
	if errors.Is(err, bbolt.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketOrder} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repo{db: db, uploadDir: uploadDir}, nil
}

// Close releases the database file lock.
func (r *Repo) Close() error {
	return r.db.Close()
}

// FilePath returns where the upload for id is stored.
func (r *Repo) FilePath(id string) string {
	return filepath.Join(r.uploadDir, id+".pdf")
}

// Create stores the file and an uploaded-status record. A duplicate id fails
// with ErrDuplicateID and leaves the existing document untouched.
func (r *Repo) Create(ctx context.Context, doc *domdoc.Document, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	written := false
	err := r.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		if docs.Get([]byte(doc.ID())) != nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateID, doc.ID())
		}

		if err := writeFileAtomic(doc.Path(), data); err != nil {
			return err
		}
		written = true

		order := tx.Bucket(bucketOrder)
		seq, err := order.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		if err := order.Put(seqKey(seq), []byte(doc.ID())); err != nil {
			return fmt.Errorf("put order: %w", err)
		}
		return putRecord(docs, toRecord(doc, seq))
	})
	if err != nil && written {
		_ = os.Remove(doc.Path())
	}
	return err
}

// Get returns a document by id.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	if err := ctx.Err(); err != nil {
		return domdoc.Document{}, err
	}

	var doc domdoc.Document
	err := r.db.View(func(tx *bbolt.Tx) error {
		rec, err := getRecord(tx.Bucket(bucketDocs), id)
		if err != nil {
			return err
		}
		doc = rec.toDomain()
		return nil
	})
	return doc, err
}

// List returns all documents in upload order.
func (r *Repo) List(ctx context.Context) ([]domdoc.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domdoc.Document
	err := r.db.View(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		return tx.Bucket(bucketOrder).ForEach(func(_, id []byte) error {
			rec, err := getRecord(docs, string(id))
			if err != nil {
				return err
			}
			out = append(out, rec.toDomain())
			return nil
		})
	})
	return out, err
}

// Update applies fn to the stored document and persists the result in one
// transaction. If fn fails nothing is written.
func (r *Repo) Update(
	ctx context.Context, id string, fn func(*domdoc.Document) error,
) (domdoc.Document, error) {
	if err := ctx.Err(); err != nil {
		return domdoc.Document{}, err
	}

	var doc domdoc.Document
	err := r.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		rec, err := getRecord(docs, id)
		if err != nil {
			return err
		}
		doc = rec.toDomain()
		if err := fn(&doc); err != nil {
			return err
		}
		return putRecord(docs, toRecord(&doc, rec.Seq))
	})
	if err != nil {
		return domdoc.Document{}, err
	}
	return doc, nil
}

// Delete removes the record and the stored file.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var path string
	err := r.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		rec, err := getRecord(docs, id)
		if err != nil {
			return err
		}
		path = rec.FilePath
		if err := tx.Bucket(bucketOrder).Delete(seqKey(rec.Seq)); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		return docs.Delete([]byte(id))
	})
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func getRecord(b *bbolt.Bucket, id string) (record, error) {
	data := b.Get([]byte(id))
	if data == nil {
		return record{}, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return rec, nil
}

func putRecord(b *bbolt.Bucket, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", rec.ID, err)
	}
	if err := b.Put([]byte(rec.ID), data); err != nil {
		return fmt.Errorf("put document %s: %w", rec.ID, err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename upload: %w", err)
	}
	return nil
}
