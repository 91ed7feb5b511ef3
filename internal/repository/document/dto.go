package document

import (
	"encoding/binary"
	"time"

	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
)

// record is the persisted metadata layout (one JSON value per document).
type record struct {
	ID         string    `json:"document_id"`
	Filename   string    `json:"filename"`
	FilePath   string    `json:"file_path"`
	NumPages   int       `json:"num_pages"`
	FileSize   int64     `json:"file_size"`
	FileHash   string    `json:"file_hash"`
	UploadedAt time.Time `json:"uploaded_at"`
	Status     string    `json:"status"`
	Processed  bool      `json:"processed"`
	NumChunks  int       `json:"num_chunks,omitempty"`
	Error      string    `json:"error,omitempty"`
	Seq        uint64    `json:"seq"`
}

func toRecord(doc *domdoc.Document, seq uint64) record {
	return record{
		ID:         doc.ID(),
		Filename:   doc.Filename(),
		FilePath:   doc.Path(),
		NumPages:   doc.NumPages(),
		FileSize:   doc.FileSize(),
		FileHash:   doc.FileHash(),
		UploadedAt: doc.UploadedAt(),
		Status:     string(doc.Status()),
		Processed:  doc.Processed(),
		NumChunks:  doc.NumChunks(),
		Error:      doc.Error(),
		Seq:        seq,
	}
}

func (r *record) toDomain() domdoc.Document {
	return domdoc.Reconstruct(
		r.ID, r.Filename, r.FilePath, r.NumPages, r.FileSize, r.FileHash,
		r.UploadedAt, domdoc.Status(r.Status), r.NumChunks, r.Error,
	)
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
