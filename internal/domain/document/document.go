package document

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/pdfagent/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxIDLength bounds document identifiers.
const MaxIDLength = 256

// Document is the uploaded PDF aggregate. Mutation goes through the status
// transitions below so dependent fields always change together.
type Document struct {
	id         string
	filename   string
	path       string
	numPages   int
	fileSize   int64
	fileHash   string
	uploadedAt time.Time
	status     Status
	numChunks  int
	errMsg     string
}

// ValidateID checks the document identifier format.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: document ID is required", domain.ErrInvalidRequest)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: document ID too long (max %d)", domain.ErrInvalidRequest, MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("%w: document ID must be alphanumeric with underscores and hyphens", domain.ErrInvalidRequest)
	}
	return nil
}

// New validates and creates a freshly uploaded Document.
func New(id, filename, path string, numPages int, fileSize int64, fileHash string, now time.Time) (Document, error) {
	if err := ValidateID(id); err != nil {
		return Document{}, err
	}
	if filename == "" {
		return Document{}, fmt.Errorf("%w: filename is required", domain.ErrInvalidFile)
	}
	if numPages <= 0 {
		return Document{}, fmt.Errorf("%w: document has no pages", domain.ErrInvalidFile)
	}
	return Document{
		id:         id,
		filename:   filename,
		path:       path,
		numPages:   numPages,
		fileSize:   fileSize,
		fileHash:   fileHash,
		uploadedAt: now.UTC(),
		status:     StatusUploaded,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, filename, path string, numPages int, fileSize int64, fileHash string,
	uploadedAt time.Time, status Status, numChunks int, errMsg string,
) Document {
	return Document{
		id: id, filename: filename, path: path, numPages: numPages, fileSize: fileSize,
		fileHash: fileHash, uploadedAt: uploadedAt, status: status, numChunks: numChunks, errMsg: errMsg,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Filename returns the original upload name.
func (d *Document) Filename() string { return d.filename }

// Path returns the stored file location.
func (d *Document) Path() string { return d.path }

// NumPages returns the page count recorded at upload.
func (d *Document) NumPages() int { return d.numPages }

// FileSize returns the stored file size in bytes.
func (d *Document) FileSize() int64 { return d.fileSize }

// FileHash returns the hex MD5 of the upload.
func (d *Document) FileHash() string { return d.fileHash }

// UploadedAt returns the upload timestamp (UTC).
func (d *Document) UploadedAt() time.Time { return d.uploadedAt }

// Status returns the processing status.
func (d *Document) Status() Status { return d.status }

// NumChunks returns the chunk count of the last successful run.
func (d *Document) NumChunks() int { return d.numChunks }

// Error returns the message recorded by the last failed run.
func (d *Document) Error() string { return d.errMsg }

// Processed reports whether the document can serve queries.
func (d *Document) Processed() bool { return d.status == StatusProcessed }

// StartProcessing moves the document into a fresh processing run. Results of
// a previous run are cleared.
func (d *Document) StartProcessing() error {
	if err := d.status.CanTransition(StatusProcessing); err != nil {
		return err
	}
	d.status = StatusProcessing
	d.numChunks = 0
	d.errMsg = ""
	return nil
}

// MarkProcessed records a successful run.
func (d *Document) MarkProcessed(numChunks int) error {
	if err := d.status.CanTransition(StatusProcessed); err != nil {
		return err
	}
	d.status = StatusProcessed
	d.numChunks = numChunks
	d.errMsg = ""
	return nil
}

// MarkFailed records a failed run. The chunk count is cleared because the
// document no longer serves queries.
func (d *Document) MarkFailed(msg string) error {
	if err := d.status.CanTransition(StatusError); err != nil {
		return err
	}
	d.status = StatusError
	d.numChunks = 0
	d.errMsg = msg
	return nil
}
