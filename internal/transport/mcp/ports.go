package mcp

import (
	"context"

	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	documentuc "github.com/kailas-cloud/pdfagent/internal/usecase/document"
	processuc "github.com/kailas-cloud/pdfagent/internal/usecase/process"
	queryuc "github.com/kailas-cloud/pdfagent/internal/usecase/query"
	taskuc "github.com/kailas-cloud/pdfagent/internal/usecase/task"
)

// Documents registers and lists stored PDFs.
type Documents interface {
	Upload(ctx context.Context, in documentuc.UploadInput) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
}

// Processor runs the indexing pipeline.
type Processor interface {
	Process(ctx context.Context, id string) (processuc.Result, error)
}

// Answerer answers questions over one document.
type Answerer interface {
	Ask(ctx context.Context, id, question string) (queryuc.Answer, error)
}

// Tasks runs summary and extraction requests.
type Tasks interface {
	Summarize(ctx context.Context, id, summaryType string) (taskuc.Summary, error)
	Extract(ctx context.Context, id, extractionType string) (taskuc.Extraction, error)
}

// Ports aggregates the services the MCP server drives.
type Ports struct {
	Documents Documents
	Processor Processor
	Answerer  Answerer
	Tasks     Tasks
}

// Validate ensures all ports are set.
func (p *Ports) Validate() error {
	if p.Documents == nil || p.Processor == nil || p.Answerer == nil || p.Tasks == nil {
		return ErrMissingService
	}
	return nil
}
