package chi

import (
	"context"

	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	"github.com/kailas-cloud/pdfagent/internal/progress"
	documentuc "github.com/kailas-cloud/pdfagent/internal/usecase/document"
	healthuc "github.com/kailas-cloud/pdfagent/internal/usecase/health"
	processuc "github.com/kailas-cloud/pdfagent/internal/usecase/process"
	queryuc "github.com/kailas-cloud/pdfagent/internal/usecase/query"
	taskuc "github.com/kailas-cloud/pdfagent/internal/usecase/task"
)

// Documents manages stored PDFs.
type Documents interface {
	Upload(ctx context.Context, in documentuc.UploadInput) (domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	List(ctx context.Context) ([]domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

// Processor runs the indexing pipeline.
type Processor interface {
	Process(ctx context.Context, id string) (processuc.Result, error)
	Status(ctx context.Context, id string) (progress.Event, error)
}

// Answerer answers questions over indexed documents.
type Answerer interface {
	Ask(ctx context.Context, id, question string) (queryuc.Answer, error)
	AskMany(ctx context.Context, ids []string, question string) (queryuc.MultiAnswer, error)
}

// Tasks runs summary and extraction requests.
type Tasks interface {
	Summarize(ctx context.Context, id, summaryType string) (taskuc.Summary, error)
	Extract(ctx context.Context, id, extractionType string) (taskuc.Extraction, error)
	Analyze(ctx context.Context, id string) (taskuc.Analysis, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// EventSource streams progress events.
type EventSource interface {
	Subscribe(buffer int) (<-chan progress.Event, func())
}
