package mcp

import (
	"context"

	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	documentuc "github.com/kailas-cloud/pdfagent/internal/usecase/document"
	processuc "github.com/kailas-cloud/pdfagent/internal/usecase/process"
	queryuc "github.com/kailas-cloud/pdfagent/internal/usecase/query"
	taskuc "github.com/kailas-cloud/pdfagent/internal/usecase/task"
)

type mockDocuments struct {
	uploaded []documentuc.UploadInput
	doc      domdoc.Document
	docs     []domdoc.Document
	err      error
}

func (m *mockDocuments) Upload(_ context.Context, in documentuc.UploadInput) (domdoc.Document, error) {
	m.uploaded = append(m.uploaded, in)
	return m.doc, m.err
}

func (m *mockDocuments) List(_ context.Context) ([]domdoc.Document, error) {
	return m.docs, m.err
}

type mockProcessor struct {
	result processuc.Result
	err    error
}

func (m *mockProcessor) Process(_ context.Context, _ string) (processuc.Result, error) {
	return m.result, m.err
}

type mockAnswerer struct {
	answer queryuc.Answer
	err    error
}

func (m *mockAnswerer) Ask(_ context.Context, _, _ string) (queryuc.Answer, error) {
	return m.answer, m.err
}

type mockTasks struct {
	summary    taskuc.Summary
	extraction taskuc.Extraction
	err        error
}

func (m *mockTasks) Summarize(_ context.Context, _, _ string) (taskuc.Summary, error) {
	return m.summary, m.err
}

func (m *mockTasks) Extract(_ context.Context, _, _ string) (taskuc.Extraction, error) {
	return m.extraction, m.err
}
