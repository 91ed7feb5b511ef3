package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	documentuc "github.com/kailas-cloud/pdfagent/internal/usecase/document"
)

// Tool failures are reported through Success and Error in the output rather
// than as protocol errors.
const missingArgs = "Missing required arguments"

// UploadInput is the input schema for upload_pdf.
type UploadInput struct {
	FilePath   string `json:"file_path" jsonschema:"path to the PDF file on the local filesystem"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"identifier to register the document under (generated when empty)"`
}

// UploadOutput is the output schema for upload_pdf.
type UploadOutput struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	NumPages   int    `json:"num_pages,omitempty"`
	Message    string `json:"message,omitempty"`
}

// DocumentInput identifies a single document.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"identifier of an uploaded document"`
}

// ProcessOutput is the output schema for process_pdf.
type ProcessOutput struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	NumPages   int    `json:"num_pages,omitempty"`
	NumChunks  int    `json:"num_chunks,omitempty"`
	Message    string `json:"message,omitempty"`
}

// QueryInput is the input schema for query_pdf.
type QueryInput struct {
	DocumentID string `json:"document_id" jsonschema:"identifier of a processed document"`
	Query      string `json:"query" jsonschema:"question to answer from the document"`
}

// SourceOutput is one retrieved chunk backing an answer.
type SourceOutput struct {
	PageNumber     int     `json:"page_number"`
	ContentPreview string  `json:"content_preview"`
	Score          float64 `json:"score"`
}

// QueryOutput is the output schema for query_pdf.
type QueryOutput struct {
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	DocumentID string         `json:"document_id,omitempty"`
	Query      string         `json:"query,omitempty"`
	Answer     string         `json:"answer,omitempty"`
	Sources    []SourceOutput `json:"sources,omitempty"`
}

// SummarizeInput is the input schema for summarize_pdf.
type SummarizeInput struct {
	DocumentID  string `json:"document_id" jsonschema:"identifier of a processed document"`
	SummaryType string `json:"summary_type,omitempty" jsonschema:"brief, detailed or executive (default detailed)"`
}

// SummarizeOutput is the output schema for summarize_pdf.
type SummarizeOutput struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	DocumentID  string `json:"document_id,omitempty"`
	SummaryType string `json:"summary_type,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

// ExtractInput is the input schema for extract_pdf.
type ExtractInput struct {
	DocumentID     string `json:"document_id" jsonschema:"identifier of a processed document"`
	ExtractionType string `json:"extraction_type,omitempty" jsonschema:"key_points, statistics, references, definitions or action_items (default key_points)"`
}

// ExtractOutput is the output schema for extract_pdf.
type ExtractOutput struct {
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
	ExtractionType string `json:"extraction_type,omitempty"`
	ExtractedInfo  string `json:"extracted_info,omitempty"`
}

// ListInput is the empty input schema for list_pdfs.
type ListInput struct{}

// DocumentOutput describes one stored document.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	NumPages   int    `json:"num_pages"`
	Status     string `json:"status"`
	Processed  bool   `json:"processed"`
	NumChunks  int    `json:"num_chunks,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ListOutput is the output schema for list_pdfs.
type ListOutput struct {
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_pdf",
		Description: "Upload a PDF file for processing",
	}, s.handleUpload)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "process_pdf",
		Description: "Extract, chunk and index an uploaded PDF",
	}, s.handleProcess)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_pdf",
		Description: "Ask a question about a processed PDF",
	}, s.handleQuery)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_pdf",
		Description: "Generate a summary of a processed PDF",
	}, s.handleSummarize)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_pdf",
		Description: "Extract specific information from a processed PDF",
	}, s.handleExtract)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_pdfs",
		Description: "List all uploaded PDFs and their status",
	}, s.handleList)
}

func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	if strings.TrimSpace(input.FilePath) == "" {
		return nil, UploadOutput{Error: missingArgs}, nil
	}

	data, err := os.ReadFile(filepath.Clean(input.FilePath))
	if err != nil {
		return nil, UploadOutput{Error: err.Error()}, nil
	}

	doc, err := s.ports.Documents.Upload(ctx, documentuc.UploadInput{
		DocumentID: input.DocumentID,
		Filename:   filepath.Base(input.FilePath),
		Data:       data,
	})
	if err != nil {
		s.logger.Warn("upload_pdf failed", zap.String("file_path", input.FilePath), zap.Error(err))
		return nil, UploadOutput{Error: err.Error()}, nil
	}

	return nil, UploadOutput{
		Success:    true,
		DocumentID: doc.ID(),
		NumPages:   doc.NumPages(),
		Message:    "PDF uploaded successfully",
	}, nil
}

func (s *Server) handleProcess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, ProcessOutput, error) {
	if strings.TrimSpace(input.DocumentID) == "" {
		return nil, ProcessOutput{Error: "Missing document_id"}, nil
	}

	res, err := s.ports.Processor.Process(ctx, input.DocumentID)
	if err != nil {
		s.logger.Warn("process_pdf failed", zap.String("document_id", input.DocumentID), zap.Error(err))
		return nil, ProcessOutput{Error: err.Error()}, nil
	}

	return nil, ProcessOutput{
		Success:    true,
		DocumentID: input.DocumentID,
		NumPages:   res.NumPages,
		NumChunks:  res.NumChunks,
		Message:    "PDF processed successfully",
	}, nil
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	if strings.TrimSpace(input.DocumentID) == "" || strings.TrimSpace(input.Query) == "" {
		return nil, QueryOutput{Error: missingArgs}, nil
	}

	ans, err := s.ports.Answerer.Ask(ctx, input.DocumentID, input.Query)
	if err != nil {
		return nil, QueryOutput{Error: err.Error()}, nil
	}

	sources := make([]SourceOutput, len(ans.Sources))
	for i, src := range ans.Sources {
		sources[i] = SourceOutput{PageNumber: src.PageNumber, ContentPreview: src.ContentPreview, Score: src.Score}
	}
	return nil, QueryOutput{
		Success:    true,
		DocumentID: ans.DocumentID,
		Query:      ans.Query,
		Answer:     ans.Answer,
		Sources:    sources,
	}, nil
}

func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, SummarizeOutput, error) {
	if strings.TrimSpace(input.DocumentID) == "" {
		return nil, SummarizeOutput{Error: "Missing document_id"}, nil
	}

	sum, err := s.ports.Tasks.Summarize(ctx, input.DocumentID, input.SummaryType)
	if err != nil {
		return nil, SummarizeOutput{Error: err.Error()}, nil
	}

	return nil, SummarizeOutput{
		Success:     true,
		DocumentID:  sum.DocumentID,
		SummaryType: sum.SummaryType,
		Summary:     sum.Summary,
	}, nil
}

func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	if strings.TrimSpace(input.DocumentID) == "" {
		return nil, ExtractOutput{Error: "Missing document_id"}, nil
	}

	ext, err := s.ports.Tasks.Extract(ctx, input.DocumentID, input.ExtractionType)
	if err != nil {
		return nil, ExtractOutput{Error: err.Error()}, nil
	}

	return nil, ExtractOutput{
		Success:        true,
		DocumentID:     ext.DocumentID,
		ExtractionType: ext.ExtractionType,
		ExtractedInfo:  ext.ExtractedInfo,
	}, nil
}

func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	docs, err := s.ports.Documents.List(ctx)
	if err != nil {
		return nil, ListOutput{Error: err.Error(), Documents: []DocumentOutput{}}, nil
	}

	out := ListOutput{
		Success:   true,
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		d := &docs[i]
		out.Documents[i] = DocumentOutput{
			DocumentID: d.ID(),
			Filename:   d.Filename(),
			NumPages:   d.NumPages(),
			Status:     string(d.Status()),
			Processed:  d.Processed(),
			NumChunks:  d.NumChunks(),
			Error:      d.Error(),
		}
	}
	return nil, out, nil
}
