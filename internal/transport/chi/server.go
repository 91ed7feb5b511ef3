package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	domdoc "github.com/kailas-cloud/pdfagent/internal/domain/document"
	"github.com/kailas-cloud/pdfagent/internal/metrics"
	"github.com/kailas-cloud/pdfagent/internal/progress"
	documentuc "github.com/kailas-cloud/pdfagent/internal/usecase/document"
	healthuc "github.com/kailas-cloud/pdfagent/internal/usecase/health"
	processuc "github.com/kailas-cloud/pdfagent/internal/usecase/process"
	queryuc "github.com/kailas-cloud/pdfagent/internal/usecase/query"
	taskuc "github.com/kailas-cloud/pdfagent/internal/usecase/task"
)

const (
	defaultMaxUploadBytes = 100 << 20
	multipartMemory       = 32 << 20
)

// Server serves the REST API.
type Server struct {
	documents      Documents
	processor      Processor
	answers        Answerer
	tasks          Tasks
	health         HealthChecker
	events         EventSource
	logger         *zap.Logger
	maxUploadBytes int64
	heartbeat      time.Duration
}

// NewServer creates an HTTP API server.
func NewServer(
	documents Documents,
	processor Processor,
	answers Answerer,
	tasks Tasks,
	health HealthChecker,
	events EventSource,
	logger *zap.Logger,
) *Server {
	return &Server{
		documents:      documents,
		processor:      processor,
		answers:        answers,
		tasks:          tasks,
		health:         health,
		events:         events,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
		heartbeat:      defaultHeartbeat,
	}
}

// WithMaxUploadBytes caps multipart upload size. Non-positive keeps the default.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

// Handler builds the router with the full middleware chain.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.Upload)
		r.Post("/process", s.Process)
		r.Post("/query", s.Query)
		r.Post("/query/multi", s.QueryMulti)
		r.Post("/summarize", s.Summarize)
		r.Post("/extract", s.Extract)
		r.Post("/analyze", s.Analyze)
		r.Get("/events", s.Events)

		r.Get("/documents", s.ListDocuments)
		r.Route("/documents/{documentID}", func(r chi.Router) {
			r.Get("/", s.GetDocument)
			r.Delete("/", s.DeleteDocument)
			r.Get("/status", s.DocumentStatus)
		})
	})
	return r
}

type documentResponse struct {
	DocumentID string    `json:"document_id"`
	Filename   string    `json:"filename"`
	FilePath   string    `json:"file_path"`
	NumPages   int       `json:"num_pages"`
	FileSize   int64     `json:"file_size"`
	FileHash   string    `json:"file_hash"`
	UploadedAt time.Time `json:"upload_time"`
	Status     string    `json:"status"`
	Processed  bool      `json:"processed"`
	NumChunks  int       `json:"num_chunks,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func documentToResponse(d *domdoc.Document) documentResponse {
	return documentResponse{
		DocumentID: d.ID(),
		Filename:   d.Filename(),
		FilePath:   d.Path(),
		NumPages:   d.NumPages(),
		FileSize:   d.FileSize(),
		FileHash:   d.FileHash(),
		UploadedAt: d.UploadedAt(),
		Status:     string(d.Status()),
		Processed:  d.Processed(),
		NumChunks:  d.NumChunks(),
		Error:      d.Error(),
	}
}

// Upload handles POST /api/upload (multipart "file", optional "document_id").
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid multipart body: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "read upload: "+err.Error())
		return
	}

	doc, err := s.documents.Upload(r.Context(), documentuc.UploadInput{
		DocumentID: r.FormValue("document_id"),
		Filename:   header.Filename,
		Data:       data,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/documents/"+doc.ID())
	writeJSON(w, http.StatusCreated, struct {
		Success    bool             `json:"success"`
		DocumentID string           `json:"document_id"`
		NumPages   int              `json:"num_pages"`
		Message    string           `json:"message"`
		Document   documentResponse `json:"document"`
	}{true, doc.ID(), doc.NumPages(), "PDF uploaded successfully", documentToResponse(&doc)})
}

type processRequest struct {
	DocumentID string `json:"document_id"`
}

// Process handles POST /api/process.
func (s *Server) Process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireDocumentID(w, req.DocumentID) {
		return
	}

	// A run over a large document can take longer than the server WriteTimeout.
	clearWriteDeadline(http.NewResponseController(w), s.logger)

	res, err := s.processor.Process(r.Context(), req.DocumentID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success    bool   `json:"success"`
		DocumentID string `json:"document_id"`
		processuc.Result
		Message string `json:"message"`
	}{true, req.DocumentID, res, "PDF processed successfully"})
}

type queryRequest struct {
	DocumentID string `json:"document_id"`
	Query      string `json:"query"`
}

// Query handles POST /api/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireDocumentID(w, req.DocumentID) {
		return
	}

	ans, err := s.answers.Ask(r.Context(), req.DocumentID, req.Query)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		queryuc.Answer
	}{true, ans})
}

type multiQueryRequest struct {
	DocumentIDs []string `json:"document_ids"`
	Query       string   `json:"query"`
}

// QueryMulti handles POST /api/query/multi.
func (s *Server) QueryMulti(w http.ResponseWriter, r *http.Request) {
	var req multiQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "document_ids is required")
		return
	}

	ans, err := s.answers.AskMany(r.Context(), req.DocumentIDs, req.Query)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		queryuc.MultiAnswer
	}{true, ans})
}

type summarizeRequest struct {
	DocumentID  string `json:"document_id"`
	SummaryType string `json:"summary_type"`
}

// Summarize handles POST /api/summarize.
func (s *Server) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireDocumentID(w, req.DocumentID) {
		return
	}

	sum, err := s.tasks.Summarize(r.Context(), req.DocumentID, req.SummaryType)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		taskuc.Summary
	}{true, sum})
}

type extractRequest struct {
	DocumentID     string `json:"document_id"`
	ExtractionType string `json:"extraction_type"`
}

// Extract handles POST /api/extract.
func (s *Server) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireDocumentID(w, req.DocumentID) {
		return
	}

	ext, err := s.tasks.Extract(r.Context(), req.DocumentID, req.ExtractionType)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		taskuc.Extraction
	}{true, ext})
}

// Analyze handles POST /api/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireDocumentID(w, req.DocumentID) {
		return
	}

	res, err := s.tasks.Analyze(r.Context(), req.DocumentID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		taskuc.Analysis
	}{true, res})
}

// ListDocuments handles GET /api/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	items := make([]documentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}

	writeJSON(w, http.StatusOK, struct {
		Success   bool               `json:"success"`
		Documents []documentResponse `json:"documents"`
	}{true, items})
}

// GetDocument handles GET /api/documents/{documentID}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success  bool             `json:"success"`
		Document documentResponse `json:"document"`
	}{true, documentToResponse(&doc)})
}

// DeleteDocument handles DELETE /api/documents/{documentID}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	if err := s.documents.Delete(r.Context(), id); err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success    bool   `json:"success"`
		DocumentID string `json:"document_id"`
		Message    string `json:"message"`
	}{true, id, "Document deleted"})
}

// DocumentStatus handles GET /api/documents/{documentID}/status.
func (s *Server) DocumentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	ev, err := s.processor.Status(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		progress.Event
	}{true, ev})
}

type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: report.Status,
		Checks: report.Checks,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func requireDocumentID(w http.ResponseWriter, id string) bool {
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, domain.ErrInvalidRequest.Error()+": document_id is required")
		return false
	}
	return true
}
