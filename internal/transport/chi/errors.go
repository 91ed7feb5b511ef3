package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/logger"
)

// Error codes returned in the "code" field.
const (
	codeBadRequest         = "bad_request"
	codeUnauthorized       = "unauthorized"
	codeNotFound           = "not_found"
	codeDuplicateID        = "duplicate_id"
	codeNotProcessed       = "not_processed"
	codeInvalidFile        = "invalid_file"
	codeInvalidConfig      = "invalid_config"
	codeInvalidRequest     = "invalid_request"
	codeUnknownRequestKind = "unknown_request_kind"
	codePageLimitExceeded  = "page_limit_exceeded"
	codeCorruptFile        = "corrupt_file"
	codeEmbeddingService   = "embedding_service_error"
	codeGeneration         = "generation_error"
	codeTimeout            = "timeout"
	codeFileTooLarge       = "file_too_large"
	codeInternal           = "internal_error"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// errorHandlers is checked in order; the first match wins. Timeouts come
// before the collaborator sentinels they are wrapped with.
var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, codeTimeout, false),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound, true),
	sentinelHandler(domain.ErrDuplicateID, http.StatusConflict, codeDuplicateID, true),
	sentinelHandler(domain.ErrNotProcessed, http.StatusConflict, codeNotProcessed, true),
	sentinelHandler(domain.ErrInvalidFile, http.StatusBadRequest, codeInvalidFile, true),
	sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, codeInvalidConfig, true),
	sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeInvalidRequest, true),
	sentinelHandler(domain.ErrUnknownRequestKind, http.StatusBadRequest, codeUnknownRequestKind, true),
	sentinelHandler(domain.ErrPageLimitExceeded, http.StatusUnprocessableEntity, codePageLimitExceeded, true),
	sentinelHandler(domain.ErrCorruptFile, http.StatusUnprocessableEntity, codeCorruptFile, true),
	sentinelHandler(domain.ErrEmbeddingService, http.StatusBadGateway, codeEmbeddingService, false),
	sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, codeGeneration, false),
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Client errors carry the full message; upstream failures only the sentinel's.
func sentinelHandler(sentinel error, status int, code string, detailed bool) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if detailed {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   message,
		Code:    code,
	})
}
