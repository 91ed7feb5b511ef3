package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/logger"
)

const (
	defaultHeartbeat = 15 * time.Second
	eventBuffer      = 64
)

// Events handles GET /api/events as a Server-Sent Events stream of
// processing progress. An optional document_id query parameter filters
// the stream to one document.
func (s *Server) Events(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	log := logger.FromContext(r.Context())
	filter := r.URL.Query().Get("document_id")

	// The stream outlives the server-wide write timeout.
	clearWriteDeadline(rc, log)

	events, cancel := s.events.Subscribe(eventBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := send(w, rc, ": connected\n\n"); err != nil {
		log.Debug("SSE client gone", zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		var frame string
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			frame = ": ping\n\n"
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filter != "" && ev.DocumentID != filter {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.Warn("Failed to marshal progress event", zap.Error(err))
				continue
			}
			frame = fmt.Sprintf("event: progress\ndata: %s\n\n", data)
		}
		if err := send(w, rc, frame); err != nil {
			log.Debug("SSE client gone", zap.Error(err))
			return
		}
	}
}

func send(w http.ResponseWriter, rc *http.ResponseController, frame string) error {
	if _, err := io.WriteString(w, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}

// clearWriteDeadline lifts the server WriteTimeout for long-lived responses.
// Writers that cannot set deadlines (recorders in tests) are left as is.
func clearWriteDeadline(rc *http.ResponseController, log *zap.Logger) {
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Warn("Failed to clear write deadline", zap.Error(err))
	}
}
