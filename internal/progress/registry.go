// Package progress holds in-flight processing state and fans stage events out
// to subscribers (SSE stream, CLI progress bar).
package progress

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage of a processing run.
type Stage string

// Pipeline stages. Processed and Failed are terminal.
const (
	StageExtracting Stage = "extracting"
	StageChunking   Stage = "chunking"
	StageEmbedding  Stage = "embedding"
	StageProcessed  Stage = "processed"
	StageFailed     Stage = "error"
)

// Terminal reports whether the run is over.
func (s Stage) Terminal() bool { return s == StageProcessed || s == StageFailed }

// Event is one progress update.
type Event struct {
	DocumentID string    `json:"document_id"`
	Stage      Stage     `json:"stage"`
	Progress   int       `json:"progress"`
	Total      int       `json:"total"`
	Message    string    `json:"message,omitempty"`
	Time       time.Time `json:"time"`
}

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

type subscriber struct {
	ch chan Event
}

// Registry is the process-wide status registry. It starts empty and is
// cleared by Close. Publish never blocks: a subscriber with a full buffer
// misses the event.
type Registry struct {
	mu     sync.RWMutex
	status map[string]Event
	subs   map[*subscriber]struct{}
	closed bool
	now    func() time.Time
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		status: make(map[string]Event),
		subs:   make(map[*subscriber]struct{}),
		now:    time.Now,
		logger: logger,
	}
}

// Publish records ev as the document's current status and broadcasts it.
// Terminal events remove the in-flight entry.
func (r *Registry) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if ev.Stage.Terminal() {
		delete(r.status, ev.DocumentID)
	} else {
		r.status[ev.DocumentID] = ev
	}

	for s := range r.subs {
		select {
		case s.ch <- ev:
		default:
			r.logger.Warn("Dropping progress event; subscriber buffer full",
				zap.String("document_id", ev.DocumentID),
				zap.String("stage", string(ev.Stage)),
			)
		}
	}
}

// Subscribe returns a channel of future events and a cancel func that
// unsubscribes and closes the channel. Cancel is safe to call more than once.
func (r *Registry) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &subscriber{ch: make(chan Event, buffer)}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	r.subs[s] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if _, ok := r.subs[s]; ok {
				delete(r.subs, s)
				close(s.ch)
			}
		})
	}
}

// Status returns the in-flight status of a document.
func (r *Registry) Status(documentID string) (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.status[documentID]
	return ev, ok
}

// Close drops all state and closes every subscriber channel.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for s := range r.subs {
		close(s.ch)
	}
	r.subs = make(map[*subscriber]struct{})
	r.status = make(map[string]Event)
}
