package document

import (
	"fmt"

	"github.com/kailas-cloud/pdfagent/internal/domain"
)

// Status is the processing lifecycle state of a document.
type Status string

// Lifecycle: uploaded -> processing -> processed | error.
// processed and error may start a new run; nothing moves backwards to uploaded.
const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusError      Status = "error"
)

var transitions = map[Status][]Status{
	StatusUploaded:   {StatusProcessing},
	StatusProcessing: {StatusProcessed, StatusError},
	StatusProcessed:  {StatusProcessing},
	StatusError:      {StatusProcessing},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition checks that moving to next is allowed.
func (s Status) CanTransition(next Status) error {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid status transition %s -> %s", domain.ErrInvalidRequest, s, next)
}
