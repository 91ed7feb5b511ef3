package cli

import (
	"io"
	"testing"

	"github.com/kailas-cloud/pdfagent/internal/progress"
)

func TestApplyEvent_EmbeddingSetsCounts(t *testing.T) {
	bar := newProgressBar(io.Discard)

	applyEvent(bar, progress.Event{Stage: progress.StageExtracting, Total: 3})
	if bar.GetMax() != 1 {
		t.Errorf("extracting must not resize the bar, max=%d", bar.GetMax())
	}

	applyEvent(bar, progress.Event{Stage: progress.StageEmbedding, Progress: 4, Total: 10})
	if bar.GetMax() != 10 {
		t.Errorf("expected max 10, got %d", bar.GetMax())
	}
	if got := bar.State().CurrentPercent; got != 0.4 {
		t.Errorf("expected 0.4, got %v", got)
	}

	applyEvent(bar, progress.Event{Stage: progress.StageEmbedding, Progress: 10, Total: 10})
	if got := bar.State().CurrentPercent; got != 1 {
		t.Errorf("expected 1, got %v", got)
	}
}

func TestApplyEvent_EmbeddingWithoutTotal(t *testing.T) {
	bar := newProgressBar(io.Discard)

	applyEvent(bar, progress.Event{Stage: progress.StageEmbedding})
	if bar.GetMax() != 1 {
		t.Errorf("expected max unchanged, got %d", bar.GetMax())
	}
}
