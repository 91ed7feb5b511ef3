package cli

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pdfagent/internal/progress"
	processuc "github.com/kailas-cloud/pdfagent/internal/usecase/process"
)

var processCmd = &cobra.Command{
	Use:   "process <document_id>",
	Short: "Extract, chunk and index an uploaded PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

type processOutcome struct {
	res processuc.Result
	err error
}

func runProcess(cmd *cobra.Command, args []string) error {
	id := args[0]

	logger, err := newLogger(true)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := newApp(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// Subscribe before starting so the first stage is not missed.
	events, cancel := a.events.Subscribe(progress.DefaultBuffer)
	defer cancel()

	done := make(chan processOutcome, 1)
	go func() {
		res, err := a.processor.Process(ctx, id)
		done <- processOutcome{res, err}
	}()

	out := cmd.OutOrStdout()
	bar := newProgressBar(out)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.DocumentID == id {
				applyEvent(bar, ev)
			}
		case o := <-done:
			fmt.Fprintln(out)
			if o.err != nil {
				return fmt.Errorf("process %s: %w", id, o.err)
			}
			fmt.Fprintf(out, "✓ %s processed: %d pages, %d chunks\n", id, o.res.NumPages, o.res.NumChunks)
			return nil
		}
	}
}

func newProgressBar(out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(1,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Starting[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// applyEvent moves the bar to the event's stage. Only the embedding stage
// carries counts.
func applyEvent(bar *progressbar.ProgressBar, ev progress.Event) {
	switch ev.Stage {
	case progress.StageExtracting:
		bar.Describe("[cyan]Extracting[reset]")
	case progress.StageChunking:
		bar.Describe("[cyan]Chunking[reset]")
	case progress.StageEmbedding:
		bar.Describe("[cyan]Embedding[reset]")
		if ev.Total > 0 {
			if bar.GetMax() != ev.Total {
				bar.ChangeMax(ev.Total)
			}
			_ = bar.Set(ev.Progress)
		}
	case progress.StageProcessed:
		bar.Describe("[green]Processed[reset]")
		_ = bar.Finish()
	case progress.StageFailed:
		bar.Describe("[red]Failed[reset]")
	}
}
