package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	documentuc "github.com/kailas-cloud/pdfagent/internal/usecase/document"
)

var uploadID string

var uploadCmd = &cobra.Command{
	Use:   "upload <file|glob>...",
	Short: "Upload PDF files",
	Long: `Upload one or more PDF files. Arguments may be doublestar globs.

Examples:
  pdfagent upload report.pdf --id q1-report
  pdfagent upload 'papers/**/*.pdf'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadID, "id", "", "document id (single file only; generated when empty)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	paths, err := expandPatterns(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match %v", args)
	}
	if uploadID != "" && len(paths) > 1 {
		return fmt.Errorf("--id needs exactly one file, %d matched", len(paths))
	}

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

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			failed++
			continue
		}
		doc, err := a.documents.Upload(ctx, documentuc.UploadInput{
			DocumentID: uploadID,
			Filename:   filepath.Base(path),
			Data:       data,
		})
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "✓ %s -> %s (%d pages)\n", path, doc.ID(), doc.NumPages())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
	}
	return nil
}

// expandPatterns resolves glob arguments to files, keeping plain paths as
// given. Results are de-duplicated and sorted per argument.
func expandPatterns(args []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, arg := range args {
		if !doublestar.ValidatePattern(arg) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// keep the argument so the read reports what is wrong with it
			matches = []string{arg}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}
