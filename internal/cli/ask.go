package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <document_id> <question>",
	Short: "Ask a question about a processed document",
	Long: `Ask a question about a processed document. Words after the id are joined
into the question, so quoting is optional.

Examples:
  pdfagent ask q1-report "What was the revenue?"
  pdfagent ask q1-report who signed the contract --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	id, question := args[0], strings.Join(args[1:], " ")

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

	ans, err := a.answers.Ask(ctx, id, question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	fmt.Fprintln(out, ans.Answer)
	if len(ans.Sources) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, s := range ans.Sources {
			fmt.Fprintf(out, "  [page %d, score %.3f] %s\n", s.PageNumber, s.Score, s.ContentPreview)
		}
	}
	return nil
}
