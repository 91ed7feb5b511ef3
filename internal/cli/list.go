package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

type listItem struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	NumPages   int    `json:"num_pages"`
	Status     string `json:"status"`
	NumChunks  int    `json:"num_chunks"`
	Error      string `json:"error,omitempty"`
}

func runList(cmd *cobra.Command, _ []string) error {
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

	docs, err := a.documents.List(ctx)
	if err != nil {
		return err
	}

	items := make([]listItem, len(docs))
	for i := range docs {
		d := &docs[i]
		items[i] = listItem{
			DocumentID: d.ID(),
			Filename:   d.Filename(),
			NumPages:   d.NumPages(),
			Status:     string(d.Status()),
			NumChunks:  d.NumChunks(),
			Error:      d.Error(),
		}
	}

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No documents.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tPAGES\tSTATUS\tCHUNKS")
	for _, it := range items {
		status := it.Status
		if it.Error != "" {
			status += " (" + it.Error + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\n", it.DocumentID, it.Filename, it.NumPages, status, it.NumChunks)
	}
	return tw.Flush()
}
