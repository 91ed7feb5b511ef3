package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	logpkg "github.com/kailas-cloud/pdfagent/internal/logger"
	mcpTransport "github.com/kailas-cloud/pdfagent/internal/transport/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve MCP tools over stdio",
	Long: `Serve the upload_pdf, process_pdf, query_pdf, summarize_pdf, extract_pdf and
list_pdfs tools over the Model Context Protocol on stdin/stdout. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(false, logpkg.WithStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := mcpTransport.NewServer(&mcpTransport.Ports{
		Documents: a.documents,
		Processor: a.processor,
		Answerer:  a.answers,
		Tasks:     a.tasks,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("Serving MCP over stdio")
	return server.Run(ctx)
}
