// Package cli implements the pdfagent command line.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pdfagent/internal/config"
	"github.com/kailas-cloud/pdfagent/internal/version"
)

var (
	envName string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pdfagent",
	Short: "PDF question answering over a vector index",
	Long: `pdfagent uploads PDFs, indexes their text in Valkey and answers questions,
summaries and extraction requests with an OpenAI-compatible model.

Example usage:
  pdfagent upload report.pdf --id q1-report
  pdfagent process q1-report
  pdfagent ask q1-report "What was the revenue?"
  pdfagent serve`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables win.
		_ = godotenv.Load()

		if envName == "" {
			envName = config.GetEnv()
		}

		var err error
		cfg, err = config.Load(envName)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "config environment (default $ENV or local)")
}
