// ABOUTME: Status command reporting index size and configured models
// ABOUTME: Reads registry and vector store counts without calling the provider
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index and configuration status",
		Long: `Show how many documents and chunks are indexed, the embedding
dimension, the registry backend and the configured models.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	status, err := a.Status(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, status)
	}

	provider := "ready"
	if !status.ProviderReady {
		provider = "OPENAI_API_KEY not set"
	}

	fmt.Fprintln(out, heading("Index"))
	fmt.Fprintf(out, "  Documents:  %d registered, %d indexed\n", status.Documents, status.IndexedDocs)
	fmt.Fprintf(out, "  Chunks:     %d\n", status.Chunks)
	fmt.Fprintf(out, "  Dimension:  %d\n", status.Dimension)
	fmt.Fprintf(out, "  Metric:     %s\n", status.Metric)
	fmt.Fprintln(out, heading("Storage"))
	fmt.Fprintf(out, "  Registry:   %s\n", status.Registry)
	fmt.Fprintf(out, "  Data dir:   %s\n", status.DataDir)
	fmt.Fprintln(out, heading("Models"))
	fmt.Fprintf(out, "  Chat:       %s\n", status.ChatModel)
	fmt.Fprintf(out, "  Embedding:  %s\n", status.EmbeddingModel)
	fmt.Fprintf(out, "  Provider:   %s\n", provider)
	return nil
}
