// ABOUTME: CLI command to list ingested documents
// ABOUTME: Prints registry records newest first as a table or JSON
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewListCmd creates list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		Long: `List ingested documents, newest first.

Examples:
  docqa list
  docqa list --format json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.Pipeline.List(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), docs)
	}

	if len(docs) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No documents found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tFILENAME\tTYPE\tCHUNKS\tSIZE\tUPLOADED\n")
	fmt.Fprintf(w, "--\t--------\t----\t------\t----\t--------\n")
	for _, doc := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			doc.ID,
			truncate(doc.Filename, 40),
			doc.FileType,
			doc.ChunkCount,
			formatSize(doc.FileSize),
			formatTime(doc.UploadedAt))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d document(s)\n", len(docs))
	}
	return nil
}
