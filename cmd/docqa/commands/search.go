// ABOUTME: CLI command for similarity search over ingested documents
// ABOUTME: Prints ranked passages with scores, optionally limited to some documents
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchTopK int
	searchDocs []string
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search documents by meaning",
		Long: `Find the passages most similar to a query.

Scores run from 0 to 1, higher is more similar.

Examples:
  docqa search "quarterly revenue"
  docqa search --top-k 10 "deployment steps"
  docqa search --doc report_5d41402a "risks"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "Number of passages to return")
	cmd.Flags().StringSliceVar(&searchDocs, "doc", nil, "Limit search to these document IDs (repeatable)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchTopK, "--top-k"); err != nil {
		return err
	}
	query := strings.Join(args, " ")

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Retrieval.Search(ctx, query, searchTopK, searchDocs)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if outputFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results found\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tSCORE\tDOCUMENT\tCHUNK\tEXCERPT\n")
	fmt.Fprintf(w, "-\t-----\t--------\t-----\t-------\n")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%d\t%s\n",
			i+1,
			r.Score,
			truncate(r.DocumentName, 30),
			r.ChunkIndex,
			truncate(oneLine(r.Content), 60))
	}
	w.Flush()

	return nil
}
