// ABOUTME: CLI command to ingest PDF and TXT documents
// ABOUTME: Validates uploads, chunks and embeds them, and records them in the registry
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/models"
)

// NewIngestCmd creates ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest PDF or TXT documents",
		Long: `Ingest one or more .pdf or .txt files.

Each file is split into overlapping chunks, embedded, and indexed.
Re-ingesting the same file with the same content replaces its chunks.

Examples:
  docqa ingest report.pdf
  docqa ingest notes/*.txt
  docqa ingest --format json paper.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	docs := make([]*models.Document, 0, len(args))
	var errs []error
	for _, path := range args {
		doc, err := a.IngestFile(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			if !quiet && outputFormat != "json" {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
			}
			continue
		}
		docs = append(docs, doc)
		if outputFormat != "json" && !quiet {
			fmt.Fprintf(out, "✓ %s → %s (%d chunks)\n", doc.Filename, doc.ID, doc.ChunkCount)
		}
	}

	if outputFormat == "json" {
		if err := writeJSON(out, docs); err != nil {
			return err
		}
	}

	return errors.Join(errs...)
}
