// ABOUTME: CLI command to show one document record
// ABOUTME: Prints metadata and, for the file registry, where the original is stored
package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/models"
	"github.com/harper/docqa/internal/storage"
)

// NewShowCmd creates show command
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [document-id]",
		Short: "Show a document's metadata",
		Long: `Show the registry record of one ingested document.

Examples:
  docqa show report_5d41402a
  docqa show --format json report_5d41402a`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.Pipeline.Get(ctx, args[0])
	if errors.Is(err, models.ErrDocumentNotFound) {
		return fmt.Errorf("document %s not found", args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, doc)
	}

	fmt.Fprintln(out, heading(doc.Filename))
	fmt.Fprintf(out, "ID:       %s\n", doc.ID)
	fmt.Fprintf(out, "Type:     %s\n", doc.FileType)
	fmt.Fprintf(out, "Size:     %s\n", formatSize(doc.FileSize))
	fmt.Fprintf(out, "Chunks:   %d\n", doc.ChunkCount)
	fmt.Fprintf(out, "Uploaded: %s (%s)\n", doc.UploadedAt.Format(time.RFC3339), formatTime(doc.UploadedAt))
	if reg, ok := a.Registry.(*storage.FileRegistry); ok {
		fmt.Fprintf(out, "Stored:   %s\n", mutedStyle.Render(reg.RawPath(*doc)))
	}
	return nil
}
