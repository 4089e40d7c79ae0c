// ABOUTME: Export command writes the chunk index to YAML, Markdown or JSON
// ABOUTME: JSON exports include embedding vectors for backup and offline analysis
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the chunk index",
		Long: `Export every indexed chunk grouped by document.

Formats:
  yaml      readable dump of chunk text
  markdown  one section per document
  json      includes embedding vectors

Examples:
  docqa export
  docqa export --as markdown -o index.md
  docqa export --as json -o backup.json`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportFormat, "as", "yaml", "Export format: yaml, markdown or json")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: docqa-export-<date>.<ext>)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	var ext string
	switch exportFormat {
	case "yaml":
		ext = "yaml"
	case "markdown", "md":
		ext = "md"
	case "json":
		ext = "json"
	default:
		return fmt.Errorf("--as must be yaml, markdown or json, got %q", exportFormat)
	}

	path := exportOutput
	if path == "" {
		path = fmt.Sprintf("docqa-export-%s.%s", time.Now().Format("20060102-150405"), ext)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	switch ext {
	case "yaml":
		err = a.Store.ExportToYAML(ctx, path)
	case "md":
		err = a.Store.ExportToMarkdown(ctx, path)
	default:
		err = a.Store.ExportToJSON(ctx, path)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported index to %s\n", path)
	}
	return nil
}
