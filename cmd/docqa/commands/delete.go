// ABOUTME: CLI command to delete documents
// ABOUTME: Removes indexed chunks, the registry record and the stored original
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates delete command
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [document-id...]",
		Short: "Delete documents",
		Long: `Delete one or more documents with their indexed chunks and stored files.

Examples:
  docqa delete report_5d41402a
  docqa delete a_12345678 b_87654321`,
		Args: cobra.MinimumNArgs(1),
		RunE: runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var errs []error
	for _, id := range args {
		deleted, err := a.Pipeline.Delete(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		if !deleted {
			errs = append(errs, fmt.Errorf("document %s not found", id))
			continue
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		}
	}
	return errors.Join(errs...)
}
