// ABOUTME: Sync commands for the Charm cloud document registry
// ABOUTME: Provides status, now and wipe when DOCQA_REGISTRY=charm
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/app"
	"github.com/harper/docqa/internal/config"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization of the document registry with Charm cloud.

With DOCQA_REGISTRY=charm, document records and original files are kept
in Charm KV and sync across devices linked to the same Charm account via
SSH keys. The vector index stays local; re-ingest on a new device.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())
	cmd.AddCommand(newSyncWipeCmd())

	return cmd
}

// openCharmApp opens the app and fails unless the charm registry is configured
func openCharmApp(ctx context.Context) (*app.App, error) {
	a, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	if a.Charm == nil {
		_ = a.Close()
		return nil, fmt.Errorf("charm sync needs DOCQA_REGISTRY=%s", config.RegistryCharm)
	}
	return a, nil
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and connection info",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openCharmApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			id, err := a.Charm.ID()
			if err != nil {
				fmt.Fprintln(out, "Status: Not connected")
				fmt.Fprintf(out, "Host: %s\n", a.Config.CharmHost)
				return nil
			}

			fmt.Fprintln(out, "Status: Connected")
			fmt.Fprintf(out, "User ID: %s\n", id)
			fmt.Fprintf(out, "Host: %s\n", a.Config.CharmHost)
			fmt.Fprintf(out, "Database: %s\n", a.Config.CharmDBName)
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openCharmApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
			}
			if err := a.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
			}
			return nil
		},
	}
}

func newSyncWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe the local Charm registry cache",
		Long: `Delete the locally cached Charm registry data.

Your cloud data remains intact and is re-synced on next access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Fprintln(cmd.OutOrStdout(), "This will wipe the local registry cache!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}

			a, err := openCharmApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Charm.Reset(); err != nil {
				return fmt.Errorf("failed to wipe data: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Local registry cache wiped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}
