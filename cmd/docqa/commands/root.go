// ABOUTME: Root command, global flags and app bootstrap shared by all subcommands
// ABOUTME: Loads .env and config, configures logging, and opens the App
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/app"
	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/logging"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
 ██████╗  ██████╗  ██████╗ ██████╗  █████╗
 ██╔══██╗██╔═══██╗██╔════╝██╔═══██╗██╔══██╗
 ██║  ██║██║   ██║██║     ██║   ██║███████║
 ██║  ██║██║   ██║██║     ██║▄▄ ██║██╔══██║
 ██████╔╝╚██████╔╝╚██████╗╚██████╔╝██║  ██║
 ╚═════╝  ╚═════╝  ╚═════╝ ╚══▀▀═╝ ╚═╝  ╚═╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docqa",
		Short: "Ask questions about your PDF and text documents",
		Long: banner + `

Ingest PDF and TXT documents, search them by meaning, and get answers
grounded in their content with the passages they came from.

Configuration is read from DOCQA_CONFIG (or --config), then the
environment. OPENAI_API_KEY is required for ingest, search and ask.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "table", "json":
			default:
				return fmt.Errorf("--format must be auto, table or json, got %q", outputFormat)
			}
			applyVerbosity()
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors and results")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (overrides DOCQA_CONFIG)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command; Ctrl-C cancels in-flight provider calls
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func applyVerbosity() {
	switch {
	case verbose:
		logging.SetVerbose(true)
	case quiet:
		logging.SetQuiet()
	}
}

// loadConfig reads .env, the config file and the environment, then applies log settings
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}
	// flags win over configured level
	applyVerbosity()
	return cfg, nil
}

// openApp loads configuration and opens the App; callers must Close it
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing docqa: %w", err)
	}
	return a, nil
}
