package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/fabtrack/internal/blob"
	"github.com/rpggio/fabtrack/internal/config"
	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/store"
	"github.com/rpggio/fabtrack/internal/tabular"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the fabtrack command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "fabtrack",
		Short: "Turn fabrication spreadsheets into tracked projects with an EBOM",
		Long: `fabtrack ingests spreadsheets of composite-fabrication jobs and keeps them
as project records with a derived Engineering Bill of Materials.

Examples:
  fabtrack serve
  fabtrack import hulls.xlsx
  fabtrack list acme
  fabtrack show <id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path (default: $FABTRACK_CONFIG_PATH)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewImportCmd(opts))
	cmd.AddCommand(NewListCmd(opts))
	cmd.AddCommand(NewShowCmd(opts))

	return cmd
}

func (o *globalOptions) load() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// openProjects wires the configured blob store into a project service. The
// returned closer releases the store.
func openProjects(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...project.Option) (*project.Service, io.Closer, error) {
	blobs, closer, err := blob.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	records := store.New(blobs, cfg.Store.Key, logger)
	decoder := tabular.NewDecoder(tabular.WithMaxUnzipSize(cfg.Ingest.MaxUploadBytes * 16))
	return project.NewService(records, decoder, logger, opts...), closer, nil
}
