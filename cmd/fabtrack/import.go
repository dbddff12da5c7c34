package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rpggio/fabtrack/internal/domain/project"
	"github.com/rpggio/fabtrack/internal/mcp"
	"github.com/spf13/cobra"
)

// NewImportCmd ingests one or more spreadsheets into the configured store.
func NewImportCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <file.xlsx>...",
		Short: "Import projects from spreadsheets",
		Long: `Import every non-blank row of each workbook's first sheet as a new Pending
project. Files are imported in order; the first failure stops the run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, logCloser := newLogger(cfg.Log, cmd.ErrOrStderr())
			defer logCloser.Close()

			svc, closer, err := openProjects(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			out := cmd.OutOrStdout()
			for _, path := range args {
				res, err := importFile(cmd, svc, path, cfg.Ingest.MaxUploadBytes)
				if err != nil {
					return err
				}
				if asJSON {
					if err := writeJSON(out, mcp.NewImportResponse(res)); err != nil {
						return err
					}
					continue
				}
				if len(res.Records) > 0 {
					if err := renderProjects(out, res.Records); err != nil {
						return err
					}
				}
				pterm.Success.WithWriter(out).Printfln("imported %d projects from %s (%d stored)",
					len(res.Records), res.Source, res.Total)
				if res.DefaultedRows > 0 {
					pterm.Warning.WithWriter(out).Printfln("%d rows used defaults (code %d, customer %d, description %d, sqm %d)",
						res.DefaultedRows, res.Defaults.Code, res.Defaults.Customer, res.Defaults.Description, res.Defaults.SQM)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func importFile(cmd *cobra.Command, svc *project.Service, path string, limit int64) (*project.IngestResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%s: %w (%d > %d bytes)", path, mcp.ErrUploadTooLarge, info.Size(), limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := svc.Ingest(cmd.Context(), project.IngestRequest{Source: filepath.Base(path), Body: f})
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return res, nil
}
