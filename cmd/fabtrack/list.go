package main

import (
	"github.com/pterm/pterm"
	"github.com/rpggio/fabtrack/internal/mcp"
	"github.com/spf13/cobra"
)

// NewListCmd prints stored projects, optionally filtered by code or customer.
func NewListCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list [term]",
		Short: "List projects, newest first",
		Long:  `List stored projects whose code or customer contains term, ignoring case.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) == 1 {
				term = args[0]
			}

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

			records, err := svc.List(cmd.Context(), term)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				projects := mcp.NewProjectResponses(records)
				return writeJSON(out, mcp.ListProjectsResponse{Count: len(projects), Projects: projects})
			}
			if len(records) == 0 {
				pterm.Warning.WithWriter(out).Println("No projects found.")
				return nil
			}
			return renderProjects(out, records)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}
