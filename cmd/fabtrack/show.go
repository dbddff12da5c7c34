package main

import (
	"github.com/rpggio/fabtrack/internal/mcp"
	"github.com/spf13/cobra"
)

// NewShowCmd prints one project with its EBOM.
func NewShowCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project and its EBOM",
		Args:  cobra.ExactArgs(1),
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

			rec, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), mcp.NewProjectResponse(*rec))
			}
			return renderProject(cmd.OutOrStdout(), *rec)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the project as JSON")
	return cmd
}
