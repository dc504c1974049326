package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chis/uptag/internal/compose"
	"github.com/chis/uptag/internal/config"
	"github.com/chis/uptag/internal/logging"
	"github.com/chis/uptag/internal/output"
	"github.com/chis/uptag/internal/report"
)

// ComposeOptions contains options for the check-compose command
type ComposeOptions struct {
	// Input is the compose manifest, or a directory containing one
	Input string
}

// ComposeCommand implements the check-compose command
type ComposeCommand struct {
	app     *app
	options ComposeOptions
}

// NewComposeCommand creates a new check-compose command
func NewComposeCommand(a *app) *ComposeCommand {
	return &ComposeCommand{
		app:     a,
		options: ComposeOptions{Input: "docker-compose.yml"},
	}
}

// Command returns the cobra command.
func (c *ComposeCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-compose",
		Short: "Check the services of a compose manifest",
		Long: `Check the services of a compose manifest in file order.

A service with a build section is checked through the Dockerfile it points
at. Any other service is checked through its annotated image key.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&c.options.Input, "input", "i", c.options.Input, "path to the compose manifest or its directory")
	return cmd
}

// Run executes the check-compose command
func (c *ComposeCommand) Run(ctx context.Context) error {
	a := c.app

	path, err := config.ResolveComposePath(a.fs, c.options.Input)
	if err != nil {
		return &ExitCodeError{Code: report.ExitFailure, Err: err}
	}
	manifest, err := compose.Load(a.fs, path)
	if err != nil {
		return &ExitCodeError{Code: report.ExitFailure, Err: err}
	}
	logging.InfoContext(ctx, "Checking %d services from %s", len(manifest.Services), path)

	s := a.newSession()
	r := report.ForServices(manifest.Check(ctx, a.fs, s.checker))

	if err := c.write(r); err != nil {
		s.close()
		return &ExitCodeError{Code: report.ExitFailure, Err: err}
	}
	return a.finish(ctx, s, r.Level())
}

func (c *ComposeCommand) write(r report.ComposeReport) error {
	if c.app.cfg.Output == config.OutputJSON {
		return output.WriteComposeReportJSON(c.app.stdout, r)
	}
	return output.WriteComposeReport(c.app.stdout, r)
}
