package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chis/uptag/internal/config"
	"github.com/chis/uptag/internal/dockerfile"
	"github.com/chis/uptag/internal/logging"
	"github.com/chis/uptag/internal/output"
	"github.com/chis/uptag/internal/report"
)

// CheckOptions contains options for the check command
type CheckOptions struct {
	// Input is the Dockerfile to check
	Input string
}

// CheckCommand implements the check command
type CheckCommand struct {
	app     *app
	options CheckOptions
}

// NewCheckCommand creates a new check command
func NewCheckCommand(a *app) *CheckCommand {
	return &CheckCommand{
		app:     a,
		options: CheckOptions{Input: "Dockerfile"},
	}
}

// Command returns the cobra command.
func (c *CheckCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the annotated base images of a Dockerfile",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&c.options.Input, "input", "i", c.options.Input, "path to the Dockerfile")
	return cmd
}

// Run executes the check command
func (c *CheckCommand) Run(ctx context.Context) error {
	a := c.app

	occurrences, err := dockerfile.Load(a.fs, c.options.Input)
	if err != nil {
		return &ExitCodeError{Code: report.ExitFailure, Err: err}
	}
	logging.InfoContext(ctx, "Checking %d images from %s", len(occurrences), c.options.Input)

	s := a.newSession()
	r := report.ForImages(s.checker.CheckAll(ctx, occurrences))

	if err := c.write(r); err != nil {
		s.close()
		return &ExitCodeError{Code: report.ExitFailure, Err: err}
	}
	return a.finish(ctx, s, r.Level())
}

func (c *CheckCommand) write(r report.ImageReport) error {
	if c.app.cfg.Output == config.OutputJSON {
		return output.WriteImageReportJSON(c.app.stdout, r)
	}
	return output.WriteImageReport(c.app.stdout, r)
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(fmt.Errorf("%s takes no arguments, got %q", cmd.CommandPath(), args))
	}
	return nil
}
