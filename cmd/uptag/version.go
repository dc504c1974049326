package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/chis/uptag/internal/config"
	"github.com/chis/uptag/internal/output"
)

// VersionCommand implements the version command
type VersionCommand struct {
	app *app
}

// NewVersionCommand creates a new version command
func NewVersionCommand(a *app) *VersionCommand {
	return &VersionCommand{app: a}
}

// Command returns the cobra command.
func (c *VersionCommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the uptag version",
		Args:  noArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.Run()
		},
	}
}

// Run executes the version command
func (c *VersionCommand) Run() error {
	if c.app.cfg.Output == config.OutputJSON {
		return output.WriteJSONData(c.app.stdout, map[string]string{
			"version": output.Version,
			"go":      runtime.Version(),
		})
	}
	_, err := fmt.Fprintf(c.app.stdout, "uptag %s (%s)\n", output.Version, runtime.Version())
	return err
}
