package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chis/uptag/internal/config"
	"github.com/chis/uptag/internal/output"
	"github.com/chis/uptag/internal/report"
	"github.com/chis/uptag/internal/update"
	"github.com/chis/uptag/internal/version"
)

// PatternOptions contains options for the pattern command
type PatternOptions struct {
	// Tag, when set, is matched against the pattern
	Tag string
}

// PatternCommand implements the pattern command
type PatternCommand struct {
	app     *app
	options PatternOptions
}

// PatternInfo describes a parsed pattern.
type PatternInfo struct {
	Pattern        string `json:"pattern"`
	BreakingDegree int    `json:"breaking_degree"`
	Slots          int    `json:"slots"`
	Regex          string `json:"regex"`
	Tag            string `json:"tag,omitempty"`
	Version        string `json:"version,omitempty"`
}

// NewPatternCommand creates a new pattern command
func NewPatternCommand(a *app) *PatternCommand {
	return &PatternCommand{app: a}
}

// Command returns the cobra command.
func (c *PatternCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pattern <pattern>",
		Short: "Parse a version pattern and show how it matches tags",
		Example: `  uptag pattern '<!>.<>.<>'
  uptag pattern 'debian-<>-beta' --tag debian-7-beta`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError(fmt.Errorf("%s takes exactly one pattern, got %d arguments", cmd.CommandPath(), len(args)))
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return c.Run(args[0])
		},
	}
	cmd.Flags().StringVarP(&c.options.Tag, "tag", "t", "", "extract the version of this tag")
	return cmd
}

// Run executes the pattern command
func (c *PatternCommand) Run(input string) error {
	pattern, err := version.ParsePattern(input)
	if err != nil {
		var syntaxErr *version.PatternSyntaxError
		if errors.As(err, &syntaxErr) && c.app.cfg.Output == config.OutputText {
			fmt.Fprintln(c.app.stderr, syntaxErr.Pointer())
		}
		return usageError(err)
	}

	info := PatternInfo{
		Pattern:        pattern.String(),
		BreakingDegree: pattern.BreakingDegree(),
		Slots:          pattern.Slots(),
		Regex:          pattern.Regexp().String(),
	}

	var tagErr error
	if c.options.Tag != "" {
		info.Tag = c.options.Tag
		if v, ok := pattern.ExtractFrom(c.options.Tag); ok {
			info.Version = v.String()
		} else {
			tagErr = &update.InvalidCurrentTagError{Tag: c.options.Tag, Pattern: pattern.String()}
		}
	}

	if c.app.cfg.Output == config.OutputJSON {
		if tagErr != nil {
			return &ExitCodeError{Code: report.ExitFailure, Err: tagErr}
		}
		return output.WriteJSONData(c.app.stdout, info)
	}

	w := tabwriter.NewWriter(c.app.stdout, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "pattern:\t%s\n", info.Pattern)
	fmt.Fprintf(w, "breaking degree:\t%d\n", info.BreakingDegree)
	fmt.Fprintf(w, "slots:\t%d\n", info.Slots)
	fmt.Fprintf(w, "regex:\t%s\n", info.Regex)
	if info.Version != "" {
		fmt.Fprintf(w, "version:\t%s\n", info.Version)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if tagErr != nil {
		return &ExitCodeError{Code: report.ExitFailure, Err: tagErr}
	}
	return nil
}
