package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/chis/uptag/cmd/uptag/terminal"
	"github.com/chis/uptag/internal/config"
	"github.com/chis/uptag/internal/logging"
	"github.com/chis/uptag/internal/metrics"
	"github.com/chis/uptag/internal/output"
	"github.com/chis/uptag/internal/registry"
	"github.com/chis/uptag/internal/report"
	"github.com/chis/uptag/internal/update"
)

// sourceFactory creates the tag sources of a run and a function releasing them.
type sourceFactory func(cfg *config.Config) (registry.SourceProvider, func())

func registrySources(cfg *config.Config) (registry.SourceProvider, func()) {
	m := registry.NewManager(cfg.Registry())
	return m, m.Close
}

// app holds the state shared by all commands of one invocation.
type app struct {
	fs      afero.Fs
	stdout  io.Writer
	stderr  io.Writer
	sources sourceFactory

	configFile string
	cfg        *config.Config
}

func newApp(fs afero.Fs, stdout, stderr io.Writer) *app {
	return &app{
		fs:      fs,
		stdout:  stdout,
		stderr:  stderr,
		sources: registrySources,
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "uptag",
		Short:         "Report newer tags for annotated container images",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (YAML)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")
	flags.StringP("output", "o", config.OutputText, "output format: text, json")
	flags.Int("search-limit", update.DefaultSearchLimit, "number of tags examined per image")
	flags.Int("concurrency", update.DefaultMaxConcurrency, "number of images checked in parallel")
	flags.String("metrics-file", "", "write Prometheus metrics to this file")

	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		NewCheckCommand(a).Command(),
		NewComposeCommand(a).Command(),
		NewPatternCommand(a).Command(),
		NewVersionCommand(a).Command(),
	)
	return root
}

// setup loads the configuration, configures logging and attaches a
// correlation ID to the command context.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.fs, cmd.Flags(), a.configFile)
	if err != nil {
		return usageError(err)
	}
	a.cfg = cfg

	logger := logging.New()
	logger.SetOutput(a.stderr)
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return usageError(err)
	}
	logging.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	cmd.SetContext(ctx)

	logging.DebugContext(ctx, "Running %s", cmd.CommandPath())
	return nil
}

// session is the checking machinery of one command invocation.
type session struct {
	checker *update.Checker
	metrics *metrics.Metrics
	close   func()
}

func (a *app) newSession() *session {
	sources, closeSources := a.sources(a.cfg)

	checker := update.NewChecker(sources)
	checker.SetSearchLimit(a.cfg.SearchLimit)
	checker.SetMaxConcurrency(a.cfg.Concurrency)

	s := &session{checker: checker, close: closeSources}
	if a.cfg.MetricsFile != "" {
		s.metrics = metrics.New()
		checker.SetObserver(s.metrics)
	}
	return s
}

// finish writes the metrics file and turns the report level into the
// command result.
func (a *app) finish(ctx context.Context, s *session, level report.Level) error {
	s.close()

	if s.metrics != nil {
		if err := s.metrics.WriteFile(a.cfg.MetricsFile); err != nil {
			logging.ErrorContext(ctx, "%v", err)
		}
	}

	if a.cfg.Output == config.OutputText {
		fmt.Fprintf(a.stderr, "%sResult: %s%s\n", terminal.ForLevel(level), level, terminal.Reset())
	}
	logging.InfoContext(ctx, "Finished with %s", level)

	if code := level.ExitCode(); code != report.ExitNoUpdates {
		return &ExitCodeError{Code: code}
	}
	return nil
}

// reportError prints a command error in the configured output format.
func (a *app) reportError(err error) {
	if a.cfg != nil && a.cfg.Output == config.OutputJSON {
		if werr := output.WriteJSONError(a.stdout, err); werr == nil {
			return
		}
	}
	fmt.Fprintf(a.stderr, "%sError:%s %v\n", terminal.Red(), terminal.Reset(), err)
}
