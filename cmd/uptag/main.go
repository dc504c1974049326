// Command uptag reports newer tags for the base images of Dockerfiles and
// compose manifests, classified by annotated version patterns.
//
// The commands are:
//   - check: check the FROM images of a Dockerfile
//   - check-compose: check the services of a compose manifest
//   - pattern: inspect a version pattern
//   - version: print the build version
//
// The exit code is 0 without updates, 1 for compatible updates only, 2 for
// any breaking update and 10 for any failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(afero.NewOsFs(), stdout, stderr)
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	code := exitCode(err)
	if err != nil {
		var exitErr *ExitCodeError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			a.reportError(err)
		}
		if code == ExitUsage {
			fmt.Fprintf(a.stderr, "Run '%s --help' for usage.\n", root.CommandPath())
		}
	}
	return code
}
