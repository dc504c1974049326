package main

import (
	"errors"
	"fmt"
)

// ExitUsage is the exit code of usage and configuration errors.
const ExitUsage = 64

// ExitCodeError carries the process exit code of a command. Err may be nil
// when the command already reported its outcome.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code.
func (e *ExitCodeError) ExitCode() int {
	return e.Code
}

func usageError(err error) error {
	return &ExitCodeError{Code: ExitUsage, Err: err}
}

// exitCode maps a command error to a process exit code. Errors without an
// exit code come from argument parsing and count as usage errors.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}
