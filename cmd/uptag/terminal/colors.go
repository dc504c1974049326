// Package terminal provides ANSI colors that honor NO_COLOR.
package terminal

import (
	"os"

	"github.com/chis/uptag/internal/report"
)

func color(code string) string {
	if os.Getenv("NO_COLOR") != "" {
		return ""
	}
	return code
}

// Red returns ANSI red color code, or empty string if NO_COLOR is set
func Red() string { return color("\033[31m") }

// Green returns ANSI green color code, or empty string if NO_COLOR is set
func Green() string { return color("\033[32m") }

// Yellow returns ANSI yellow color code, or empty string if NO_COLOR is set
func Yellow() string { return color("\033[33m") }

// Gray returns ANSI gray color code, or empty string if NO_COLOR is set
func Gray() string { return color("\033[90m") }

// Reset returns ANSI reset code, or empty string if NO_COLOR is set
func Reset() string { return color("\033[0m") }

// ForLevel returns the color of a report level.
func ForLevel(l report.Level) string {
	switch l {
	case report.NoUpdates:
		return Green()
	case report.CompatibleUpdate:
		return Yellow()
	default:
		return Red()
	}
}
