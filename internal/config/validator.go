package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/chis/uptag/internal/logging"
)

// ValidationResult contains the results of configuration validation.
// Separates errors (blocking issues) from warnings (non-blocking issues).
type ValidationResult struct {
	// Errors contains validation failures that should block operations
	Errors []string

	// Warnings contains validation issues that should be logged but not block operations
	Warnings []string
}

// IsValid returns true if there are no validation errors.
// Warnings do not affect validity.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// HasWarnings returns true if there are any validation warnings.
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// AddError adds an error message to the validation result.
func (vr *ValidationResult) AddError(msg string) {
	vr.Errors = append(vr.Errors, msg)
}

// AddWarning adds a warning message to the validation result.
func (vr *ValidationResult) AddWarning(msg string) {
	vr.Warnings = append(vr.Warnings, msg)
}

// Error joins the validation errors, so an invalid result can be returned as an error.
func (vr ValidationResult) Error() string {
	return "invalid configuration: " + strings.Join(vr.Errors, "; ")
}

// Validate checks every setting.
func (c *Config) Validate() ValidationResult {
	result := ValidationResult{}

	positive := []struct {
		key   string
		value int
	}{
		{KeySearchLimit, c.SearchLimit},
		{KeyConcurrency, c.Concurrency},
		{KeyPageSize, c.PageSize},
	}
	for _, p := range positive {
		if p.value <= 0 {
			result.AddError(fmt.Sprintf("%s must be positive, got %d", p.key, p.value))
		}
	}

	if c.Timeout <= 0 {
		result.AddError(fmt.Sprintf("%s must be positive, got %s", KeyTimeout, c.Timeout))
	}
	if c.CacheTTL < 0 {
		result.AddError(fmt.Sprintf("%s must not be negative, got %s", KeyCacheTTL, c.CacheTTL))
	}

	if u, err := url.Parse(c.DockerHubURL); err != nil || u.Scheme == "" || u.Host == "" {
		result.AddError(fmt.Sprintf("%s must be an absolute URL, got %q", KeyDockerHubURL, c.DockerHubURL))
	}

	switch c.Output {
	case OutputText, OutputJSON:
	default:
		result.AddError(fmt.Sprintf("%s must be %q or %q, got %q", KeyOutput, OutputText, OutputJSON, c.Output))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		result.AddError(fmt.Sprintf("%s must be \"text\" or \"json\", got %q", KeyLogFormat, c.LogFormat))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "trace", "info", "warn", "warning", "error":
	default:
		result.AddWarning(fmt.Sprintf("unknown %s %q, using %s", KeyLogLevel, c.LogLevel, logging.ParseLevel(c.LogLevel)))
	}

	if c.SearchLimit > 10000 {
		result.AddWarning(fmt.Sprintf("%s of %d may issue many registry requests", KeySearchLimit, c.SearchLimit))
	}

	return result
}
