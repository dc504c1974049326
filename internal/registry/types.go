package registry

import (
	"context"
	"time"

	"github.com/chis/uptag/internal/image"
)

// TagSource is a lazy, newest-first sequence of tags for one image.
//
// Next returns the next tag. It returns io.EOF once the sequence is
// exhausted; any other error is a transport failure and the source must not
// be used afterwards.
type TagSource interface {
	Next(ctx context.Context) (string, error)
}

// SourceProvider hands out a fresh TagSource per image.
type SourceProvider interface {
	Tags(img image.Image) TagSource
}

// Config contains configuration for registry access.
type Config struct {
	// DockerHubURL is the base URL of the Docker Hub API.
	DockerHubURL string

	// PageSize is the number of tags requested per Docker Hub page.
	PageSize int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration

	// CacheTTL is how long fetched pages are reused.
	CacheTTL time.Duration

	// RateLimitInterval is the minimum spacing between Docker Hub requests.
	RateLimitInterval time.Duration

	// FailureThreshold and ResetTimeout configure the per-registry circuit breaker.
	FailureThreshold int
	ResetTimeout     time.Duration
}

// withDefaults fills zero values with package defaults.
func (c Config) withDefaults() Config {
	if c.DockerHubURL == "" {
		c.DockerHubURL = DefaultDockerHubURL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultHTTPTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.RateLimitInterval <= 0 {
		c.RateLimitInterval = DefaultRateLimitInterval
	}
	return c
}
