package registry

import "time"

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests to registries
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRateLimitInterval is the default interval between rate-limited requests
	DefaultRateLimitInterval = 100 * time.Millisecond

	// DefaultDockerHubURL is the Docker Hub API base URL
	DefaultDockerHubURL = "https://hub.docker.com"

	// DefaultPageSize is the number of tags requested per page (Docker Hub maximum)
	DefaultPageSize = 100

	// DefaultCacheTTL is how long fetched tag pages are kept
	DefaultCacheTTL = 15 * time.Minute

	maxRetries     = 3
	initialBackoff = 1 * time.Second
)
