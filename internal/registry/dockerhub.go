package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/logging"
)

// DockerHubRegistry is the circuit breaker key for Docker Hub.
const DockerHubRegistry = "docker.io"

// DockerHubClient fetches tag pages from the Docker Hub API. One client is
// shared by every DockerHubSource of a run; it serializes requests through a
// ticker and caches pages by URL.
type DockerHubClient struct {
	httpClient  *http.Client
	baseURL     string
	pageSize    int
	rateLimiter *time.Ticker
	cache       *RegistryCache[*dockerHubPage]
	breaker     *CircuitBreaker
	backoff     time.Duration
}

// NewDockerHubClient creates a new Docker Hub client.
func NewDockerHubClient(cfg Config, breaker *CircuitBreaker) *DockerHubClient {
	cfg = cfg.withDefaults()
	if breaker == nil {
		breaker = NewCircuitBreaker(cfg.FailureThreshold, cfg.ResetTimeout)
	}
	return &DockerHubClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.DockerHubURL,
		pageSize:    cfg.PageSize,
		rateLimiter: time.NewTicker(cfg.RateLimitInterval),
		cache:       NewRegistryCache[*dockerHubPage](cfg.CacheTTL),
		breaker:     breaker,
		backoff:     initialBackoff,
	}
}

// Close stops the rate limiter.
func (c *DockerHubClient) Close() {
	c.rateLimiter.Stop()
}

// dockerHubTagsResponse represents Docker Hub's API response.
type dockerHubTagsResponse struct {
	Count    int            `json:"count"`
	Next     string         `json:"next"`
	Previous string         `json:"previous"`
	Results  []dockerHubTag `json:"results"`
}

type dockerHubTag struct {
	Name        string `json:"name"`
	LastUpdated string `json:"last_updated"`
}

// dockerHubPage is one decoded page of tags.
type dockerHubPage struct {
	tags []string
	next string
}

// Source returns a lazy tag source for img, newest first.
func (c *DockerHubClient) Source(img image.Image) *DockerHubSource {
	return &DockerHubSource{client: c, next: c.tagsURL(img.Repository())}
}

// tagsURL returns the first page URL for a repository such as "library/nginx".
func (c *DockerHubClient) tagsURL(repository string) string {
	return fmt.Sprintf("%s/v2/repositories/%s/tags?page_size=%d&ordering=last_updated", c.baseURL, repository, c.pageSize)
}

// fetchPage returns the page at url, from the cache when possible.
func (c *DockerHubClient) fetchPage(ctx context.Context, url string) (*dockerHubPage, error) {
	if page, ok := c.cache.Get(url); ok {
		return page, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter.C:
	}

	var page *dockerHubPage
	err := c.breaker.Do(DockerHubRegistry, func() error {
		var err error
		page, err = c.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.cache.Set(url, page)
	return page, nil
}

func (c *DockerHubClient) get(ctx context.Context, url string) (*dockerHubPage, error) {
	logging.DebugContext(ctx, "Fetching Docker Hub tags page %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(c.httpClient, req, c.backoff)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp, "docker hub tags request")
	}

	var tagsResp dockerHubTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	page := &dockerHubPage{
		tags: make([]string, 0, len(tagsResp.Results)),
		next: tagsResp.Next,
	}
	for _, tag := range tagsResp.Results {
		page.tags = append(page.tags, tag.Name)
	}
	return page, nil
}

// DockerHubSource pages through a repository's tags, fetching the next page
// only once the current one has been consumed.
type DockerHubSource struct {
	client *DockerHubClient
	next   string
	buf    []string
	done   bool
}

// Next implements TagSource.
func (s *DockerHubSource) Next(ctx context.Context) (string, error) {
	for len(s.buf) == 0 {
		if s.done {
			return "", io.EOF
		}

		page, err := s.client.fetchPage(ctx, s.next)
		if err != nil {
			return "", err
		}

		s.buf = page.tags
		s.next = page.next
		if s.next == "" {
			s.done = true
		}
	}

	tag := s.buf[0]
	s.buf = s.buf[1:]
	return tag, nil
}
