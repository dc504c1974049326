package registry

import (
	"context"
	"fmt"
	"io"

	"github.com/google/go-containerregistry/pkg/crane"

	"github.com/chis/uptag/internal/image"
	"github.com/chis/uptag/internal/logging"
)

// OCIClient lists tags from registries speaking the OCI distribution API
// (ghcr.io, quay.io, self-hosted registries).
type OCIClient struct {
	opts    []crane.Option
	cache   *RegistryCache[[]string]
	breaker *CircuitBreaker
}

// NewOCIClient creates a client. Extra crane options, such as a custom
// transport, are applied to every request.
func NewOCIClient(cfg Config, breaker *CircuitBreaker, opts ...crane.Option) *OCIClient {
	cfg = cfg.withDefaults()
	if breaker == nil {
		breaker = NewCircuitBreaker(cfg.FailureThreshold, cfg.ResetTimeout)
	}
	return &OCIClient{
		opts:    opts,
		cache:   NewRegistryCache[[]string](cfg.CacheTTL),
		breaker: breaker,
	}
}

// Source returns a tag source for img.
func (c *OCIClient) Source(img image.Image) *OCISource {
	return &OCISource{client: c, domain: img.Domain, repository: img.FullName()}
}

// ListTags returns every tag of repository ("ghcr.io/org/app") in the order
// the registry lists them.
func (c *OCIClient) ListTags(ctx context.Context, domain, repository string) ([]string, error) {
	if tags, ok := c.cache.Get(repository); ok {
		return tags, nil
	}

	opts := make([]crane.Option, 0, len(c.opts)+1)
	opts = append(opts, c.opts...)
	opts = append(opts, crane.WithContext(ctx))

	var tags []string
	err := c.breaker.Do(domain, func() error {
		logging.DebugContext(ctx, "Listing tags for %s", repository)
		var err error
		tags, err = crane.ListTags(repository, opts...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	c.cache.Set(repository, tags)
	return tags, nil
}

// OCISource yields the tags of one repository.
//
// The tag list API has no notion of recency and registries usually return
// tags in lexical order, so the list is yielded back to front. That puts
// higher versions first for most naming schemes.
type OCISource struct {
	client     *OCIClient
	domain     string
	repository string

	tags   []string
	pos    int
	loaded bool
}

// Next implements TagSource.
func (s *OCISource) Next(ctx context.Context) (string, error) {
	if !s.loaded {
		tags, err := s.client.ListTags(ctx, s.domain, s.repository)
		if err != nil {
			return "", err
		}
		s.tags = tags
		s.pos = len(tags) - 1
		s.loaded = true
	}

	if s.pos < 0 {
		return "", io.EOF
	}
	tag := s.tags[s.pos]
	s.pos--
	return tag, nil
}
