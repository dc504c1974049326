package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chis/uptag/internal/image"
)

// fakeDockerHub serves pages of tags for one repository.
type fakeDockerHub struct {
	server   *httptest.Server
	pages    [][]string
	requests atomic.Int32
	status   int
}

func newFakeDockerHub(t *testing.T, repository string, pages ...[]string) *fakeDockerHub {
	t.Helper()

	hub := &fakeDockerHub{pages: pages, status: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/repositories/"+repository+"/tags", func(w http.ResponseWriter, r *http.Request) {
		hub.requests.Add(1)

		if hub.status != http.StatusOK {
			w.WriteHeader(hub.status)
			fmt.Fprint(w, `{"message":"object not found"}`)
			return
		}

		assert.Equal(t, "last_updated", r.URL.Query().Get("ordering"))

		page := 0
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &page)
			page--
		}

		resp := dockerHubTagsResponse{Count: len(hub.pages)}
		if page+1 < len(hub.pages) {
			resp.Next = fmt.Sprintf("%s/v2/repositories/%s/tags?page=%d&page_size=%s&ordering=last_updated",
				hub.server.URL, repository, page+2, r.URL.Query().Get("page_size"))
		}
		if page < len(hub.pages) {
			for _, name := range hub.pages[page] {
				resp.Results = append(resp.Results, dockerHubTag{Name: name})
			}
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	hub.server = httptest.NewServer(mux)
	t.Cleanup(hub.server.Close)
	return hub
}

func newTestDockerHubClient(t *testing.T, url string) *DockerHubClient {
	t.Helper()

	client := NewDockerHubClient(Config{
		DockerHubURL:      url,
		PageSize:          2,
		RateLimitInterval: time.Millisecond,
	}, nil)
	client.backoff = time.Millisecond
	t.Cleanup(client.Close)
	return client
}

func drain(t *testing.T, src TagSource) []string {
	t.Helper()

	var tags []string
	for {
		tag, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return tags
		}
		require.NoError(t, err)
		tags = append(tags, tag)
	}
}

func TestDockerHubSourcePaginates(t *testing.T) {
	hub := newFakeDockerHub(t, "library/ubuntu",
		[]string{"14.12", "14.05"},
		[]string{"14.04", "14.03"},
		[]string{"13.03"},
	)
	client := newTestDockerHubClient(t, hub.server.URL)

	tags := drain(t, client.Source(image.MustParse("ubuntu:14.04")))

	assert.Equal(t, []string{"14.12", "14.05", "14.04", "14.03", "13.03"}, tags)
	assert.Equal(t, int32(3), hub.requests.Load())
}

func TestDockerHubSourceFetchesLazily(t *testing.T) {
	hub := newFakeDockerHub(t, "library/ubuntu",
		[]string{"14.12", "14.05"},
		[]string{"14.04", "14.03"},
	)
	client := newTestDockerHubClient(t, hub.server.URL)
	src := client.Source(image.MustParse("ubuntu:14.04"))

	for i := 0; i < 2; i++ {
		_, err := src.Next(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hub.requests.Load(), "second page must not be fetched before it is needed")

	tag, err := src.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "14.04", tag)
	assert.Equal(t, int32(2), hub.requests.Load())
}

func TestDockerHubSourceUsesCache(t *testing.T) {
	hub := newFakeDockerHub(t, "bitnami/redis", []string{"7.2", "7.0"})
	client := newTestDockerHubClient(t, hub.server.URL)

	first := drain(t, client.Source(image.MustParse("bitnami/redis:7.0")))
	second := drain(t, client.Source(image.MustParse("bitnami/redis:7.2")))

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hub.requests.Load())
}

func TestDockerHubSourceEmptyRepository(t *testing.T) {
	hub := newFakeDockerHub(t, "library/empty")
	client := newTestDockerHubClient(t, hub.server.URL)

	_, err := client.Source(image.MustParse("empty:1")).Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestDockerHubSourceStatusError(t *testing.T) {
	hub := newFakeDockerHub(t, "library/missing")
	hub.status = http.StatusNotFound
	client := newTestDockerHubClient(t, hub.server.URL)

	_, err := client.Source(image.MustParse("missing:1")).Next(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "object not found")
	assert.Equal(t, int32(1), hub.requests.Load(), "status errors are not retried")
	assert.Equal(t, CircuitClosed, client.breaker.State(DockerHubRegistry))
}

func TestDockerHubSourceServerErrorCountsAgainstBreaker(t *testing.T) {
	hub := newFakeDockerHub(t, "library/flaky")
	hub.status = http.StatusServiceUnavailable
	client := newTestDockerHubClient(t, hub.server.URL)

	_, err := client.Source(image.MustParse("flaky:1")).Next(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, client.breaker.Failures(DockerHubRegistry))
}

func TestDockerHubSourceCircuitOpen(t *testing.T) {
	hub := newFakeDockerHub(t, "library/ubuntu", []string{"14.04"})
	breaker := NewCircuitBreaker(1, time.Hour)
	breaker.RecordFailure(DockerHubRegistry)

	client := NewDockerHubClient(Config{DockerHubURL: hub.server.URL, RateLimitInterval: time.Millisecond}, breaker)
	t.Cleanup(client.Close)

	_, err := client.Source(image.MustParse("ubuntu:14.04")).Next(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(0), hub.requests.Load())
}

func TestDockerHubSourceCanceledContext(t *testing.T) {
	hub := newFakeDockerHub(t, "library/ubuntu", []string{"14.04"})
	client := newTestDockerHubClient(t, hub.server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Source(image.MustParse("ubuntu:14.04")).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDockerHubTagsURL(t *testing.T) {
	client := NewDockerHubClient(Config{}, nil)
	defer client.Close()

	assert.Equal(t,
		"https://hub.docker.com/v2/repositories/library/ubuntu/tags?page_size=100&ordering=last_updated",
		client.tagsURL(image.MustParse("ubuntu:14.04").Repository()))
}
