package registry

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-containerregistry/pkg/crane"
	ggcrregistry "github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chis/uptag/internal/image"
)

// newTestRegistry starts an in-memory OCI registry holding the given tags of
// repository and returns its host.
func newTestRegistry(t *testing.T, repository string, tags ...string) (string, *atomic.Int32) {
	t.Helper()

	var listRequests atomic.Int32
	handler := ggcrregistry.New(ggcrregistry.Logger(log.New(io.Discard, "", 0)))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tags/list") {
			listRequests.Add(1)
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	host := strings.TrimPrefix(server.URL, "http://")
	for _, tag := range tags {
		require.NoError(t, crane.Push(empty.Image, host+"/"+repository+":"+tag))
	}
	return host, &listRequests
}

func TestOCISourceYieldsReverseListing(t *testing.T) {
	host, _ := newTestRegistry(t, "org/app", "1.0", "1.1", "2.0")
	client := NewOCIClient(Config{}, nil)

	tags := drain(t, client.Source(image.MustParse(host+"/org/app:1.0")))

	assert.Equal(t, []string{"2.0", "1.1", "1.0"}, tags)
}

func TestOCISourceCachesListing(t *testing.T) {
	host, requests := newTestRegistry(t, "org/app", "1.0", "1.1")
	client := NewOCIClient(Config{}, nil)

	drain(t, client.Source(image.MustParse(host+"/org/app:1.0")))
	drain(t, client.Source(image.MustParse(host+"/org/app:1.1")))

	assert.Equal(t, int32(1), requests.Load())
}

func TestOCISourceUnknownRepository(t *testing.T) {
	host, _ := newTestRegistry(t, "org/app", "1.0")
	client := NewOCIClient(Config{}, nil)

	_, err := client.Source(image.MustParse(host+"/org/missing:1.0")).Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list tags")
}

func TestOCISourceMissingRepositoriesKeepCircuitClosed(t *testing.T) {
	host, _ := newTestRegistry(t, "org/app", "1.0", "1.1")
	client := NewOCIClient(Config{FailureThreshold: 2}, nil)

	for i := 0; i < 5; i++ {
		_, err := client.Source(image.MustParse(fmt.Sprintf("%s/org/missing%d:1.0", host, i))).Next(context.Background())
		require.Error(t, err)
	}

	assert.Equal(t, CircuitClosed, client.breaker.State(host))
	tags := drain(t, client.Source(image.MustParse(host+"/org/app:1.0")))
	assert.Equal(t, []string{"1.1", "1.0"}, tags)
}

func TestOCISourceCircuitOpen(t *testing.T) {
	host, requests := newTestRegistry(t, "org/app", "1.0")
	breaker := NewCircuitBreaker(1, 0)
	breaker.RecordFailure(host)

	client := NewOCIClient(Config{}, breaker)
	_, err := client.Source(image.MustParse(host+"/org/app:1.0")).Next(context.Background())

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(0), requests.Load())
}
