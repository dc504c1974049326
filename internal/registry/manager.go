package registry

import (
	"github.com/google/go-containerregistry/pkg/crane"

	"github.com/chis/uptag/internal/image"
)

// Manager routes images to the client for their registry. Docker Hub images
// go through the Docker Hub API, which orders tags by recency; every other
// registry goes through the OCI tag list.
//
// All clients share one circuit breaker keyed by registry domain.
type Manager struct {
	dockerHub *DockerHubClient
	oci       *OCIClient
	breaker   *CircuitBreaker
}

// NewManager creates a new registry manager.
func NewManager(cfg Config, opts ...crane.Option) *Manager {
	cfg = cfg.withDefaults()
	breaker := NewCircuitBreaker(cfg.FailureThreshold, cfg.ResetTimeout)
	return &Manager{
		dockerHub: NewDockerHubClient(cfg, breaker),
		oci:       NewOCIClient(cfg, breaker, opts...),
		breaker:   breaker,
	}
}

// Tags returns a fresh tag source for img.
func (m *Manager) Tags(img image.Image) TagSource {
	if img.IsDockerHub() {
		return m.dockerHub.Source(img)
	}
	return m.oci.Source(img)
}

// Breaker returns the circuit breaker shared by all clients.
func (m *Manager) Breaker() *CircuitBreaker {
	return m.breaker
}

// Close releases the resources held by the clients.
func (m *Manager) Close() {
	m.dockerHub.Close()
}
