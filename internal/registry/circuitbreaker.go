package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed lets requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen fails requests fast.
	CircuitOpen
	// CircuitHalfOpen lets a single probe through.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Default circuit breaker configuration.
const (
	DefaultFailureThreshold = 5
	DefaultResetTimeout     = 30 * time.Second
)

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open: registry temporarily unavailable")

// CircuitBreaker tracks consecutive failures per registry domain and opens
// after FailureThreshold of them, so that sources for other images on the same
// registry fail fast instead of each waiting out their own retries.
type CircuitBreaker struct {
	mu               sync.Mutex
	circuits         map[string]*circuit
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time
}

type circuit struct {
	state       CircuitState
	failures    int
	lastFailure time.Time
	changedAt   time.Time
}

// NewCircuitBreaker creates a circuit breaker. Non-positive arguments select
// the defaults.
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if resetTimeout <= 0 {
		resetTimeout = DefaultResetTimeout
	}
	return &CircuitBreaker{
		circuits:         make(map[string]*circuit),
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
	}
}

// Allow reports whether a request to registry may proceed.
func (cb *CircuitBreaker) Allow(registry string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(registry)
	switch c.state {
	case CircuitOpen:
		if cb.now().Sub(c.changedAt) >= cb.resetTimeout {
			c.state = CircuitHalfOpen
			c.changedAt = cb.now()
			return true
		}
		return false
	case CircuitHalfOpen:
		// a probe is already in flight
		return false
	default:
		return true
	}
}

// RecordSuccess closes the circuit for registry.
func (cb *CircuitBreaker) RecordSuccess(registry string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(registry)
	c.failures = 0
	if c.state != CircuitClosed {
		c.state = CircuitClosed
		c.changedAt = cb.now()
	}
}

// RecordFailure counts a failure and opens the circuit once the threshold is
// reached, or immediately when a half-open probe fails.
func (cb *CircuitBreaker) RecordFailure(registry string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(registry)
	c.failures++
	c.lastFailure = cb.now()

	switch c.state {
	case CircuitClosed:
		if c.failures >= cb.failureThreshold {
			c.state = CircuitOpen
			c.changedAt = cb.now()
		}
	case CircuitHalfOpen:
		c.state = CircuitOpen
		c.changedAt = cb.now()
	}
}

// State returns the current state of the circuit for registry.
func (cb *CircuitBreaker) State(registry string) CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c, ok := cb.circuits[registry]
	if !ok {
		return CircuitClosed
	}
	if c.state == CircuitOpen && cb.now().Sub(c.changedAt) >= cb.resetTimeout {
		return CircuitHalfOpen
	}
	return c.state
}

// Failures returns the consecutive failure count for registry.
func (cb *CircuitBreaker) Failures(registry string) int {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if c, ok := cb.circuits[registry]; ok {
		return c.failures
	}
	return 0
}

// Reset forgets everything known about registry.
func (cb *CircuitBreaker) Reset(registry string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.circuits, registry)
}

// Do runs fn if the circuit for registry allows it and records the outcome.
// Only errors that point at the registry itself count as failures: transport
// errors, 5xx and 429 responses. A 404 for one repository says nothing about
// the health of the registry, and cancellation is the caller's doing.
func (cb *CircuitBreaker) Do(registry string, fn func() error) error {
	if !cb.Allow(registry) {
		return fmt.Errorf("%s: %w", registry, ErrCircuitOpen)
	}

	err := fn()
	switch {
	case err == nil:
		cb.RecordSuccess(registry)
	case errors.Is(err, context.Canceled):
		cb.release(registry)
	case isRegistryFailure(err):
		cb.RecordFailure(registry)
	default:
		// the registry answered
		cb.RecordSuccess(registry)
	}
	return err
}

// release gives up a half-open probe that ended without an answer. The circuit
// goes back to open with its timeout already elapsed, so the next request
// probes again.
func (cb *CircuitBreaker) release(registry string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	c := cb.get(registry)
	if c.state == CircuitHalfOpen {
		c.state = CircuitOpen
		c.changedAt = cb.now().Add(-cb.resetTimeout)
	}
}

func isRegistryFailure(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return isServerStatus(statusErr.StatusCode)
	}
	var transportErr *transport.Error
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		return isServerStatus(transportErr.StatusCode)
	}
	return true
}

func isServerStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

// get returns the circuit for registry, creating it if needed.
// Must be called with the lock held.
func (cb *CircuitBreaker) get(registry string) *circuit {
	if c, ok := cb.circuits[registry]; ok {
		return c
	}
	c := &circuit{state: CircuitClosed, changedAt: cb.now()}
	cb.circuits[registry] = c
	return c
}
