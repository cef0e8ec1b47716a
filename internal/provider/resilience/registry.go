package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BackendHealth is a point-in-time view of one backend's health, surfaced
// by the travelctl health command.
type BackendHealth struct {
	// Name is the backend identifier.
	Name string

	// CircuitState is the current breaker state.
	CircuitState gobreaker.State

	// Counts holds breaker request statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is when the last request succeeded, if any.
	LastSuccessAt *time.Time

	// LastFailureAt is when the last request failed, if any.
	LastFailureAt *time.Time

	// LastError is the most recent failure, if any.
	LastError string
}

// Healthy reports whether the breaker is closed.
func (h *BackendHealth) Healthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Registry tracks resilient clients and their most recent outcomes.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*trackedBackend
}

type trackedBackend struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// DefaultRegistry is where NewClient registers itself.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]*trackedBackend)}
}

// Register adds a client under the given backend name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = &trackedBackend{client: client}
}

// RecordSuccess notes a successful request for the backend.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.backends[name]; ok {
		now := time.Now()
		b.lastSuccessAt = &now
	}
}

// RecordFailure notes a failed request for the backend.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.backends[name]; ok {
		now := time.Now()
		b.lastFailureAt = &now
		if err != nil {
			b.lastError = err.Error()
		}
	}
}

// Health returns the health of every registered backend.
func (r *Registry) Health() []*BackendHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*BackendHealth, 0, len(r.backends))
	for name, b := range r.backends {
		health = append(health, &BackendHealth{
			Name:          name,
			CircuitState:  b.client.BreakerState(),
			Counts:        b.client.BreakerCounts(),
			LastSuccessAt: b.lastSuccessAt,
			LastFailureAt: b.lastFailureAt,
			LastError:     b.lastError,
		})
	}
	return health
}
