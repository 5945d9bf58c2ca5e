package endpoint

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrEndpointNotFound is returned when an endpoint ID is not registered.
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrDuplicateEndpoint is returned when registering an ID twice.
	ErrDuplicateEndpoint = errors.New("endpoint already registered")
)

// RegistryConfig holds tunables for the Registry.
type RegistryConfig struct {
	// FailureThreshold is the number of consecutive invocation failures
	// after which an available endpoint is marked degraded.
	FailureThreshold int
}

// DefaultRegistryConfig returns the default registry configuration.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		FailureThreshold: 3,
	}
}

// Registry is the catalog of inference endpoints and the single place where
// endpoint status mutates. Expected cardinality is tens of endpoints, so one
// registry-wide lock is enough; callers never hold it across an invocation.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
	order     []string // registration order, for stable List output
	failures  map[string]int

	config RegistryConfig
	logger *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(config RegistryConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultRegistryConfig().FailureThreshold
	}
	return &Registry{
		endpoints: make(map[string]*Endpoint),
		failures:  make(map[string]int),
		config:    config,
		logger:    logger,
	}
}

// Register adds an endpoint to the registry. An endpoint with no status is
// registered as loading; health checks promote it from there.
func (r *Registry) Register(ep Endpoint) error {
	if ep.ID == "" {
		return errors.New("endpoint ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.endpoints[ep.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEndpoint, ep.ID)
	}
	if ep.Status == "" {
		ep.Status = StatusLoading
	}
	stored := ep
	r.endpoints[ep.ID] = &stored
	r.order = append(r.order, ep.ID)
	return nil
}

// Upsert registers an endpoint or, if the ID already exists, replaces its
// static attributes while preserving the current runtime status. Used by
// catalog reloads; endpoints are never removed.
func (r *Registry) Upsert(ep Endpoint) error {
	if ep.ID == "" {
		return errors.New("endpoint ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.endpoints[ep.ID]
	if !exists {
		if ep.Status == "" {
			ep.Status = StatusLoading
		}
		stored := ep
		r.endpoints[ep.ID] = &stored
		r.order = append(r.order, ep.ID)
		return nil
	}
	ep.Status = existing.Status
	ep.LastHealthCheck = existing.LastHealthCheck
	stored := ep
	r.endpoints[ep.ID] = &stored
	return nil
}

// Get returns a copy of the endpoint with the given ID.
func (r *Registry) Get(id string) (Endpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, exists := r.endpoints[id]
	if !exists {
		return Endpoint{}, fmt.Errorf("%w: %s", ErrEndpointNotFound, id)
	}
	return *ep, nil
}

// Has reports whether an endpoint with the given ID is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.endpoints[id]
	return exists
}

// List returns copies of all endpoints in registration order.
func (r *Registry) List() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Endpoint, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.endpoints[id])
	}
	return out
}

// UpdateStatus sets an endpoint's status. This is the only mutation path for
// status besides RecordOutcome's degradation policy; the registry never
// infers status from the absence of calls.
func (r *Registry) UpdateStatus(id string, status Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, exists := r.endpoints[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrEndpointNotFound, id)
	}
	if ep.Status != status {
		r.logger.Info("endpoint status changed",
			zap.String("endpoint", id),
			zap.String("from", string(ep.Status)),
			zap.String("to", string(status)))
	}
	ep.Status = status
	ep.LastHealthCheck = at
	if status == StatusAvailable {
		r.failures[id] = 0
	}
	return nil
}

// RecordOutcome records the result of one invocation against an endpoint.
// Advisory and non-blocking: it updates the consecutive-failure streak, and
// after FailureThreshold consecutive failures marks an available endpoint
// degraded. A success clears the streak and promotes a degraded endpoint back
// to available. Unknown IDs are ignored; the walker already surfaced them.
func (r *Registry) RecordOutcome(id string, success bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ep, exists := r.endpoints[id]
	if !exists {
		return
	}

	if success {
		r.failures[id] = 0
		if ep.Status == StatusDegraded {
			ep.Status = StatusAvailable
			r.logger.Info("endpoint recovered",
				zap.String("endpoint", id),
				zap.Duration("latency", latency))
		}
		return
	}

	r.failures[id]++
	if r.failures[id] >= r.config.FailureThreshold && ep.Status == StatusAvailable {
		ep.Status = StatusDegraded
		r.logger.Warn("endpoint degraded after consecutive failures",
			zap.String("endpoint", id),
			zap.Int("failures", r.failures[id]))
	}
}

// FailureStreak returns the current consecutive-failure count for an
// endpoint. Exposed for stats reporting.
func (r *Registry) FailureStreak(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failures[id]
}
