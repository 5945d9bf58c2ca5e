// Package health runs the periodic endpoint health checks that feed the
// registry's status. The router core never schedules checks itself; this
// package is the collaborator that does.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/unamentis/patchpanel/endpoint"
)

// ProbeFunc checks one endpoint and reports its current status. Typically a
// cheap reachability/readiness call against the endpoint's API; the probe
// owns its own timeout.
type ProbeFunc func(ctx context.Context, ep endpoint.Endpoint) endpoint.Status

// Config holds tunables for the Checker.
type Config struct {
	// Interval between probe sweeps.
	Interval time.Duration
}

// DefaultConfig returns the default checker configuration.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
	}
}

// Checker probes every registered endpoint on a fixed interval and pushes
// results into the registry via UpdateStatus. Disabled endpoints are left
// alone: disabling is an operator decision a probe must not undo.
type Checker struct {
	registry *endpoint.Registry
	probe    ProbeFunc
	config   Config
	logger   *zap.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewChecker creates a Checker over a registry and probe.
func NewChecker(registry *endpoint.Registry, probe ProbeFunc, config Config, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &Checker{
		registry: registry,
		probe:    probe,
		config:   config,
		logger:   logger,
	}
}

// Start launches the probe loop. An immediate sweep runs first so endpoints
// leave the loading state without waiting a full interval. A stopped Checker
// can be started again.
func (c *Checker) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("health checker already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.run(ctx)

	c.started = true
	c.logger.Info("started health checker",
		zap.Duration("interval", c.config.Interval))
	return nil
}

// Stop shuts the probe loop down and waits for the in-flight sweep.
func (c *Checker) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return fmt.Errorf("health checker not started")
	}
	c.started = false
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
	c.logger.Info("health checker stopped")
	return nil
}

func (c *Checker) run(ctx context.Context) {
	defer c.wg.Done()

	c.sweep(ctx)
	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep probes every endpoint once.
func (c *Checker) sweep(ctx context.Context) {
	for _, ep := range c.registry.List() {
		if ctx.Err() != nil {
			return
		}
		if ep.Status == endpoint.StatusDisabled {
			continue
		}
		status := c.probe(ctx, ep)
		if err := c.registry.UpdateStatus(ep.ID, status, time.Now()); err != nil {
			c.logger.Warn("failed to update endpoint status",
				zap.String("endpoint", ep.ID),
				zap.Error(err))
		}
	}
}
