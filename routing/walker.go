package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unamentis/patchpanel/endpoint"
)

// ErrNoRouteConfigured is returned when a no-route decision reaches the
// walker. It indicates a policy authoring bug, not a runtime fault.
var ErrNoRouteConfigured = errors.New("no route configured")

// InvokeFunc performs the actual inference call against one endpoint. The
// wire protocol, retry backoff, and response parsing all live behind this
// callback; the walker only decides which endpoint to hand it next.
type InvokeFunc func(ctx context.Context, endpointID string) (any, error)

// Attempt is one entry of a walk's history: an endpoint that was either
// skipped or invoked.
type Attempt struct {
	EndpointID string        `json:"endpoint_id"`
	Skipped    bool          `json:"skipped"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Error      string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency,omitempty"`
}

// Outcome is a successful walk: the endpoint that answered, its response,
// and the full attempt history leading to it. Degraded is true when the
// answer did not come from the first choice, so the session controller can
// distinguish "degraded but answered" from a clean answer.
type Outcome struct {
	EndpointID string        `json:"endpoint_id"`
	Response   any           `json:"-"`
	Latency    time.Duration `json:"latency"`
	Attempts   []Attempt     `json:"attempts"`
	Degraded   bool          `json:"degraded"`
}

// AllEndpointsFailedError is the terminal failure of a walk: every usable
// endpoint in the chain was tried and none succeeded. It carries the full
// attempt history so the caller can report what was tried.
type AllEndpointsFailedError struct {
	Attempts []Attempt
}

// Error implements the error interface.
func (e *AllEndpointsFailedError) Error() string {
	ids := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		ids = append(ids, a.EndpointID)
	}
	return fmt.Sprintf("all endpoints failed: [%s]", strings.Join(ids, ", "))
}

// Walker executes routing decisions: it tries the decision's endpoints in
// order, skipping unusable ones, and records outcomes into the registry's
// health counters and the record store.
type Walker struct {
	registry *endpoint.Registry
	records  *RecordStore
	logger   *zap.Logger
}

// NewWalker creates a Walker. The record store may be nil when the caller
// does not want routing history.
func NewWalker(registry *endpoint.Registry, records *RecordStore, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		registry: registry,
		records:  records,
		logger:   logger,
	}
}

// Execute walks the decision's chain until one endpoint succeeds. Unusable
// endpoints are skipped without invocation. A failed invocation is recorded
// against the endpoint's health and the walk moves on; the same endpoint is
// never retried within one walk. Cancellation propagates out immediately:
// it does not count against the current endpoint and does not advance the
// chain. When the chain is exhausted, the returned error is an
// *AllEndpointsFailedError carrying every attempt.
func (w *Walker) Execute(ctx context.Context, decision Decision, invoke InvokeFunc) (*Outcome, error) {
	if decision.NoRoute() {
		return nil, fmt.Errorf("%w: task type %s", ErrNoRouteConfigured, decision.TaskType)
	}

	attempts := make([]Attempt, 0, len(decision.Chain))
	for i, id := range decision.Chain {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ep, err := w.registry.Get(id)
		if err != nil {
			attempts = append(attempts, Attempt{
				EndpointID: id,
				Skipped:    true,
				SkipReason: "not registered",
			})
			continue
		}
		if !ep.Status.IsUsable() {
			attempts = append(attempts, Attempt{
				EndpointID: id,
				Skipped:    true,
				SkipReason: fmt.Sprintf("status %s", ep.Status),
			})
			w.logger.Debug("skipping unusable endpoint",
				zap.String("endpoint", id),
				zap.String("status", string(ep.Status)))
			continue
		}

		start := time.Now()
		resp, err := invoke(ctx, id)
		latency := time.Since(start)

		// Caller cancellation is not a failure: no health mutation, no
		// fallback. Only the walker's own context decides; a deadline that
		// expired inside invoke while the caller context is still live is a
		// per-endpoint timeout, which is an ordinary invocation failure and
		// falls through to the next endpoint.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if err != nil {
			attempts = append(attempts, Attempt{
				EndpointID: id,
				Error:      err.Error(),
				Latency:    latency,
			})
			w.registry.RecordOutcome(id, false, latency)
			w.record(decision, id, latency, false)
			w.logger.Warn("endpoint invocation failed, trying next in chain",
				zap.String("endpoint", id),
				zap.Duration("latency", latency),
				zap.Error(err))
			continue
		}

		attempts = append(attempts, Attempt{EndpointID: id, Latency: latency})
		w.registry.RecordOutcome(id, true, latency)
		w.record(decision, id, latency, true)
		return &Outcome{
			EndpointID: id,
			Response:   resp,
			Latency:    latency,
			Attempts:   attempts,
			Degraded:   i > 0 || decision.Reason == ReasonFallback,
		}, nil
	}

	w.record(decision, "", 0, false)
	return nil, &AllEndpointsFailedError{Attempts: attempts}
}

// record appends one routing record for an attempted invocation, or for the
// terminal all-failed outcome when endpointID is empty.
func (w *Walker) record(decision Decision, endpointID string, latency time.Duration, success bool) {
	if w.records == nil {
		return
	}
	w.records.Append(Record{
		TaskType:   decision.TaskType,
		Reason:     decision.Reason,
		RuleName:   decision.RuleName,
		Chain:      decision.Chain,
		EndpointID: endpointID,
		Latency:    latency,
		Success:    success,
	})
}
