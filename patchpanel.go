// Package patchpanel decides which inference endpoint should handle each
// unit of work a voice-tutoring session produces, and in what fallback
// order. It composes the endpoint registry, the routing table, the resolver,
// and the execution walker into one handle the session controller owns.
//
// The panel never runs inference and never speaks a wire protocol: the
// actual call happens inside the InvokeFunc the caller supplies.
package patchpanel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unamentis/patchpanel/capability"
	"github.com/unamentis/patchpanel/endpoint"
	"github.com/unamentis/patchpanel/routing"
)

// TaskRequest is the caller's description of one unit of inference work. The
// panel is agnostic to payload content; token estimates feed cost- and
// length-based routing conditions.
type TaskRequest struct {
	TaskType               capability.TaskType `json:"task_type"`
	EstimatedPromptTokens  int                 `json:"estimated_prompt_tokens"`
	EstimatedContextTokens int                 `json:"estimated_context_tokens"`
}

// Options configures a PatchPanel.
type Options struct {
	// RecordHistory bounds the routing record window. Zero means the
	// default window size.
	RecordHistory int

	// Logger is used by every component. Nil means no logging.
	Logger *zap.Logger
}

// PatchPanel is the composed router: resolve a task request to an endpoint
// chain, walk the chain, and keep the books. One panel serves one session
// controller; it holds no process-wide state.
type PatchPanel struct {
	registry *endpoint.Registry
	store    *routing.TableStore
	router   *routing.Router
	walker   *routing.Walker
	records  *routing.RecordStore
	provider routing.SnapshotProvider
	logger   *zap.Logger
}

// New builds a PatchPanel over an endpoint registry, a table store, and the
// snapshot provider supplied by the device/network/session monitors.
func New(registry *endpoint.Registry, store *routing.TableStore, provider routing.SnapshotProvider, opts Options) (*PatchPanel, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	records, err := routing.NewRecordStore(opts.RecordHistory)
	if err != nil {
		return nil, fmt.Errorf("create record store: %w", err)
	}
	return &PatchPanel{
		registry: registry,
		store:    store,
		router:   routing.NewRouter(store, registry, logger),
		walker:   routing.NewWalker(registry, records, logger),
		records:  records,
		provider: provider,
		logger:   logger,
	}, nil
}

// Registry returns the panel's endpoint registry, for health checkers and
// catalog reloads.
func (p *PatchPanel) Registry() *endpoint.Registry {
	return p.registry
}

// Resolve obtains a fresh context snapshot and resolves the request into a
// routing decision. The request's token estimates overlay the snapshot so
// length-based conditions see the pending task, not a stale one.
func (p *PatchPanel) Resolve(ctx context.Context, req TaskRequest) (routing.Decision, error) {
	snap, err := p.provider.Snapshot(ctx)
	if err != nil {
		return routing.Decision{}, fmt.Errorf("build context snapshot: %w", err)
	}
	snap.PromptTokens = req.EstimatedPromptTokens
	snap.ContextTokens = req.EstimatedContextTokens
	return p.router.Resolve(req.TaskType, snap), nil
}

// ResolveWith resolves against a caller-supplied snapshot, skipping the
// provider. Useful for dry runs and tests.
func (p *PatchPanel) ResolveWith(req TaskRequest, snap routing.Snapshot) routing.Decision {
	snap.PromptTokens = req.EstimatedPromptTokens
	snap.ContextTokens = req.EstimatedContextTokens
	return p.router.Resolve(req.TaskType, snap)
}

// Do resolves a task request and walks the resulting chain with the supplied
// invoke callback. The outcome reports which endpoint answered and whether
// the answer was degraded (a fallback was used).
func (p *PatchPanel) Do(ctx context.Context, req TaskRequest, invoke routing.InvokeFunc) (*routing.Outcome, error) {
	decision, err := p.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return p.walker.Execute(ctx, decision, invoke)
}

// Execute walks an already-resolved decision.
func (p *PatchPanel) Execute(ctx context.Context, decision routing.Decision, invoke routing.InvokeFunc) (*routing.Outcome, error) {
	return p.walker.Execute(ctx, decision, invoke)
}

// EstimateCost returns the expected cost of the request on a specific
// endpoint, for budget-aware callers building snapshots.
func (p *PatchPanel) EstimateCost(endpointID string, req TaskRequest, estimatedOutputTokens int) (float64, error) {
	ep, err := p.registry.Get(endpointID)
	if err != nil {
		return 0, err
	}
	in := req.EstimatedPromptTokens + req.EstimatedContextTokens
	return ep.EstimateCost(in, estimatedOutputTokens), nil
}

// Stats returns the read-only projection over the routing record window.
func (p *PatchPanel) Stats() routing.Stats {
	return p.records.Stats()
}

// Records returns the retained routing records, oldest first.
func (p *PatchPanel) Records() []routing.Record {
	return p.records.Records()
}
