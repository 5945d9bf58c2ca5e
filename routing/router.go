// Package routing contains the patch panel: context snapshots, conditions,
// auto-routing rules, the routing table, the resolution algorithm, and the
// execution walker that works through a resolved endpoint chain.
package routing

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unamentis/patchpanel/capability"
	"github.com/unamentis/patchpanel/endpoint"
)

// Reason identifies which layer of the routing policy produced a decision.
type Reason string

const (
	ReasonGlobalOverride Reason = "global_override"
	ReasonManualOverride Reason = "manual_override"
	ReasonAutoRule       Reason = "auto_rule"
	ReasonDefaultRoute   Reason = "default_route"
	ReasonFallback       Reason = "fallback"

	// ReasonNoRoute marks the explicit "no route configured" outcome: the
	// fallback chain was needed and is empty. Never silently an empty
	// success.
	ReasonNoRoute Reason = "no_route"
)

// Decision is the output of one resolution: the ordered endpoint chain to
// attempt and why it was chosen. RuleName is set only for ReasonAutoRule.
type Decision struct {
	TaskType capability.TaskType `json:"task_type"`
	Chain    []string            `json:"chain"`
	Reason   Reason              `json:"reason"`
	RuleName string              `json:"rule_name,omitempty"`
}

// NoRoute reports whether the decision is the explicit no-route outcome.
func (d Decision) NoRoute() bool {
	return d.Reason == ReasonNoRoute || len(d.Chain) == 0
}

// Router resolves task requests into routing decisions. Resolution is pure
// with respect to concurrency: it reads an immutable snapshot and an
// immutable table, so concurrent callers need no coordination.
type Router struct {
	store    *TableStore
	registry *endpoint.Registry
	logger   *zap.Logger
}

// NewRouter creates a Router over a table store and an endpoint registry.
func NewRouter(store *TableStore, registry *endpoint.Registry, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// Resolve produces a routing decision for a task type under a snapshot,
// walking the policy layers in strict priority order: global override,
// manual override, auto-routing rules, default routes, fallback chain.
// Deterministic and total: identical inputs yield identical decisions, and
// the worst case is the explicit no-route decision, never a panic or a
// silent empty chain.
func (r *Router) Resolve(taskType capability.TaskType, snap Snapshot) Decision {
	table := r.store.Current()

	// 1. Global override short-circuits everything, including tier checks.
	// It only degrades to the layers below when the named endpoint does not
	// exist at all.
	if table.GlobalOverride != "" {
		if r.registry.Has(table.GlobalOverride) {
			return Decision{
				TaskType: taskType,
				Chain:    []string{table.GlobalOverride},
				Reason:   ReasonGlobalOverride,
			}
		}
		r.logger.Warn("global override names unknown endpoint, ignoring",
			zap.String("endpoint", table.GlobalOverride))
	}

	// 2. Manual per-task override.
	if id, ok := table.ManualOverrides[taskType]; ok && id != "" {
		if r.registry.Has(id) {
			return r.finish(Decision{
				TaskType: taskType,
				Chain:    []string{id},
				Reason:   ReasonManualOverride,
			})
		}
		r.logger.Warn("manual override names unknown endpoint, ignoring",
			zap.String("task_type", string(taskType)),
			zap.String("endpoint", id))
	}

	// 3. Auto-routing rules: highest priority first, declaration order as
	// the tie-break, single winner.
	if d, ok := r.resolveRules(table, taskType, snap); ok {
		return r.finish(d)
	}

	// 4. Default route chain, returned in the author's order. Capability
	// filtering belongs to execution, not here.
	if chain := r.knownOnly(table.DefaultRoutes[taskType]); len(chain) > 0 {
		return r.finish(Decision{
			TaskType: taskType,
			Chain:    chain,
			Reason:   ReasonDefaultRoute,
		})
	}

	// 5. Fallback chain, or the explicit no-route outcome.
	if chain := r.knownOnly(table.FallbackChain); len(chain) > 0 {
		return r.finish(Decision{
			TaskType: taskType,
			Chain:    chain,
			Reason:   ReasonFallback,
		})
	}

	r.logger.Error("no route configured", zap.String("task_type", string(taskType)))
	return Decision{TaskType: taskType, Reason: ReasonNoRoute}
}

// resolveRules finds the single highest-priority matching rule for the task
// type. Rules are never combined.
func (r *Router) resolveRules(table *Table, taskType capability.TaskType, snap Snapshot) (Decision, bool) {
	candidates := make([]Rule, 0, len(table.Rules))
	for _, rule := range table.Rules {
		if rule.Enabled && rule.AppliesTo(taskType) {
			candidates = append(candidates, rule)
		}
	}
	// SliceStable keeps declaration order among equal priorities.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority > candidates[j].Priority
	})

	for _, rule := range candidates {
		if !rule.Matches(snap) {
			continue
		}
		if !r.registry.Has(rule.TargetEndpointID) {
			r.logger.Warn("matching rule targets unknown endpoint, skipping",
				zap.String("rule", rule.Name),
				zap.String("endpoint", rule.TargetEndpointID))
			continue
		}
		return Decision{
			TaskType: taskType,
			Chain:    []string{rule.TargetEndpointID},
			Reason:   ReasonAutoRule,
			RuleName: rule.Name,
		}, true
	}
	return Decision{}, false
}

// knownOnly drops chain entries that are not in the registry, preserving
// order. Dropped entries are a policy authoring bug and logged loudly.
func (r *Router) knownOnly(chain []string) []string {
	out := make([]string, 0, len(chain))
	for _, id := range chain {
		if r.registry.Has(id) {
			out = append(out, id)
			continue
		}
		r.logger.Warn("routing chain references unknown endpoint, dropping",
			zap.String("endpoint", id))
	}
	return out
}

// finish applies the advisory capability-tier check to a decision. The
// router trusts the configured chain and returns it as-is; tier-inadequate
// entries are only logged so operators can fix the table.
func (r *Router) finish(d Decision) Decision {
	required := capability.Requirements(d.TaskType).MinTier
	for _, id := range d.Chain {
		ep, err := r.registry.Get(id)
		if err != nil {
			continue
		}
		if !ep.Tier.Meets(required) {
			r.logger.Warn("chain entry below task's minimum capability tier",
				zap.String("task_type", string(d.TaskType)),
				zap.String("endpoint", id),
				zap.String("endpoint_tier", string(ep.Tier)),
				zap.String("required_tier", string(required)))
		}
	}
	return d
}
