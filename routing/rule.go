package routing

import "github.com/unamentis/patchpanel/capability"

// MatchMode controls how a rule combines its conditions.
type MatchMode string

const (
	MatchAll MatchMode = "all"
	MatchAny MatchMode = "any"
)

// Rule is a conditional override: when its conditions match the current
// snapshot, traffic for its task types is redirected to one target endpoint.
// Rules are pure configuration; evaluation has no side effects.
type Rule struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Name     string `json:"name" yaml:"name"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Priority int    `json:"priority" yaml:"priority"`

	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Mode       MatchMode   `json:"mode" yaml:"mode" validate:"omitempty,oneof=all any"`

	TargetEndpointID string `json:"target_endpoint_id" yaml:"target_endpoint_id" validate:"required"`

	// TaskTypes scopes the rule. Empty means the rule applies to every task
	// type.
	TaskTypes []capability.TaskType `json:"task_types,omitempty" yaml:"task_types,omitempty"`
}

// AppliesTo reports whether the rule is in scope for a task type.
func (r *Rule) AppliesTo(t capability.TaskType) bool {
	if len(r.TaskTypes) == 0 {
		return true
	}
	for _, tt := range r.TaskTypes {
		if tt == t {
			return true
		}
	}
	return false
}

// Matches evaluates the rule's conditions against a snapshot. An empty
// condition list matches under both modes: empty conditions mean "always".
// That is documented policy, not an accident.
func (r *Rule) Matches(s Snapshot) bool {
	if len(r.Conditions) == 0 {
		return true
	}
	switch r.Mode {
	case MatchAny:
		for _, c := range r.Conditions {
			if Evaluate(c, s) {
				return true
			}
		}
		return false
	default: // MatchAll, and the zero value
		for _, c := range r.Conditions {
			if !Evaluate(c, s) {
				return false
			}
		}
		return true
	}
}

// ShouldTrigger reports whether the rule fires for this task type under this
// snapshot.
func (r *Rule) ShouldTrigger(t capability.TaskType, s Snapshot) bool {
	return r.Enabled && r.AppliesTo(t) && r.Matches(s)
}
