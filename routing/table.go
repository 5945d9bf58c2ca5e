package routing

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/unamentis/patchpanel/capability"
	"github.com/unamentis/patchpanel/endpoint"
)

var validate = validator.New()

// ErrInvalidTable is returned when a routing table file fails validation.
var ErrInvalidTable = errors.New("invalid routing table")

// Table is the full routing policy: default routes, overrides, auto-routing
// rules, and the last-resort fallback chain. Tables are treated as immutable
// once published; runtime updates swap in a whole new table (see TableStore).
type Table struct {
	// DefaultRoutes maps a task type to an ordered endpoint-preference
	// chain. The order is the author's preference and is returned verbatim.
	DefaultRoutes map[capability.TaskType][]string `json:"default_routes,omitempty" yaml:"default_routes,omitempty"`

	// ManualOverrides pins a task type to one endpoint, beating every rule
	// and default.
	ManualOverrides map[capability.TaskType]string `json:"manual_overrides,omitempty" yaml:"manual_overrides,omitempty"`

	// GlobalOverride forces every task to one endpoint. Operator escape
	// hatch for incident response; empty means unset.
	GlobalOverride string `json:"global_override,omitempty" yaml:"global_override,omitempty"`

	// Rules are the auto-routing rules in declaration order. Declaration
	// order is the tie-break between rules of equal priority.
	Rules []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`

	// FallbackChain is tried when nothing else produces a route.
	FallbackChain []string `json:"fallback_chain,omitempty" yaml:"fallback_chain,omitempty"`
}

// LoadTable reads and validates a routing table file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routing table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse routing table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks table-internal consistency: per-rule field validation and
// duplicate rule IDs. Endpoint existence is checked separately against a
// registry (CheckEndpoints) because the catalog is a different document.
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Rules))
	for i, r := range t.Rules {
		if err := validate.Struct(r); err != nil {
			return fmt.Errorf("%w: rule %d (%q): %v", ErrInvalidTable, i, r.ID, err)
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate rule id %q", ErrInvalidTable, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// CheckEndpoints returns the endpoint IDs referenced anywhere in the table
// that are not present in the registry. Advisory: the router degrades around
// unknown references at resolution time rather than refusing the table.
func (t *Table) CheckEndpoints(reg *endpoint.Registry) []string {
	var missing []string
	seen := make(map[string]bool)
	check := func(id string) {
		if id != "" && !seen[id] && !reg.Has(id) {
			seen[id] = true
			missing = append(missing, id)
		}
	}

	check(t.GlobalOverride)
	for _, id := range t.ManualOverrides {
		check(id)
	}
	for _, r := range t.Rules {
		check(r.TargetEndpointID)
	}
	for _, chain := range t.DefaultRoutes {
		for _, id := range chain {
			check(id)
		}
	}
	for _, id := range t.FallbackChain {
		check(id)
	}
	return missing
}
