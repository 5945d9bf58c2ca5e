package routing

import (
	"time"

	"github.com/unamentis/patchpanel/endpoint"
)

// Op is a numeric comparison operator. Comparisons are closed: <= and >=
// include the boundary.
type Op string

const (
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpEqual        Op = "=="
)

// Compare applies the operator to (value, threshold). Unknown operators
// never match.
func (o Op) Compare(value, threshold float64) bool {
	switch o {
	case OpLess:
		return value < threshold
	case OpLessEqual:
		return value <= threshold
	case OpGreater:
		return value > threshold
	case OpGreaterEqual:
		return value >= threshold
	case OpEqual:
		return value == threshold
	default:
		return false
	}
}

// ConditionKind tags which snapshot field a condition reads. Each kind maps
// to exactly one field; composition is the rule's job, not the condition's.
type ConditionKind string

const (
	CondThermalState    ConditionKind = "thermal_state"
	CondMemoryPressure  ConditionKind = "memory_pressure"
	CondBatteryLevel    ConditionKind = "battery_level"
	CondLowPowerMode    ConditionKind = "low_power_mode"
	CondNetworkType     ConditionKind = "network_type"
	CondNetworkLatency  ConditionKind = "network_latency_ms"
	CondSessionBudget   ConditionKind = "session_budget_remaining"
	CondTaskCost        ConditionKind = "task_cost_estimate"
	CondSessionDuration ConditionKind = "session_duration_sec"
	CondPromptTokens    ConditionKind = "prompt_tokens"
	CondContextTokens   ConditionKind = "context_tokens"
	CondEndpointStatus  ConditionKind = "endpoint_status"
	CondEndpointLatency ConditionKind = "endpoint_latency_ms"
	CondTimeOfDay       ConditionKind = "time_of_day"
)

// Condition is a tagged predicate over a context snapshot. Only the operands
// relevant to its kind are set; the rest stay at their zero value and are
// omitted from serialized form.
type Condition struct {
	Kind ConditionKind `json:"kind" yaml:"kind"`

	// Numeric comparisons (battery, latency, cost, duration, token counts)
	// and the ordered-state comparisons (thermal, memory).
	Op        Op      `json:"op,omitempty" yaml:"op,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// Operands for ordered-state and match conditions.
	ThermalState   ThermalState   `json:"thermal_state,omitempty" yaml:"thermal_state,omitempty"`
	MemoryPressure MemoryPressure `json:"memory_pressure,omitempty" yaml:"memory_pressure,omitempty"`
	Network        NetworkType    `json:"network,omitempty" yaml:"network,omitempty"`
	LowPower       bool           `json:"low_power,omitempty" yaml:"low_power,omitempty"`

	// Operands for endpoint-scoped conditions.
	EndpointID string          `json:"endpoint_id,omitempty" yaml:"endpoint_id,omitempty"`
	Status     endpoint.Status `json:"status,omitempty" yaml:"status,omitempty"`

	// Operands for time-of-day range checks, local hours [Start, End).
	// A range that wraps midnight (Start > End) is honored.
	StartHour int `json:"start_hour,omitempty" yaml:"start_hour,omitempty"`
	EndHour   int `json:"end_hour,omitempty" yaml:"end_hour,omitempty"`
}

// Evaluate tests a condition against a snapshot. Pure and total: there is no
// error path. Unknown kinds, unknown operators, and endpoint-scoped
// conditions naming an endpoint absent from the snapshot all evaluate to
// false.
func Evaluate(c Condition, s Snapshot) bool {
	switch c.Kind {
	case CondThermalState:
		value, threshold := s.ThermalState.Rank(), c.ThermalState.Rank()
		if value < 0 || threshold < 0 {
			return false
		}
		return c.Op.Compare(float64(value), float64(threshold))
	case CondMemoryPressure:
		value, threshold := s.MemoryPressure.Rank(), c.MemoryPressure.Rank()
		if value < 0 || threshold < 0 {
			return false
		}
		return c.Op.Compare(float64(value), float64(threshold))
	case CondBatteryLevel:
		return c.Op.Compare(s.BatteryLevel, c.Threshold)
	case CondLowPowerMode:
		return s.LowPowerMode == c.LowPower
	case CondNetworkType:
		return s.Network == c.Network
	case CondNetworkLatency:
		return c.Op.Compare(s.NetworkLatencyMs, c.Threshold)
	case CondSessionBudget:
		return c.Op.Compare(s.SessionBudgetRemaining, c.Threshold)
	case CondTaskCost:
		return c.Op.Compare(s.TaskCostEstimate, c.Threshold)
	case CondSessionDuration:
		return c.Op.Compare(s.SessionDuration.Seconds(), c.Threshold)
	case CondPromptTokens:
		return c.Op.Compare(float64(s.PromptTokens), c.Threshold)
	case CondContextTokens:
		return c.Op.Compare(float64(s.ContextTokens), c.Threshold)
	case CondEndpointStatus:
		health, ok := s.Endpoints[c.EndpointID]
		if !ok {
			return false
		}
		return health.Status == c.Status
	case CondEndpointLatency:
		health, ok := s.Endpoints[c.EndpointID]
		if !ok {
			return false
		}
		return c.Op.Compare(health.LatencyMs, c.Threshold)
	case CondTimeOfDay:
		return hourInRange(s.CapturedAt, c.StartHour, c.EndHour)
	default:
		return false
	}
}

// hourInRange reports whether t's local hour falls in [start, end), wrapping
// across midnight when start > end. start == end means an empty range.
func hourInRange(t time.Time, start, end int) bool {
	h := t.Hour()
	if start == end {
		return false
	}
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
