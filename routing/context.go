package routing

import (
	"context"
	"time"

	"github.com/unamentis/patchpanel/capability"
	"github.com/unamentis/patchpanel/endpoint"
)

// ThermalState is the device thermal state, ordered from coolest to hottest.
type ThermalState string

const (
	ThermalNominal  ThermalState = "nominal"
	ThermalFair     ThermalState = "fair"
	ThermalSerious  ThermalState = "serious"
	ThermalCritical ThermalState = "critical"
)

var thermalRank = map[ThermalState]int{
	ThermalNominal:  0,
	ThermalFair:     1,
	ThermalSerious:  2,
	ThermalCritical: 3,
}

// Rank returns the position of t in the thermal ordering, or -1 if unknown.
func (t ThermalState) Rank() int {
	if r, ok := thermalRank[t]; ok {
		return r
	}
	return -1
}

// MemoryPressure is the device memory pressure, ordered from calm to critical.
type MemoryPressure string

const (
	MemoryNormal   MemoryPressure = "normal"
	MemoryWarning  MemoryPressure = "warning"
	MemoryCritical MemoryPressure = "critical"
)

var memoryRank = map[MemoryPressure]int{
	MemoryNormal:   0,
	MemoryWarning:  1,
	MemoryCritical: 2,
}

// Rank returns the position of m in the pressure ordering, or -1 if unknown.
func (m MemoryPressure) Rank() int {
	if r, ok := memoryRank[m]; ok {
		return r
	}
	return -1
}

// NetworkType is the active network transport.
type NetworkType string

const (
	NetworkWiFi     NetworkType = "wifi"
	NetworkCellular NetworkType = "cellular"
	NetworkNone     NetworkType = "none"
)

// EndpointHealth is the live view of one endpoint as seen by the snapshot
// builder: its status at capture time plus recent observed latency.
type EndpointHealth struct {
	Status    endpoint.Status `json:"status" yaml:"status"`
	LatencyMs float64         `json:"latency_ms" yaml:"latency_ms"`
}

// Snapshot is a point-in-time capture of every condition the router can
// evaluate. It is an immutable value: build a fresh one before each
// resolution, never mutate one in place. Time is captured here so condition
// evaluation stays pure.
type Snapshot struct {
	ThermalState   ThermalState   `json:"thermal_state" yaml:"thermal_state"`
	MemoryPressure MemoryPressure `json:"memory_pressure" yaml:"memory_pressure"`

	BatteryLevel float64 `json:"battery_level" yaml:"battery_level"` // 0.0–1.0
	LowPowerMode bool    `json:"low_power_mode" yaml:"low_power_mode"`

	DeviceTier capability.Tier `json:"device_tier" yaml:"device_tier"`

	Network          NetworkType `json:"network" yaml:"network"`
	NetworkLatencyMs float64     `json:"network_latency_ms" yaml:"network_latency_ms"`

	Endpoints map[string]EndpointHealth `json:"endpoints" yaml:"endpoints"`

	SessionBudgetRemaining float64       `json:"session_budget_remaining" yaml:"session_budget_remaining"`
	TaskCostEstimate       float64       `json:"task_cost_estimate" yaml:"task_cost_estimate"`
	SessionDuration        time.Duration `json:"session_duration" yaml:"session_duration"`

	PromptTokens  int `json:"prompt_tokens" yaml:"prompt_tokens"`
	ContextTokens int `json:"context_tokens" yaml:"context_tokens"`

	CapturedAt time.Time `json:"captured_at" yaml:"captured_at"`
}

// SnapshotProvider supplies a fresh context snapshot on demand. Implemented
// by the device/network/session monitors outside this module; the router
// never polls sensors itself.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// SnapshotProviderFunc adapts a function to the SnapshotProvider interface.
type SnapshotProviderFunc func(ctx context.Context) (Snapshot, error)

// Snapshot implements SnapshotProvider.
func (f SnapshotProviderFunc) Snapshot(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}
