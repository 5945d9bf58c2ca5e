package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/unamentis/patchpanel/endpoint"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		ThermalState:           ThermalNominal,
		MemoryPressure:         MemoryNormal,
		BatteryLevel:           0.8,
		Network:                NetworkWiFi,
		NetworkLatencyMs:       45,
		SessionBudgetRemaining: 1.50,
		TaskCostEstimate:       0.02,
		SessionDuration:        10 * time.Minute,
		PromptTokens:           800,
		ContextTokens:          4000,
		Endpoints: map[string]EndpointHealth{
			"gpt-4o": {Status: endpoint.StatusAvailable, LatencyMs: 320},
		},
		CapturedAt: time.Date(2026, 3, 14, 14, 30, 0, 0, time.UTC),
	}
}

func TestOpCompare(t *testing.T) {
	t.Run("closed comparisons include the boundary", func(t *testing.T) {
		assert.True(t, OpLessEqual.Compare(5, 5))
		assert.True(t, OpGreaterEqual.Compare(5, 5))
		assert.False(t, OpLess.Compare(5, 5))
		assert.False(t, OpGreater.Compare(5, 5))
		assert.True(t, OpEqual.Compare(5, 5))
	})

	t.Run("unknown operator never matches", func(t *testing.T) {
		assert.False(t, Op("!=").Compare(1, 2))
	})
}

func TestEvaluateThermalAndMemory(t *testing.T) {
	snap := baseSnapshot()
	snap.ThermalState = ThermalSerious
	snap.MemoryPressure = MemoryWarning

	assert.True(t, Evaluate(Condition{
		Kind: CondThermalState, Op: OpGreaterEqual, ThermalState: ThermalSerious,
	}, snap))
	assert.False(t, Evaluate(Condition{
		Kind: CondThermalState, Op: OpGreaterEqual, ThermalState: ThermalCritical,
	}, snap))
	assert.True(t, Evaluate(Condition{
		Kind: CondMemoryPressure, Op: OpLess, MemoryPressure: MemoryCritical,
	}, snap))

	t.Run("unknown state operand is false, not a panic", func(t *testing.T) {
		assert.False(t, Evaluate(Condition{
			Kind: CondThermalState, Op: OpGreaterEqual, ThermalState: ThermalState("melting"),
		}, snap))
	})
}

func TestEvaluateNumericKinds(t *testing.T) {
	snap := baseSnapshot()

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"battery below", Condition{Kind: CondBatteryLevel, Op: OpLess, Threshold: 0.9}, true},
		{"battery boundary", Condition{Kind: CondBatteryLevel, Op: OpGreaterEqual, Threshold: 0.8}, true},
		{"network latency", Condition{Kind: CondNetworkLatency, Op: OpGreater, Threshold: 100}, false},
		{"budget remaining", Condition{Kind: CondSessionBudget, Op: OpLessEqual, Threshold: 1.50}, true},
		{"task cost", Condition{Kind: CondTaskCost, Op: OpGreater, Threshold: 0.01}, true},
		{"session duration seconds", Condition{Kind: CondSessionDuration, Op: OpGreaterEqual, Threshold: 600}, true},
		{"prompt tokens", Condition{Kind: CondPromptTokens, Op: OpLess, Threshold: 1000}, true},
		{"context tokens", Condition{Kind: CondContextTokens, Op: OpGreater, Threshold: 8000}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.cond, snap))
		})
	}
}

func TestEvaluateMatchKinds(t *testing.T) {
	snap := baseSnapshot()

	assert.True(t, Evaluate(Condition{Kind: CondNetworkType, Network: NetworkWiFi}, snap))
	assert.False(t, Evaluate(Condition{Kind: CondNetworkType, Network: NetworkNone}, snap))
	assert.True(t, Evaluate(Condition{Kind: CondLowPowerMode, LowPower: false}, snap))

	snap.LowPowerMode = true
	assert.True(t, Evaluate(Condition{Kind: CondLowPowerMode, LowPower: true}, snap))
}

func TestEvaluateEndpointScoped(t *testing.T) {
	snap := baseSnapshot()

	t.Run("status match", func(t *testing.T) {
		assert.True(t, Evaluate(Condition{
			Kind: CondEndpointStatus, EndpointID: "gpt-4o", Status: endpoint.StatusAvailable,
		}, snap))
		assert.False(t, Evaluate(Condition{
			Kind: CondEndpointStatus, EndpointID: "gpt-4o", Status: endpoint.StatusDegraded,
		}, snap))
	})

	t.Run("latency comparison", func(t *testing.T) {
		assert.True(t, Evaluate(Condition{
			Kind: CondEndpointLatency, EndpointID: "gpt-4o", Op: OpGreater, Threshold: 300,
		}, snap))
	})

	t.Run("unknown endpoint evaluates false", func(t *testing.T) {
		assert.False(t, Evaluate(Condition{
			Kind: CondEndpointStatus, EndpointID: "ghost", Status: endpoint.StatusAvailable,
		}, snap))
		assert.False(t, Evaluate(Condition{
			Kind: CondEndpointLatency, EndpointID: "ghost", Op: OpLess, Threshold: 1000,
		}, snap))
	})
}

func TestEvaluateTimeOfDay(t *testing.T) {
	snap := baseSnapshot() // 14:30

	assert.True(t, Evaluate(Condition{Kind: CondTimeOfDay, StartHour: 9, EndHour: 17}, snap))
	assert.False(t, Evaluate(Condition{Kind: CondTimeOfDay, StartHour: 17, EndHour: 22}, snap))

	t.Run("range wrapping midnight", func(t *testing.T) {
		late := snap
		late.CapturedAt = time.Date(2026, 3, 14, 23, 5, 0, 0, time.UTC)
		assert.True(t, Evaluate(Condition{Kind: CondTimeOfDay, StartHour: 22, EndHour: 6}, late))

		early := snap
		early.CapturedAt = time.Date(2026, 3, 14, 5, 0, 0, 0, time.UTC)
		assert.True(t, Evaluate(Condition{Kind: CondTimeOfDay, StartHour: 22, EndHour: 6}, early))
		assert.False(t, Evaluate(Condition{Kind: CondTimeOfDay, StartHour: 22, EndHour: 6}, snap))
	})

	t.Run("empty range never matches", func(t *testing.T) {
		assert.False(t, Evaluate(Condition{Kind: CondTimeOfDay, StartHour: 8, EndHour: 8}, snap))
	})
}

func TestEvaluateUnknownKind(t *testing.T) {
	assert.False(t, Evaluate(Condition{Kind: ConditionKind("moon_phase")}, baseSnapshot()))
}
