package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unamentis/patchpanel/capability"
)

func TestRuleAppliesTo(t *testing.T) {
	t.Run("empty task type set applies to all", func(t *testing.T) {
		r := Rule{Enabled: true}
		assert.True(t, r.AppliesTo(capability.TaskAcknowledgment))
		assert.True(t, r.AppliesTo(capability.TaskTutoringResponse))
	})

	t.Run("scoped rule only applies to its set", func(t *testing.T) {
		r := Rule{TaskTypes: []capability.TaskType{capability.TaskAcknowledgment}}
		assert.True(t, r.AppliesTo(capability.TaskAcknowledgment))
		assert.False(t, r.AppliesTo(capability.TaskTutoringResponse))
	})
}

func TestRuleMatches(t *testing.T) {
	snap := baseSnapshot()
	onWiFi := Condition{Kind: CondNetworkType, Network: NetworkWiFi}
	hotDevice := Condition{Kind: CondThermalState, Op: OpGreaterEqual, ThermalState: ThermalSerious}

	t.Run("empty conditions always match, both modes", func(t *testing.T) {
		assert.True(t, (&Rule{Mode: MatchAll}).Matches(snap))
		assert.True(t, (&Rule{Mode: MatchAny}).Matches(snap))
	})

	t.Run("all mode requires every condition", func(t *testing.T) {
		r := &Rule{Mode: MatchAll, Conditions: []Condition{onWiFi, hotDevice}}
		assert.False(t, r.Matches(snap), "device is nominal, thermal condition fails")

		hot := snap
		hot.ThermalState = ThermalCritical
		assert.True(t, r.Matches(hot))
	})

	t.Run("any mode requires one condition", func(t *testing.T) {
		r := &Rule{Mode: MatchAny, Conditions: []Condition{onWiFi, hotDevice}}
		assert.True(t, r.Matches(snap), "wifi matches even though thermal does not")

		offline := snap
		offline.Network = NetworkNone
		assert.False(t, r.Matches(offline))
	})

	t.Run("zero-value mode behaves as all", func(t *testing.T) {
		r := &Rule{Conditions: []Condition{hotDevice}}
		assert.False(t, r.Matches(snap))
	})
}

func TestRuleShouldTrigger(t *testing.T) {
	snap := baseSnapshot()
	r := Rule{
		Enabled:   true,
		TaskTypes: []capability.TaskType{capability.TaskAcknowledgment},
	}

	assert.True(t, r.ShouldTrigger(capability.TaskAcknowledgment, snap))
	assert.False(t, r.ShouldTrigger(capability.TaskTutoringResponse, snap))

	r.Enabled = false
	assert.False(t, r.ShouldTrigger(capability.TaskAcknowledgment, snap))
}
