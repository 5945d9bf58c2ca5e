package endpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unamentis/patchpanel/capability"
)

func testEndpoint(id string) Endpoint {
	return Endpoint{
		ID:       id,
		Provider: ProviderCloud,
		Tier:     capability.TierMedium,
		Status:   StatusAvailable,
		Cost:     Cost{PerInputToken: 0.000001, PerOutputToken: 0.000002},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(DefaultRegistryConfig(), zap.NewNop())
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(testEndpoint("gpt-4o-mini")))

	t.Run("get returns a copy", func(t *testing.T) {
		ep, err := r.Get("gpt-4o-mini")
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", ep.ID)

		ep.Status = StatusDisabled
		again, err := r.Get("gpt-4o-mini")
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, again.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := r.Get("nope")
		assert.ErrorIs(t, err, ErrEndpointNotFound)
		assert.False(t, r.Has("nope"))
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := r.Register(testEndpoint("gpt-4o-mini"))
		assert.ErrorIs(t, err, ErrDuplicateEndpoint)
	})

	t.Run("empty id", func(t *testing.T) {
		assert.Error(t, r.Register(Endpoint{}))
	})
}

func TestRegistryListOrder(t *testing.T) {
	r := newTestRegistry(t)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(testEndpoint(id)))
	}

	eps := r.List()
	require.Len(t, eps, 3)
	assert.Equal(t, "c", eps[0].ID)
	assert.Equal(t, "a", eps[1].ID)
	assert.Equal(t, "b", eps[2].ID)
}

func TestRegistryStatusDefaultsToLoading(t *testing.T) {
	r := newTestRegistry(t)
	ep := testEndpoint("local-llama")
	ep.Status = ""
	require.NoError(t, r.Register(ep))

	got, err := r.Get("local-llama")
	require.NoError(t, err)
	assert.Equal(t, StatusLoading, got.Status)
	assert.False(t, got.Status.IsUsable())
}

func TestRegistryUpdateStatus(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(testEndpoint("ep")))

	now := time.Now()
	require.NoError(t, r.UpdateStatus("ep", StatusUnavailable, now))

	ep, err := r.Get("ep")
	require.NoError(t, err)
	assert.Equal(t, StatusUnavailable, ep.Status)
	assert.Equal(t, now, ep.LastHealthCheck)

	assert.ErrorIs(t, r.UpdateStatus("nope", StatusAvailable, now), ErrEndpointNotFound)
}

func TestRegistryRecordOutcome(t *testing.T) {
	t.Run("degrades after consecutive failures", func(t *testing.T) {
		r := newTestRegistry(t)
		require.NoError(t, r.Register(testEndpoint("ep")))

		r.RecordOutcome("ep", false, 100*time.Millisecond)
		r.RecordOutcome("ep", false, 100*time.Millisecond)
		ep, _ := r.Get("ep")
		assert.Equal(t, StatusAvailable, ep.Status, "two failures should not degrade")

		r.RecordOutcome("ep", false, 100*time.Millisecond)
		ep, _ = r.Get("ep")
		assert.Equal(t, StatusDegraded, ep.Status)
		assert.Equal(t, 3, r.FailureStreak("ep"))
	})

	t.Run("success resets streak and recovers", func(t *testing.T) {
		r := newTestRegistry(t)
		require.NoError(t, r.Register(testEndpoint("ep")))

		for i := 0; i < 3; i++ {
			r.RecordOutcome("ep", false, time.Millisecond)
		}
		r.RecordOutcome("ep", true, time.Millisecond)

		ep, _ := r.Get("ep")
		assert.Equal(t, StatusAvailable, ep.Status)
		assert.Equal(t, 0, r.FailureStreak("ep"))
	})

	t.Run("failures do not undo operator disable", func(t *testing.T) {
		r := newTestRegistry(t)
		require.NoError(t, r.Register(testEndpoint("ep")))
		require.NoError(t, r.UpdateStatus("ep", StatusDisabled, time.Now()))

		for i := 0; i < 5; i++ {
			r.RecordOutcome("ep", false, time.Millisecond)
		}
		ep, _ := r.Get("ep")
		assert.Equal(t, StatusDisabled, ep.Status)
	})

	t.Run("unknown endpoint is a no-op", func(t *testing.T) {
		r := newTestRegistry(t)
		r.RecordOutcome("nope", false, time.Millisecond)
		assert.Equal(t, 0, r.FailureStreak("nope"))
	})
}

func TestRegistryUpsert(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register(testEndpoint("ep")))
	require.NoError(t, r.UpdateStatus("ep", StatusDegraded, time.Now()))

	replacement := testEndpoint("ep")
	replacement.Tier = capability.TierFrontier
	replacement.Status = StatusAvailable
	require.NoError(t, r.Upsert(replacement))

	ep, err := r.Get("ep")
	require.NoError(t, err)
	assert.Equal(t, capability.TierFrontier, ep.Tier, "static attributes replaced")
	assert.Equal(t, StatusDegraded, ep.Status, "runtime status preserved across upsert")

	t.Run("upsert of new id registers it", func(t *testing.T) {
		require.NoError(t, r.Upsert(testEndpoint("fresh")))
		assert.True(t, r.Has("fresh"))
	})
}

func TestEstimateCost(t *testing.T) {
	ep := testEndpoint("ep")
	assert.InDelta(t, 0.0025, ep.EstimateCost(500, 1000), 1e-9)

	t.Run("free endpoint costs nothing", func(t *testing.T) {
		local := testEndpoint("local")
		local.Cost = Cost{}
		assert.Zero(t, local.EstimateCost(100000, 100000))
	})
}

func TestStatusIsUsable(t *testing.T) {
	assert.True(t, StatusAvailable.IsUsable())
	assert.True(t, StatusDegraded.IsUsable())
	assert.False(t, StatusUnavailable.IsUsable())
	assert.False(t, StatusDisabled.IsUsable())
	assert.False(t, StatusLoading.IsUsable())
}
