package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

func testConfig() Config {
	return Config{
		CapacityShort:              1000,
		CapacityWorking:            100,
		ConsolidationSimilarity:    0.7,
		OptimizationCompressionSim: 0.8,
	}
}

func TestStoreAndRetrieveRoundTrip(t *testing.T) {
	c := clock.NewFixed(0)
	m := New(c, testConfig())

	id := ids.New()
	_, err := m.Store(id, types.TierShort, map[string]any{"text": "hello world"}, 0.5, []string{"greeting"})
	require.NoError(t, err)

	results := m.Retrieve("hello", types.TierShort)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].Entry.ID)
}

func TestShortTierBoundedAtCapacity(t *testing.T) {
	c := clock.NewFixed(0)
	cfg := testConfig()
	cfg.CapacityShort = 3
	m := New(c, cfg)

	for i := 0; i < 5; i++ {
		_, err := m.Store(ids.New(), types.TierShort, map[string]any{"n": i}, 0.5, nil)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, m.GetState().Counts[types.TierShort], 3)
}

func TestEvictionPrefersLowImportanceStaleEntry(t *testing.T) {
	c := clock.NewFixed(1_000_000)
	cfg := testConfig()
	cfg.CapacityShort = 2
	m := New(c, cfg)

	staleID := ids.New()
	_, err := m.Store(staleID, types.TierShort, map[string]any{"a": 1}, 0.1, nil)
	require.NoError(t, err)
	c.Advance(time.Hour)

	_, err = m.Store(ids.New(), types.TierShort, map[string]any{"b": 1}, 0.9, nil)
	require.NoError(t, err)

	_, err = m.Store(ids.New(), types.TierShort, map[string]any{"c": 1}, 0.9, nil)
	require.NoError(t, err)

	state := m.GetState()
	assert.Equal(t, 2, state.Counts[types.TierShort])
	assert.Equal(t, 1, m.GetMetrics().Evictions)
	_, present := m.index[staleID]
	assert.False(t, present)
}

func TestConsolidateMergesSimilarShortEntries(t *testing.T) {
	c := clock.NewFixed(0)
	m := New(c, testConfig())

	id1, id2 := ids.New(), ids.New()
	_, err := m.Store(id1, types.TierShort, map[string]any{"a": 1}, 0.6, []string{"t1"})
	require.NoError(t, err)
	_, err = m.Store(id2, types.TierShort, map[string]any{"b": 2}, 0.6, []string{"t1"})
	require.NoError(t, err)

	events := m.Consolidate()
	require.Len(t, events, 1)
	assert.InDelta(t, 0.72, longTierImportance(t, m), 0.01)
	assert.Equal(t, 0, m.GetState().Counts[types.TierShort])
	assert.Equal(t, 1, m.GetState().Counts[types.TierLong])
}

func longTierImportance(t *testing.T, m *Manager) float64 {
	t.Helper()
	state := m.tiers[types.TierLong]
	require.Len(t, state, 1)
	return state[0].Importance
}

func TestConsolidateIsIdempotentOnQuiescentStore(t *testing.T) {
	c := clock.NewFixed(0)
	m := New(c, testConfig())
	_, err := m.Store(ids.New(), types.TierShort, map[string]any{"a": 1}, 0.6, []string{"t1"})
	require.NoError(t, err)
	_, err = m.Store(ids.New(), types.TierShort, map[string]any{"b": 2}, 0.6, []string{"t1"})
	require.NoError(t, err)

	first := m.Consolidate()
	require.Len(t, first, 1)

	second := m.Consolidate()
	assert.Empty(t, second)
}

func TestOptimizePrunesLowImportanceIdleEntries(t *testing.T) {
	c := clock.NewFixed(0)
	m := New(c, testConfig())
	_, err := m.Store(ids.New(), types.TierShort, map[string]any{"a": 1}, 0.1, nil)
	require.NoError(t, err)
	c.Advance(2 * time.Hour)

	ops := m.Optimize()
	require.NotEmpty(t, ops)
	assert.Equal(t, "pruning", ops[0].Kind)
	assert.Equal(t, 0, m.GetState().Counts[types.TierShort])
}

func TestClearTierRemovesOnlyThatTier(t *testing.T) {
	c := clock.NewFixed(0)
	m := New(c, testConfig())
	_, err := m.Store(ids.New(), types.TierShort, map[string]any{"a": 1}, 0.5, nil)
	require.NoError(t, err)
	_, err = m.Store(ids.New(), types.TierWorking, map[string]any{"b": 1}, 0.5, nil)
	require.NoError(t, err)

	m.Clear(types.TierShort)
	state := m.GetState()
	assert.Equal(t, 0, state.Counts[types.TierShort])
	assert.Equal(t, 1, state.Counts[types.TierWorking])
}
