package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/config"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/reasoning"
	"cognitive-core/internal/types"
)

func newRunningOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg := *config.Default()
	o := New(cfg, clock.NewFixed(0))
	require.NoError(t, o.Initialize())
	require.NoError(t, o.Start())
	return o
}

func TestLifecycleRequiresInitializedBeforeStart(t *testing.T) {
	cfg := *config.Default()
	o := New(cfg, clock.NewFixed(0))
	err := o.Start()
	require.Error(t, err)
}

func TestLifecycleHappyPath(t *testing.T) {
	o := newRunningOrchestrator(t)
	assert.Equal(t, StateRunning, o.GetStatus().State)
	require.NoError(t, o.Stop())
	assert.Equal(t, StateStopped, o.GetStatus().State)
}

func TestProcessInputRequiresRunning(t *testing.T) {
	cfg := *config.Default()
	o := New(cfg, clock.NewFixed(0))
	require.NoError(t, o.Initialize())
	_, err := o.ProcessInput(context.Background(), reasoning.Input{Text: "hello"})
	require.Error(t, err)
}

func TestProcessInputReturnsReasoningResultAndUpdatesStatus(t *testing.T) {
	o := newRunningOrchestrator(t)
	result, err := o.ProcessInput(context.Background(), reasoning.Input{Text: "decide whether this plan is likely to succeed"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, o.GetStatus().Processed)
}

func TestExecutePlanRunsEachActionAndRecordsOutcomes(t *testing.T) {
	o := newRunningOrchestrator(t)
	plan := Plan{Actions: []types.Action{
		{Kind: "solve_problem", Effects: map[string]any{"x": 1}},
		{Kind: "solve_problem", Effects: map[string]any{"y": 2}},
	}}
	result, err := o.ExecutePlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Len(t, result.Outcomes, 2)
	assert.True(t, result.Success)
}

func TestResetWipesKnowledgeAndMemoryAndReturnsToUninitialized(t *testing.T) {
	o := newRunningOrchestrator(t)
	_, err := o.ProcessInput(context.Background(), reasoning.Input{Text: "hello world"})
	require.NoError(t, err)
	_, err = o.memoryManager.Store(ids.New(), types.TierShort, map[string]any{"a": 1}, 0.5, nil)
	require.NoError(t, err)
	require.Greater(t, o.knowledge.Count(), 0)

	require.NoError(t, o.Reset())
	assert.Equal(t, StateUninitialized, o.GetStatus().State)
	assert.Equal(t, 0, o.knowledge.Count())
	assert.Equal(t, 0, o.memoryManager.GetState().Counts[types.TierShort])
}

func TestDecideChoosesAmongOptions(t *testing.T) {
	o := newRunningOrchestrator(t)
	decision, err := o.Decide(context.Background(), reasoning.Input{Text: "which approach should we take"}, []string{"rewrite", "patch"})
	require.NoError(t, err)
	assert.Contains(t, []string{"rewrite", "patch"}, decision.Chosen)
	require.NotNil(t, decision.Result)
}

func TestGetMetricsReflectsProcessedInput(t *testing.T) {
	o := newRunningOrchestrator(t)
	_, err := o.ProcessInput(context.Background(), reasoning.Input{Text: "hello world"})
	require.NoError(t, err)

	m := o.GetMetrics()
	assert.Equal(t, int64(1), m.Counters["process_input_ok"])
	assert.Contains(t, m.Gauges, "last_confidence")
}

func TestTransferKnowledgeRequiresRunning(t *testing.T) {
	cfg := *config.Default()
	o := New(cfg, clock.NewFixed(0))
	require.NoError(t, o.Initialize())
	_, err := o.TransferKnowledge("math", "physics")
	require.Error(t, err)
}
