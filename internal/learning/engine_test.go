package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

type fakeKnowledge struct {
	stored []*types.KnowledgeEntry
}

func (f *fakeKnowledge) IntegrateLearning(entries []*types.KnowledgeEntry, patterns []string) error {
	f.stored = append(f.stored, entries...)
	return nil
}

func sampleExperience() types.Experience {
	return types.Experience{
		ID:        ids.New(),
		Timestamp: 0,
		Context:   map[string]any{"task": "a", "user": "b"},
		Action:    types.Action{Kind: "solve_problem", Effects: map[string]any{"e1": 1}},
		Outcome:   types.Outcome{Value: 0.8, State: map[string]any{"result": "ok"}},
		Feedback:  types.Feedback{Type: types.FeedbackPositive, Strength: 0.9},
	}
}

func TestLearnClassifiesAndRunsStrategy(t *testing.T) {
	kb := &fakeKnowledge{}
	e := New(clock.NewFixed(0), kb, Config{})

	result, err := e.Learn(sampleExperience())
	require.NoError(t, err)
	assert.Equal(t, types.ExperienceProblemSolving, result.Analysis.Type)
	assert.Equal(t, "meta", result.Strategy.Primary)
	assert.NotEmpty(t, result.Insights)
}

func TestLearnConvertsConfidentInsightsToKnowledge(t *testing.T) {
	kb := &fakeKnowledge{}
	e := New(clock.NewFixed(0), kb, Config{})

	_, err := e.Learn(sampleExperience())
	require.NoError(t, err)
	assert.NotEmpty(t, kb.stored)
	for _, entry := range kb.stored {
		assert.GreaterOrEqual(t, entry.Confidence, 0.5)
	}
}

func TestHistoryBoundedAtCapacity(t *testing.T) {
	kb := &fakeKnowledge{}
	e := New(clock.NewFixed(0), kb, Config{HistoryCapacity: 3})

	for i := 0; i < 6; i++ {
		_, err := e.Learn(sampleExperience())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, e.GetState().HistorySize)
}

func TestExplorationRateAndAdaptationLevelAreBounded(t *testing.T) {
	a := Analysis{Novelty: 1.0, Value: 1.0, Applicability: 1.0}
	s := DetermineStrategy(a)
	assert.LessOrEqual(t, s.ExplorationRate, 0.5)
	assert.GreaterOrEqual(t, s.ExplorationRate, 0.05)
	assert.LessOrEqual(t, s.AdaptationLevel, 0.8)
	assert.GreaterOrEqual(t, s.AdaptationLevel, 0.1)
}

func TestNoveltyFloorsAtPoint1(t *testing.T) {
	history := make([]types.Experience, 0, 20)
	base := sampleExperience()
	for i := 0; i < 20; i++ {
		history = append(history, base)
	}
	n := noveltyOf(base, history)
	assert.Equal(t, 0.1, n)
}

func TestTransferKnowledgeOverSelectedHistory(t *testing.T) {
	kb := &fakeKnowledge{}
	e := New(clock.NewFixed(0), kb, Config{})
	exp := sampleExperience()
	exp.Context["domain"] = "math"
	_, err := e.Learn(exp)
	require.NoError(t, err)

	result, err := e.TransferKnowledge("math", "physics")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Insights)
}

func TestTransferKnowledgeNoMatchingDomainIsEmpty(t *testing.T) {
	kb := &fakeKnowledge{}
	e := New(clock.NewFixed(0), kb, Config{})
	exp := sampleExperience()
	exp.Context["domain"] = "math"
	_, err := e.Learn(exp)
	require.NoError(t, err)

	result, err := e.TransferKnowledge("chemistry", "physics")
	require.NoError(t, err)
	assert.Empty(t, result.Insights)
}
