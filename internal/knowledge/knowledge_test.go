package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/embeddings"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

func newTestBase() *KnowledgeBase {
	return New(clock.NewFixed(1_000_000), nil)
}

func TestStoreAndRetrieveRoundTrip(t *testing.T) {
	kb := newTestBase()
	id := ids.New()
	entry := &types.KnowledgeEntry{
		ID:         id,
		Kind:       types.KindFact,
		Content:    types.KnowledgeContent{Meaning: "the sky is blue", Domain: "general"},
		Confidence: 0.9,
		Source:     "test",
	}
	require.NoError(t, kb.Store(entry))

	got, err := kb.Get(id)
	require.NoError(t, err)
	assert.Equal(t, entry.Content.Meaning, got.Content.Meaning)
}

func TestStoreReplacesExistingID(t *testing.T) {
	kb := newTestBase()
	id := ids.New()
	require.NoError(t, kb.Store(&types.KnowledgeEntry{ID: id, Kind: types.KindFact, Confidence: 0.1}))
	require.NoError(t, kb.Store(&types.KnowledgeEntry{ID: id, Kind: types.KindFact, Confidence: 0.5}))

	got, err := kb.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Confidence)
	assert.Equal(t, 1, kb.Count())
}

func TestRetrieveRanksByConfidenceDescending(t *testing.T) {
	kb := newTestBase()
	require.NoError(t, kb.Store(&types.KnowledgeEntry{ID: ids.New(), Kind: types.KindFact, Confidence: 0.2}))
	require.NoError(t, kb.Store(&types.KnowledgeEntry{ID: ids.New(), Kind: types.KindFact, Confidence: 0.9}))

	results := kb.Retrieve(Query{Kind: types.KindFact})
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Confidence, results[1].Confidence)
}

func TestIntegrateLearningBumpsRelatedConfidenceByAtMostPoint01(t *testing.T) {
	kb := newTestBase()
	existingID := ids.New()
	require.NoError(t, kb.Store(&types.KnowledgeEntry{
		ID: existingID, Kind: types.KindFact, Confidence: 0.5,
		Content: types.KnowledgeContent{Meaning: "birds can fly"},
	}))

	err := kb.IntegrateLearning([]*types.KnowledgeEntry{
		{ID: ids.New(), Kind: types.KindFact, Confidence: 0.8},
	}, nil)
	require.NoError(t, err)

	got, err := kb.Get(existingID)
	require.NoError(t, err)
	assert.InDelta(t, 0.51, got.Confidence, 1e-9)
}

func TestConfidenceNeverExceedsOne(t *testing.T) {
	kb := newTestBase()
	id := ids.New()
	require.NoError(t, kb.Store(&types.KnowledgeEntry{ID: id, Kind: types.KindFact, Confidence: 0.999}))

	for i := 0; i < 5; i++ {
		require.NoError(t, kb.IntegrateLearning([]*types.KnowledgeEntry{
			{ID: ids.New(), Kind: types.KindFact, Confidence: 0.8},
		}, nil))
	}

	got, err := kb.Get(id)
	require.NoError(t, err)
	assert.LessOrEqual(t, got.Confidence, 1.0)
}

func TestClearResetsBase(t *testing.T) {
	kb := newTestBase()
	require.NoError(t, kb.Store(&types.KnowledgeEntry{ID: ids.New(), Kind: types.KindFact}))
	kb.Clear()
	assert.Equal(t, 0, kb.Count())
}

func TestRetrieveSemanticFindsClosestMeaning(t *testing.T) {
	kb := newTestBase().WithSemanticIndex(NewSemanticIndex(embeddings.Hashed{}))

	wantID := ids.New()
	require.NoError(t, kb.Store(&types.KnowledgeEntry{
		ID: wantID, Kind: types.KindFact, Confidence: 0.7,
		Content: types.KnowledgeContent{Meaning: "the cat sat on the mat"},
	}))
	require.NoError(t, kb.Store(&types.KnowledgeEntry{
		ID: ids.New(), Kind: types.KindFact, Confidence: 0.7,
		Content: types.KnowledgeContent{Meaning: "quarterly revenue exceeded projections"},
	}))

	results, err := kb.RetrieveSemantic(context.Background(), "a cat sitting on a mat", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, wantID, results[0].ID)
}

func TestRetrieveSemanticWithoutIndexReturnsNil(t *testing.T) {
	kb := newTestBase()
	results, err := kb.RetrieveSemantic(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Nil(t, results)
}
