package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

func TestSaveAndLoadKnowledgeRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	id := ids.New()
	entries := []*types.KnowledgeEntry{
		{ID: id, Kind: types.KindFact, Confidence: 0.8, Source: "test", Content: types.KnowledgeContent{Meaning: "the sky is blue"}},
	}
	ctx := context.Background()
	require.NoError(t, store.SaveKnowledge(ctx, entries))

	loaded, err := store.LoadKnowledge(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, id, loaded[0].ID)
	assert.Equal(t, "the sky is blue", loaded[0].Content.Meaning)
}

func TestSaveAndLoadMemoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	id := ids.New()
	entries := map[types.Tier][]*types.MemoryEntry{
		types.TierShort: {{ID: id, Tier: types.TierShort, Importance: 0.5, Content: map[string]any{"a": 1}}},
	}
	ctx := context.Background()
	require.NoError(t, store.SaveMemory(ctx, entries))

	loaded, err := store.LoadMemory(ctx)
	require.NoError(t, err)
	require.Len(t, loaded[types.TierShort], 1)
	assert.Equal(t, id, loaded[types.TierShort][0].ID)
}

func TestSaveKnowledgeReplacesPriorSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first := []*types.KnowledgeEntry{{ID: ids.New(), Kind: types.KindFact}}
	require.NoError(t, store.SaveKnowledge(ctx, first))

	second := []*types.KnowledgeEntry{{ID: ids.New(), Kind: types.KindRule}}
	require.NoError(t, store.SaveKnowledge(ctx, second))

	loaded, err := store.LoadKnowledge(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, types.KindRule, loaded[0].Kind)
}
