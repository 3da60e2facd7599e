package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashedEmbedIsDeterministic(t *testing.T) {
	h := Hashed{}
	v1, err := h.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	v2, err := h.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestHashedEmbedSimilarTextsAreCloserThanUnrelated(t *testing.T) {
	h := Hashed{}
	a, _ := h.Embed(context.Background(), "cats and dogs are pets")
	b, _ := h.Embed(context.Background(), "cats and dogs are animals")
	c, _ := h.Embed(context.Background(), "quantum entanglement physics")

	simAB := CosineSimilarity(a, b)
	simAC := CosineSimilarity(a, c)
	assert.Greater(t, simAB, simAC)
}

func TestEmbedBatchMatchesIndividualEmbed(t *testing.T) {
	h := Hashed{}
	texts := []string{"alpha beta", "gamma delta"}
	batch, err := h.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	for i, text := range texts {
		single, err := h.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}
