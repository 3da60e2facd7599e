package reasoning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cognitive-core/internal/types"
)

func TestUncertaintyLabelBucketsOnConfidenceNotItsComplement(t *testing.T) {
	cases := []struct {
		confidence float64
		want       types.UncertaintyLabel
	}{
		{0.9, types.UncertaintyHigh},
		{0.71, types.UncertaintyHigh},
		{0.7, types.UncertaintyMedium},
		{0.5, types.UncertaintyMedium},
		{0.41, types.UncertaintyMedium},
		{0.4, types.UncertaintyLow},
		{0.1, types.UncertaintyLow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, uncertaintyLabel(c.confidence), "confidence=%.2f", c.confidence)
	}
}

func TestSynthesizeLabelsHighConfidenceResultHigh(t *testing.T) {
	runs := []backendRun{
		{
			weight: types.BackendWeight{Backend: types.BackendClassical, Weight: 1},
			result: &types.ReasoningResult{
				Confidence:  0.9,
				Conclusions: []types.Conclusion{{Statement: "the plan holds"}},
			},
		},
	}
	result := synthesize(runs)
	assert.Equal(t, types.UncertaintyHigh, result.UncertaintyLabel)
	assert.InDelta(t, 0.9, result.Confidence, 1e-9)
}
