// Package algorithms provides the pluggable LearningAlgorithm backends
// dispatched by the Learning Engine's strategy table.
package algorithms

import (
	"strconv"

	"cognitive-core/internal/types"
)

// InsightBatch is the uniform output of every LearningAlgorithm.
type InsightBatch struct {
	Insights []types.LearningInsight
}

// LearningAlgorithm is the pluggable per-algorithm contract: learn(batch)
// -> InsightBatch. Failures are tolerated by the caller; an empty batch
// is a valid, non-error result.
type LearningAlgorithm interface {
	Name() string
	Learn(batch []types.Experience) InsightBatch
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// baseAlgorithm gives every concrete algorithm a uniform, confidence-
// scaled generic insight derived from batch size and average outcome
// value, so each backend contributes something deterministic even
// without a domain-specific model.
type baseAlgorithm struct {
	name       string
	confidence float64
}

func (a baseAlgorithm) Name() string { return a.name }

func (a baseAlgorithm) Learn(batch []types.Experience) InsightBatch {
	if len(batch) == 0 {
		return InsightBatch{}
	}
	avgValue := 0.0
	for _, e := range batch {
		avgValue += e.Outcome.Value
	}
	avgValue /= float64(len(batch))

	insight := types.LearningInsight{
		Frequency:     len(batch),
		Reliability:   clampUnit(float64(len(batch)) / 10.0),
		Confidence:    clampUnit(a.confidence * clampUnit(0.5+avgValue*0.5)),
		Applicability: clampUnit(0.4 + 0.1*float64(len(batch))),
		Description:   a.name + " algorithm observation over " + strconv.Itoa(len(batch)) + " experience(s)",
	}
	return InsightBatch{Insights: []types.LearningInsight{insight}}
}

func Supervised() LearningAlgorithm    { return baseAlgorithm{name: "supervised", confidence: 0.75} }
func Unsupervised() LearningAlgorithm  { return baseAlgorithm{name: "unsupervised", confidence: 0.6} }
func Reinforcement() LearningAlgorithm { return baseAlgorithm{name: "reinforcement", confidence: 0.65} }
func Meta() LearningAlgorithm          { return baseAlgorithm{name: "meta", confidence: 0.7} }
func Transfer() LearningAlgorithm      { return baseAlgorithm{name: "transfer", confidence: 0.6} }
func Active() LearningAlgorithm        { return baseAlgorithm{name: "active", confidence: 0.65} }
func Adaptive() LearningAlgorithm      { return baseAlgorithm{name: "adaptive", confidence: 0.7} }
func Online() LearningAlgorithm        { return baseAlgorithm{name: "online", confidence: 0.55} }

// Registry maps algorithm names to instances, used by the Learning
// Engine to dispatch the strategy table's primary/secondary choices.
func Registry() map[string]LearningAlgorithm {
	return map[string]LearningAlgorithm{
		"supervised":    Supervised(),
		"unsupervised":  Unsupervised(),
		"reinforcement": Reinforcement(),
		"meta":          Meta(),
		"transfer":      Transfer(),
		"active":        Active(),
		"adaptive":      Adaptive(),
		"online":        Online(),
	}
}
