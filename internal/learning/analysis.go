// Package learning implements the Learning Engine: experience
// classification, primary/secondary algorithm dispatch, insight
// extraction, and insight-to-knowledge conversion.
package learning

import (
	"fmt"
	"math"
	"strings"

	"cognitive-core/internal/types"
)

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Analysis is the result of analyzing a single Experience: a
// classification plus four scalar measures, all in [0,1].
type Analysis struct {
	Type          types.ExperienceType
	Complexity    float64
	Novelty       float64
	Value         float64
	Applicability float64
}

// Analyze computes (type, complexity, novelty, value, applicability) for
// an experience against the history seen so far.
func Analyze(exp types.Experience, history []types.Experience, priorLearnings int) Analysis {
	complexity := complexityOf(exp)
	novelty := noveltyOf(exp, history)
	value := valueOf(exp)
	applicability := applicabilityOf(exp, priorLearnings)
	return Analysis{
		Type:          classify(exp),
		Complexity:    complexity,
		Novelty:       novelty,
		Value:         value,
		Applicability: applicability,
	}
}

// complexityOf = clamp01(len(data)/1000 + |context_keys|/10 + |action.effects|/5) / 3.
// "data" is the experience's payload: the union of its outcome state and
// changes, serialized length standing in for a byte/record size since
// content is otherwise opaque.
func complexityOf(exp types.Experience) float64 {
	dataLen := payloadLength(exp)
	contextKeys := float64(len(exp.Context))
	effectKeys := float64(len(exp.Action.Effects))

	sum := float64(dataLen)/1000.0 + contextKeys/10.0 + effectKeys/5.0
	return clampUnit(sum) / 3.0
}

func payloadLength(exp types.Experience) int {
	n := 0
	for k, v := range exp.Outcome.State {
		n += len(k) + len(stringify(v))
	}
	for k, v := range exp.Outcome.Changes {
		n += len(k) + len(stringify(v))
	}
	return n
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return "x"
	}
}

// noveltyOf = max(0.1, 1 - |similar_history|/10), where "similar" means a
// composite content/context similarity >= 0.8 against the new experience.
func noveltyOf(exp types.Experience, history []types.Experience) float64 {
	similar := 0
	for _, h := range history {
		if experienceSimilarity(exp, h) >= 0.8 {
			similar++
		}
	}
	novelty := 1.0 - float64(similar)/10.0
	if novelty < 0.1 {
		novelty = 0.1
	}
	return novelty
}

// experienceSimilarity is a composite over action kind match, context key
// overlap, and outcome-value closeness.
func experienceSimilarity(a, b types.Experience) float64 {
	actionMatch := 0.0
	if strings.EqualFold(a.Action.Kind, b.Action.Kind) {
		actionMatch = 1.0
	}
	contextOverlap := keyOverlap(a.Context, b.Context)
	valueCloseness := 1.0 - clampUnit(math.Abs(a.Outcome.Value-b.Outcome.Value))
	return 0.4*actionMatch + 0.3*contextOverlap + 0.3*valueCloseness
}

func keyOverlap(a, b map[string]any) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter, union := 0, 0
	seen := make(map[string]bool)
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		if seen[k] {
			inter++
		} else {
			seen[k] = true
		}
	}
	union = len(seen)
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

// valueOf derives a scalar value from feedback polarity/strength and the
// outcome's own value extractor.
func valueOf(exp types.Experience) float64 {
	polarity := 0.0
	switch exp.Feedback.Type {
	case types.FeedbackPositive:
		polarity = 1.0
	case types.FeedbackNegative:
		polarity = -1.0
	}
	feedbackComponent := clampUnit(0.5 + polarity*clampUnit(exp.Feedback.Strength)*0.5)
	outcomeComponent := clampUnit(0.5 + exp.Outcome.Value*0.5)
	return clampUnit(0.6*feedbackComponent + 0.4*outcomeComponent)
}

// applicabilityOf derives applicability from context breadth and the
// presence of prior learnings to generalize against.
func applicabilityOf(exp types.Experience, priorLearnings int) float64 {
	breadth := clampUnit(float64(len(exp.Context)) / 10.0)
	priorBonus := 0.0
	if priorLearnings > 0 {
		priorBonus = clampUnit(float64(priorLearnings) / 20.0)
	}
	return clampUnit(0.6*breadth + 0.4*priorBonus)
}

func classify(exp types.Experience) types.ExperienceType {
	kind := strings.ToLower(exp.Action.Kind)
	switch {
	case strings.Contains(kind, "learn"):
		return types.ExperienceLearning
	case strings.Contains(kind, "reason") || strings.Contains(kind, "infer"):
		return types.ExperienceReasoning
	case strings.Contains(kind, "creat") || strings.Contains(kind, "generat"):
		return types.ExperienceCreative
	case strings.Contains(kind, "solve") || strings.Contains(kind, "problem"):
		return types.ExperienceProblemSolving
	case strings.Contains(kind, "explor") || strings.Contains(kind, "search"):
		return types.ExperienceExploration
	default:
		return types.ExperienceDefault
	}
}

// Strategy is the output of DetermineStrategy: which algorithms to run
// and at what depth/rate.
type Strategy struct {
	Primary          string
	Secondary        []string
	Depth            int
	ExplorationRate  float64
	AdaptationLevel  float64
}

var strategyTable = map[types.ExperienceType]Strategy{
	types.ExperienceLearning:       {Primary: "supervised", Secondary: []string{"meta", "transfer"}},
	types.ExperienceReasoning:      {Primary: "unsupervised", Secondary: []string{"meta", "active"}},
	types.ExperienceCreative:       {Primary: "reinforcement", Secondary: []string{"adaptive", "online"}},
	types.ExperienceProblemSolving: {Primary: "meta", Secondary: []string{"transfer", "active"}},
	types.ExperienceExploration:    {Primary: "active", Secondary: []string{"online", "adaptive"}},
	types.ExperienceDefault:        {Primary: "supervised", Secondary: []string{"unsupervised"}},
}

// DetermineStrategy looks up the primary/secondary algorithms for the
// analyzed experience type and fills in the derived scalar parameters.
func DetermineStrategy(a Analysis) Strategy {
	s, ok := strategyTable[a.Type]
	if !ok {
		s = strategyTable[types.ExperienceDefault]
	}
	s.Depth = int(math.Ceil(a.Complexity * 5))
	s.ExplorationRate = clamp(a.Novelty*0.5, 0.05, 0.5)
	s.AdaptationLevel = clamp((a.Value+a.Applicability)/2, 0.1, 0.8)
	return s
}
