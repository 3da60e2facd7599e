package learning

import (
	"fmt"

	"cognitive-core/internal/types"
)

// extractDirectInsights computes pattern, causal-relation, and
// generalization insights directly from the experience (independent of
// any pluggable algorithm), then merges them alongside the algorithm
// insights at a later stage.
func extractDirectInsights(exp types.Experience, a Analysis) []types.LearningInsight {
	var out []types.LearningInsight

	if p := detectArithmeticSequence(exp); p != nil {
		out = append(out, types.LearningInsight{
			Pattern:     p,
			Frequency:   1,
			Reliability: 0.8,
			Confidence:  0.7,
			Applicability: a.Applicability,
			Description: "detected an arithmetic sequence pattern in outcome state",
		})
	}

	if p := detectStructuralPattern(exp); p != nil {
		out = append(out, types.LearningInsight{
			Pattern:     p,
			Frequency:   1,
			Reliability: 0.65,
			Confidence:  0.6,
			Applicability: a.Applicability,
			Description: "detected a structural pattern in the experience payload",
		})
	}

	if g := causalGeneralization(exp); g != nil {
		out = append(out, types.LearningInsight{
			Generalization: g,
			Frequency:      1,
			Reliability:    0.6,
			Confidence:     clampUnit(0.5 + a.Value*0.3),
			Applicability:  a.Applicability,
			Description:    fmt.Sprintf("generalized %s -> %s", g.From, g.To),
		})
	}

	return out
}

// detectArithmeticSequence looks for a numeric-array value in the
// outcome state forming an arithmetic progression of length >= 3.
func detectArithmeticSequence(exp types.Experience) *types.Pattern {
	for k, v := range exp.Outcome.State {
		nums, ok := asFloatSlice(v)
		if !ok || len(nums) < 3 {
			continue
		}
		step := nums[1] - nums[0]
		isArithmetic := true
		for i := 2; i < len(nums); i++ {
			if nums[i]-nums[i-1] != step {
				isArithmetic = false
				break
			}
		}
		if isArithmetic {
			elements := make([]any, len(nums))
			for i, n := range nums {
				elements[i] = n
			}
			return &types.Pattern{Structure: "arithmetic_sequence", Elements: elements, Relationships: []string{k}}
		}
	}
	return nil
}

func asFloatSlice(v any) ([]float64, bool) {
	switch t := v.(type) {
	case []float64:
		return t, true
	case []any:
		out := make([]float64, 0, len(t))
		for _, e := range t {
			f, ok := e.(float64)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	default:
		return nil, false
	}
}

// detectStructuralPattern flags whether the experience payload is
// nested-map-dominant or array-dominant, above fixed thresholds.
func detectStructuralPattern(exp types.Experience) *types.Pattern {
	total := len(exp.Outcome.State)
	if total == 0 {
		return nil
	}
	nested, arrays := 0, 0
	for _, v := range exp.Outcome.State {
		switch v.(type) {
		case map[string]any:
			nested++
		case []any, []float64, []string:
			arrays++
		}
	}
	nestedFraction := float64(nested) / float64(total)
	arrayFraction := float64(arrays) / float64(total)

	switch {
	case nestedFraction > 0.5:
		return &types.Pattern{Structure: "nested_dominant", Relationships: []string{"outcome.state"}}
	case arrayFraction > 0.3:
		return &types.Pattern{Structure: "array_dominant", Relationships: []string{"outcome.state"}}
	default:
		return nil
	}
}

// causalGeneralization lifts a simple action -> outcome-polarity rule
// when feedback is strongly signed.
func causalGeneralization(exp types.Experience) *types.Generalization {
	if exp.Feedback.Strength < 0.6 || exp.Feedback.Type == types.FeedbackNeutral {
		return nil
	}
	to := "favorable outcome"
	if exp.Feedback.Type == types.FeedbackNegative {
		to = "unfavorable outcome"
	}
	return &types.Generalization{
		From:     []string{exp.Action.Kind},
		To:       to,
		Validity: clampUnit(exp.Feedback.Strength),
		Scope:    "action:" + exp.Action.Kind,
	}
}
