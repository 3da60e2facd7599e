package reasoning

import (
	"strings"

	"cognitive-core/internal/types"
)

// Requirements is the output of AnalyzeRequirements: which logic families
// a piece of input appears to call for, plus scalar complexity/uncertainty
// estimates used by the backend selection rule table.
type Requirements struct {
	Temporal       bool
	Modal          bool
	Probabilistic  bool
	Fuzzy          bool
	Quantum        bool
	Tensor         bool
	DecisionIntent bool
	InferenceIntent bool
	ProblemIntent  bool
	Complexity     float64
	Uncertainty    float64
}

var keywordTriggers = map[string][]string{
	"temporal":      {"before", "after", "until", "during", "sequence", "timeline", "when"},
	"modal":         {"must", "might", "possibly", "necessarily", "could", "should", "permitted"},
	"probabilistic": {"likely", "probability", "chance", "odds", "uncertain", "risk"},
	"fuzzy":         {"somewhat", "roughly", "approximately", "partially", "vague", "fuzzy"},
	"quantum":       {"superposition", "entangle", "quantum", "simultaneously", "parallel possibilit"},
	"tensor":        {"multi-dimensional", "tensor", "matrix", "dimension", "relationship between"},
	"decision":      {"decide", "choose", "option", "select", "which one", "pick"},
	"inference":     {"infer", "conclude", "therefore", "implies", "deduce"},
	"problem":       {"solve", "problem", "puzzle", "figure out", "how do i"},
}

// AnalyzeRequirements is a pure function: the same input always yields the
// same requirements, with no hidden state or randomness.
func AnalyzeRequirements(input Input) Requirements {
	text := strings.ToLower(input.Text)

	has := func(kind string) bool {
		for _, kw := range keywordTriggers[kind] {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	}

	wordCount := len(strings.Fields(text))
	complexity := clampUnit(float64(wordCount) / 120.0)
	if has("tensor") {
		complexity = clampUnit(complexity + 0.2)
	}

	uncertainty := 0.0
	if has("probabilistic") {
		uncertainty = 0.7
	}
	if has("fuzzy") {
		uncertainty = clampUnit(uncertainty + 0.3)
	}

	return Requirements{
		Temporal:        has("temporal"),
		Modal:           has("modal"),
		Probabilistic:   has("probabilistic"),
		Fuzzy:           has("fuzzy"),
		Quantum:         has("quantum"),
		Tensor:          has("tensor") || complexity > 0.7,
		DecisionIntent:  has("decision"),
		InferenceIntent: has("inference"),
		ProblemIntent:   has("problem"),
		Complexity:      complexity,
		Uncertainty:     uncertainty,
	}
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

// SelectBackends applies the fixed base-weight rule table against the
// analyzed requirements and normalizes the resulting weights to sum to 1.
func SelectBackends(req Requirements) []types.BackendWeight {
	weights := map[types.BackendKind]float64{
		types.BackendClassical: 0.3,
	}
	if req.Uncertainty > 0.6 {
		weights[types.BackendProbabilistic] = 0.4
	}
	if req.Fuzzy {
		weights[types.BackendFuzzy] = 0.3
	}
	if req.Temporal {
		weights[types.BackendTemporal] = 0.3
	}
	if req.Modal {
		weights[types.BackendModal] = 0.3
	}
	if req.Quantum {
		weights[types.BackendQuantum] = 0.2
	}
	if req.Tensor {
		weights[types.BackendTensor] = 0.4
	}
	if req.DecisionIntent {
		weights[types.BackendDecision] = 0.4
	}
	if req.InferenceIntent {
		weights[types.BackendInference] = 0.3
	}
	if req.ProblemIntent {
		weights[types.BackendProblemSolver] = 0.4
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	out := make([]types.BackendWeight, 0, len(weights))
	for k, w := range weights {
		normalized := w
		if total > 0 {
			normalized = w / total
		}
		out = append(out, types.BackendWeight{Backend: k, Weight: normalized})
	}
	return out
}
