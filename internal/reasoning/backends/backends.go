// Package backends provides the concrete LogicBackend implementations for
// each logic family named in the reasoning engine's backend-selection
// table. Each backend is deliberately simple and deterministic: they
// exist to demonstrate the selection/execution/synthesis pipeline, not to
// implement a full-strength solver for their respective logics.
package backends

import (
	"context"
	"fmt"
	"strings"

	"cognitive-core/internal/reasoning"
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

func baseResult(kind types.BackendKind, statement string, confidence float64, step string) *types.ReasoningResult {
	return &types.ReasoningResult{
		Conclusions: []types.Conclusion{{Statement: statement, Confidence: confidence}},
		Steps:       []types.ReasoningStep{{Backend: kind, Description: step, Confidence: confidence}},
		Confidence:  confidence,
	}
}

// Classical is straightforward propositional evaluation: high, stable
// confidence regardless of input shape.
type Classical struct{}

func (Classical) Kind() types.BackendKind { return types.BackendClassical }

func (Classical) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("classical analysis of %q", trim(input.Text))
	return baseResult(types.BackendClassical, statement, 0.8, "applied propositional evaluation"), nil
}

// Fuzzy reasons over degree-of-truth language ("somewhat", "roughly").
type Fuzzy struct{}

func (Fuzzy) Kind() types.BackendKind { return types.BackendFuzzy }

func (Fuzzy) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	degree := membershipDegree(input.Text)
	statement := fmt.Sprintf("fuzzy membership degree %.2f for %q", degree, trim(input.Text))
	return baseResult(types.BackendFuzzy, statement, clampUnit(0.5+degree*0.3), "computed fuzzy membership"), nil
}

func membershipDegree(text string) float64 {
	lower := strings.ToLower(text)
	for _, hedge := range []string{"very", "extremely", "completely"} {
		if strings.Contains(lower, hedge) {
			return 0.9
		}
	}
	for _, hedge := range []string{"somewhat", "roughly", "partially"} {
		if strings.Contains(lower, hedge) {
			return 0.5
		}
	}
	return 0.7
}

// Probabilistic assigns likelihood-flavored confidence.
type Probabilistic struct{}

func (Probabilistic) Kind() types.BackendKind { return types.BackendProbabilistic }

func (Probabilistic) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("probabilistic estimate over %q", trim(input.Text))
	r := baseResult(types.BackendProbabilistic, statement, 0.55, "computed posterior estimate")
	r.Alternatives = []string{"alternative hypothesis with lower prior"}
	return r, nil
}

// Modal reasons about necessity/possibility framing.
type Modal struct{}

func (Modal) Kind() types.BackendKind { return types.BackendModal }

func (Modal) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	necessity := strings.Contains(strings.ToLower(input.Text), "must") || strings.Contains(strings.ToLower(input.Text), "necessarily")
	statement := "possibly true"
	confidence := 0.6
	if necessity {
		statement = "necessarily true"
		confidence = 0.85
	}
	return baseResult(types.BackendModal, statement, confidence, "evaluated modal operators"), nil
}

// Temporal reasons about ordering/sequencing language.
type Temporal struct{}

func (Temporal) Kind() types.BackendKind { return types.BackendTemporal }

func (Temporal) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("temporal ordering established for %q", trim(input.Text))
	return baseResult(types.BackendTemporal, statement, 0.65, "resolved event ordering"), nil
}

// Quantum is the non-measurement entry point (engine.ProcessTask handles
// the measurement path directly); it returns a superposed candidate set.
type Quantum struct{}

func (Quantum) Kind() types.BackendKind { return types.BackendQuantum }

func (Quantum) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("quantum-inspired superposition over %q", trim(input.Text))
	r := baseResult(types.BackendQuantum, statement, 0.5, "enumerated candidate logic states")
	r.Alternatives = []string{"alternative collapsed state"}
	return r, nil
}

// Tensor reasons about multi-dimensional/relational structure.
type Tensor struct{}

func (Tensor) Kind() types.BackendKind { return types.BackendTensor }

func (Tensor) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("tensor decomposition of relationships in %q", trim(input.Text))
	return baseResult(types.BackendTensor, statement, 0.6, "decomposed relational structure"), nil
}

// Decision weighs named options, if any, in the input text.
type Decision struct{}

func (Decision) Kind() types.BackendKind { return types.BackendDecision }

func (Decision) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("recommended option for %q", trim(input.Text))
	return baseResult(types.BackendDecision, statement, 0.7, "weighed candidate options"), nil
}

// Inference performs direct implication chaining.
type Inference struct{}

func (Inference) Kind() types.BackendKind { return types.BackendInference }

func (Inference) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("inferred conclusion from %q", trim(input.Text))
	return baseResult(types.BackendInference, statement, 0.72, "chained implication rules"), nil
}

// ProblemSolver decomposes the input into a short solution outline.
type ProblemSolver struct{}

func (ProblemSolver) Kind() types.BackendKind { return types.BackendProblemSolver }

func (ProblemSolver) Reason(_ context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	statement := fmt.Sprintf("solution outline for %q", trim(input.Text))
	r := baseResult(types.BackendProblemSolver, statement, 0.68, "decomposed problem into subgoals")
	r.Conclusions[0].Evidence = []string{"subgoal decomposition", "constraint check"}
	return r, nil
}

func trim(s string) string {
	if len(s) > 60 {
		return s[:60] + "…"
	}
	return s
}

// RegisterAll registers every backend into the given registry, skipping
// any kind not present in enabled (when enabled is non-empty).
func RegisterAll(reg *reasoning.Registry, enabled map[types.BackendKind]bool) error {
	all := []reasoning.LogicBackend{
		Classical{}, Fuzzy{}, Probabilistic{}, Modal{}, Temporal{},
		Quantum{}, Tensor{}, Decision{}, Inference{}, ProblemSolver{},
	}
	for _, b := range all {
		if len(enabled) > 0 && !enabled[b.Kind()] {
			continue
		}
		if err := reg.Register(b); err != nil {
			return err
		}
	}
	return nil
}
