package reasoning

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/errors"
	"cognitive-core/internal/types"
)

// Config bounds the engine's concurrency and adaptive-reuse behavior.
type Config struct {
	FanoutMax       int
	AdaptiveThreshold float64
	QuantumMaxStates  int
}

// Engine is the Multi-Modal Reasoning Engine: it selects backends for an
// input, runs them concurrently (bounded by fanout), synthesizes their
// results, runs a meta-reasoning pass, and updates adaptive strategies.
type Engine struct {
	registry *Registry
	adaptive *AdaptiveStrategyStore
	cfg      Config
}

// New constructs a Reasoning Engine with its backend registry populated.
func New(c clock.Clock, registry *Registry, cfg Config) *Engine {
	if cfg.FanoutMax <= 0 {
		cfg.FanoutMax = 8
	}
	return &Engine{
		registry: registry,
		adaptive: NewAdaptiveStrategyStore(c, cfg.AdaptiveThreshold),
		cfg:      cfg,
	}
}

// Reason is the primary entry point: analyze -> select -> execute ->
// synthesize -> meta-reason -> update adaptive strategies.
func (e *Engine) Reason(ctx context.Context, input Input) (*types.ReasoningResult, error) {
	if input.Text == "" {
		return &types.ReasoningResult{
			Confidence:       0,
			Uncertainty:      1,
			UncertaintyLabel: types.UncertaintyLow,
			ErrorKind:        errors.InvalidInput.String(),
		}, nil
	}

	req := AnalyzeRequirements(input)
	weights := e.applyAdaptiveReuse(SelectBackends(req))

	runs, err := e.execute(ctx, input, weights)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.New("reasoning.Reason", errors.ReasoningExhausted, "no backend produced a result")
	}

	result := synthesize(runs)
	result.Meta = metaReason(result, runs)

	for _, r := range runs {
		e.adaptive.Update(r.weight.Backend, result.Confidence, result.Meta.Quality)
	}

	return result, nil
}

// applyAdaptiveReuse adds any registered backend whose adaptive strategy
// clears the reuse bar (success_rate above threshold, or idle more than
// 24h — see AdaptiveStrategyStore.ShouldReuse) but wasn't already picked
// by the keyword rule table, weighted by its current adaptive confidence,
// then renormalizes every weight to sum to 1.
func (e *Engine) applyAdaptiveReuse(weights []types.BackendWeight) []types.BackendWeight {
	selected := make(map[types.BackendKind]bool, len(weights))
	for _, w := range weights {
		selected[w.Backend] = true
	}

	available := e.registry.Available()
	sort.Slice(available, func(i, j int) bool { return available[i] < available[j] })

	for _, kind := range available {
		if selected[kind] || !e.adaptive.ShouldReuse(kind) {
			continue
		}
		weights = append(weights, types.BackendWeight{Backend: kind, Weight: e.adaptive.Snapshot(kind).Confidence})
		selected[kind] = true
	}

	total := 0.0
	for _, w := range weights {
		total += w.Weight
	}
	if total <= 0 {
		return weights
	}
	out := make([]types.BackendWeight, len(weights))
	for i, w := range weights {
		out[i] = types.BackendWeight{Backend: w.Backend, Weight: w.Weight / total}
	}
	return out
}

// execute runs every selected backend concurrently, bounded by fanout_max.
// Backend failures are tolerated: a failing backend is simply excluded
// from synthesis, not surfaced as a request-level error unless every
// backend fails.
func (e *Engine) execute(ctx context.Context, input Input, weights []types.BackendWeight) ([]backendRun, error) {
	sem := make(chan struct{}, e.cfg.FanoutMax)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var runs []backendRun

	for _, w := range weights {
		backend, ok := e.registry.Get(w.Backend)
		if !ok {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(w types.BackendWeight, b LogicBackend) {
			defer wg.Done()
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			result, err := b.Reason(ctx, input)
			if err != nil || result == nil {
				return
			}
			mu.Lock()
			runs = append(runs, backendRun{weight: w, result: result})
			mu.Unlock()
		}(w, backend)
	}
	wg.Wait()

	select {
	case <-ctx.Done():
		return nil, errors.Wrap("reasoning.execute", errors.Cancelled, "reasoning cancelled", ctx.Err())
	default:
	}
	return runs, nil
}

// Solve and Infer are thin entry points over Reason that bias selection
// toward the matching intent keyword before delegating.
func (e *Engine) Solve(ctx context.Context, input Input) (*types.ReasoningResult, error) {
	return e.Reason(ctx, withHint(input, "problem"))
}

func (e *Engine) Infer(ctx context.Context, input Input) (*types.ReasoningResult, error) {
	return e.Reason(ctx, withHint(input, "infer"))
}

// Decision is the result of Decide: the option Reason's synthesized
// conclusions support most strongly, alongside the reasoning behind it.
type Decision struct {
	Chosen  string
	Options []string
	Result  *types.ReasoningResult
}

// Decide routes through the decision backend plus Reason, then ranks the
// candidate options by token overlap against the synthesized conclusions
// and steps to pick the one the reasoning result best supports. With no
// options it still reasons over the input but leaves Chosen empty.
func (e *Engine) Decide(ctx context.Context, input Input, options []string) (*Decision, error) {
	hinted := withHint(input, "decide "+strings.Join(options, " "))
	result, err := e.Reason(ctx, hinted)
	if err != nil {
		return nil, err
	}
	return &Decision{
		Chosen:  bestOption(options, result),
		Options: options,
		Result:  result,
	}, nil
}

func withHint(input Input, hint string) Input {
	return Input{Text: input.Text + " " + hint, Context: input.Context}
}

// bestOption scores each candidate by token overlap against the result's
// conclusion statements and step descriptions, and returns the
// highest-scoring one; ties favor the earliest-listed option. Returns ""
// when there are no options to choose from.
func bestOption(options []string, result *types.ReasoningResult) string {
	if len(options) == 0 {
		return ""
	}

	var support strings.Builder
	for _, c := range result.Conclusions {
		support.WriteString(c.Statement)
		support.WriteString(" ")
	}
	for _, s := range result.Steps {
		support.WriteString(s.Description)
		support.WriteString(" ")
	}
	supportTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(support.String())) {
		supportTokens[tok] = struct{}{}
	}

	best := options[0]
	bestScore := -1
	for _, opt := range options {
		score := 0
		for _, tok := range strings.Fields(strings.ToLower(opt)) {
			if _, ok := supportTokens[tok]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = opt
		}
	}
	return best
}

// ProcessTask is the quantum-inspired measurement path: it builds up to
// QuantumMaxStates logic states, normalizes, measures, and returns the
// chosen state's backend result augmented with coherence.
func (e *Engine) ProcessTask(ctx context.Context, input Input) (*types.ReasoningResult, error) {
	max := e.cfg.QuantumMaxStates
	if max <= 0 || max > 4 {
		max = 4
	}
	names := []string{"classical", "fuzzy", "probabilistic", "modal"}
	if max < len(names) {
		names = names[:max]
	}

	states := make([]quantumState, 0, len(names))
	for i, n := range names {
		states = append(states, quantumState{name: n, amplitude: 1.0 / float64(len(names)), phase: float64(i) * 1.5})
	}
	states = normalizeAmplitudes(states)

	chosen, coherence := measure(states, rand.Float64())

	kind := kindForName(chosen.name)
	backend, ok := e.registry.Get(kind)
	if !ok {
		return nil, errors.New("reasoning.ProcessTask", errors.NotFound, "quantum-selected backend not registered")
	}
	result, err := backend.Reason(ctx, input)
	if err != nil {
		return nil, errors.Wrap("reasoning.ProcessTask", errors.BackendFailure, "selected backend failed", err)
	}
	result.Meta = metaReason(result, []backendRun{{weight: types.BackendWeight{Backend: kind, Weight: 1}, result: result}})
	result.Meta.Quality = clampUnit(result.Meta.Quality * coherence)
	return result, nil
}

func kindForName(name string) types.BackendKind {
	switch name {
	case "classical":
		return types.BackendClassical
	case "fuzzy":
		return types.BackendFuzzy
	case "probabilistic":
		return types.BackendProbabilistic
	case "modal":
		return types.BackendModal
	default:
		return types.BackendClassical
	}
}

// AdaptiveSnapshot exposes a backend's current adaptive-strategy record.
func (e *Engine) AdaptiveSnapshot(kind types.BackendKind) types.AdaptiveStrategy {
	return e.adaptive.Snapshot(kind)
}
