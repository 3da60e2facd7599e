// Package orchestrator wires the Knowledge Base, Memory Manager,
// Consciousness State, Reasoning Engine, and Learning Engine behind a
// single lifecycle-governed request surface.
package orchestrator

import (
	"context"
	"log"
	"sync"
	"time"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/config"
	"cognitive-core/internal/consciousness"
	"cognitive-core/internal/embeddings"
	"cognitive-core/internal/errors"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/knowledge"
	"cognitive-core/internal/learning"
	"cognitive-core/internal/memory"
	"cognitive-core/internal/metrics"
	"cognitive-core/internal/reasoning"
	"cognitive-core/internal/reasoning/backends"
	"cognitive-core/internal/types"
)

// LifecycleState is one of the orchestrator's four lifecycle states.
type LifecycleState string

const (
	StateUninitialized LifecycleState = "uninitialized"
	StateInitialized    LifecycleState = "initialized"
	StateRunning        LifecycleState = "running"
	StateStopped        LifecycleState = "stopped"
)

// Orchestrator owns every sub-engine and enforces the lifecycle state
// machine: uninitialized -> initialized -> running -> stopped.
type Orchestrator struct {
	mu    sync.RWMutex
	state LifecycleState

	cfg   config.Config
	clock clock.Clock

	knowledge     *knowledge.KnowledgeBase
	memoryManager *memory.Manager
	conscious     *consciousness.State
	reasoningEng  *reasoning.Engine
	learningEng   *learning.Engine
	graphMirror   *knowledge.Neo4jMirror

	metrics   orchestratorMetrics
	collector *metrics.Collector
}

type orchestratorMetrics struct {
	processed  int
	cancelled  int
	learnFails int
}

// New constructs an Orchestrator in the uninitialized state. Sub-engines
// are not built until Initialize is called, so a construction failure in
// any one of them cannot leave partially-wired state reachable.
func New(cfg config.Config, c clock.Clock) *Orchestrator {
	return &Orchestrator{cfg: cfg, clock: c, state: StateUninitialized, collector: metrics.New()}
}

// Initialize builds every sub-engine in dependency order (knowledge,
// memory, consciousness, reasoning, learning). Any failure aborts and
// leaves the orchestrator in StateUninitialized.
func (o *Orchestrator) Initialize() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateUninitialized {
		return errors.New("orchestrator.Initialize", errors.LifecycleViolation, "already initialized")
	}

	var mirror knowledge.GraphMirror
	if o.cfg.Knowledge.GraphMirrorEnabled {
		m, err := knowledge.NewNeo4jMirror(knowledge.Neo4jMirrorConfig{
			URI:      o.cfg.Knowledge.Neo4jURI,
			Username: o.cfg.Knowledge.Neo4jUsername,
			Password: o.cfg.Knowledge.Neo4jPassword,
			Database: o.cfg.Knowledge.Neo4jDatabase,
			Timeout:  5 * time.Second,
		})
		if err != nil {
			log.Printf("orchestrator: neo4j graph mirror unavailable, continuing without it: %v", err)
		} else {
			mirror = m
			o.graphMirror = m
		}
	}

	kb := knowledge.New(o.clock, mirror)
	if o.cfg.Knowledge.EmbeddingsEnabled {
		kb.WithSemanticIndex(knowledge.NewSemanticIndex(embeddings.Hashed{}))
	}

	mgr := memory.New(o.clock, memory.Config{
		CapacityShort:              o.cfg.Memory.CapacityShort,
		CapacityWorking:            o.cfg.Memory.CapacityWorking,
		ConsolidationSimilarity:    o.cfg.Memory.ConsolidationSimilarity,
		OptimizationCompressionSim: o.cfg.Memory.OptimizationCompressionSim,
	})

	cs := consciousness.New()

	reg := reasoning.NewRegistry()
	enabled := make(map[types.BackendKind]bool)
	for _, b := range o.cfg.Reasoning.BackendsEnabled {
		enabled[types.BackendKind(b)] = true
	}
	if err := backends.RegisterAll(reg, enabled); err != nil {
		return errors.Wrap("orchestrator.Initialize", errors.LifecycleViolation, "failed to register reasoning backends", err)
	}
	reasoningEng := reasoning.New(o.clock, reg, reasoning.Config{
		FanoutMax:         o.cfg.Orchestrator.FanoutMax,
		AdaptiveThreshold: o.cfg.Reasoning.AdaptiveThreshold,
		QuantumMaxStates:  o.cfg.Reasoning.QuantumMaxStates,
	})

	learningEng := learning.New(o.clock, kb, learning.Config{HistoryCapacity: o.cfg.Learning.HistoryCapacity})

	o.knowledge = kb
	o.memoryManager = mgr
	o.conscious = cs
	o.reasoningEng = reasoningEng
	o.learningEng = learningEng
	o.state = StateInitialized
	return nil
}

// Start transitions initialized -> running.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateInitialized {
		return errors.New("orchestrator.Start", errors.LifecycleViolation, "start requires initialized state")
	}
	o.state = StateRunning
	return nil
}

// Stop is safe from any started state and transitions to stopped.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateUninitialized {
		return errors.New("orchestrator.Stop", errors.LifecycleViolation, "cannot stop before initialize")
	}
	o.state = StateStopped
	return nil
}

// Reset atomically transitions running|stopped -> uninitialized, wiping
// the knowledge base and memory manager (Open Question: default wipe).
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateRunning && o.state != StateStopped {
		return errors.New("orchestrator.Reset", errors.LifecycleViolation, "reset requires running or stopped state")
	}
	if o.knowledge != nil {
		o.knowledge.Clear()
	}
	if o.memoryManager != nil {
		o.memoryManager.Clear("")
	}
	o.state = StateUninitialized
	return nil
}

func (o *Orchestrator) requireRunning(op string) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.state != StateRunning {
		return errors.New(op, errors.LifecycleViolation, "operation requires running state")
	}
	return nil
}

// ProcessInput implements the synthesis rule: reasoning -> learning ->
// consciousness update -> return the reasoning result. Learning failures
// never fail the request; they are counted in the learn_failures metric,
// are not logged, and leave the learning history unchanged.
func (o *Orchestrator) ProcessInput(ctx context.Context, input reasoning.Input) (*types.ReasoningResult, error) {
	if err := o.requireRunning("orchestrator.ProcessInput"); err != nil {
		return nil, err
	}

	o.mu.RLock()
	reasoningEng, learningEng, cs := o.reasoningEng, o.learningEng, o.conscious
	o.mu.RUnlock()

	result, err := reasoningEng.Reason(ctx, input)
	if err != nil {
		if errors.Is(err, errors.Cancelled) {
			o.mu.Lock()
			o.metrics.cancelled++
			o.mu.Unlock()
			o.collector.Inc("process_input_cancelled", 1)
			if learningEng != nil {
				learningEng.MarkCancelled()
			}
		}
		return nil, err
	}

	insightCount := 0
	if learningEng != nil {
		exp := experienceFromProcessInput(input, result, o.clock)
		learnResult, learnErr := learningEng.Learn(exp)
		if learnErr != nil {
			o.mu.Lock()
			o.metrics.learnFails++
			o.mu.Unlock()
			o.collector.Inc("learn_failures", 1)
		} else {
			insightCount = len(learnResult.Insights)
		}
	}

	if cs != nil {
		sample := types.SuperpositionState{Amplitude: result.Confidence, Phase: 0, Coherence: 1}
		if insightCount > 0 {
			sample.Phase = clampUnit(float64(insightCount) / 10.0)
		}
		cs.UpdateAfterCycle(result.Confidence, sample)
	}

	o.mu.Lock()
	o.metrics.processed++
	o.mu.Unlock()
	o.collector.Inc("process_input_ok", 1)
	o.collector.Set("last_confidence", result.Confidence)

	return result, nil
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

func experienceFromProcessInput(input reasoning.Input, result *types.ReasoningResult, c clock.Clock) types.Experience {
	feedback := types.Feedback{Type: types.FeedbackNeutral, Strength: 0.3}
	if result.Confidence > 0.6 {
		feedback = types.Feedback{Type: types.FeedbackPositive, Strength: result.Confidence}
	} else if result.Confidence < 0.3 {
		feedback = types.Feedback{Type: types.FeedbackNegative, Strength: 1 - result.Confidence}
	}
	return types.Experience{
		ID:        ids.New(),
		Timestamp: int64(c.Now()),
		Context:   input.Context,
		Action:    types.Action{Kind: "process_input", Effects: map[string]any{"text": input.Text}},
		Outcome:   types.Outcome{Value: result.Confidence, State: map[string]any{"uncertainty_label": string(result.UncertaintyLabel)}},
		Feedback:  feedback,
	}
}

// Plan is a named sequence of actions to execute in order.
type Plan struct {
	Actions []types.Action
}

// ActionResult is the outcome of executing a Plan.
type ActionResult struct {
	Outcomes []types.Outcome
	Success  bool
}

// ExecutePlan runs each action in the plan, recording an outcome for
// each and feeding every action/outcome pair to the Learning Engine.
func (o *Orchestrator) ExecutePlan(ctx context.Context, plan Plan) (*ActionResult, error) {
	if err := o.requireRunning("orchestrator.ExecutePlan"); err != nil {
		return nil, err
	}

	o.mu.RLock()
	learningEng := o.learningEng
	o.mu.RUnlock()

	outcomes := make([]types.Outcome, 0, len(plan.Actions))
	success := true
	for _, action := range plan.Actions {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap("orchestrator.ExecutePlan", errors.Cancelled, "plan execution cancelled", ctx.Err())
		default:
		}
		outcome := types.Outcome{State: map[string]any{"kind": action.Kind}, Value: 0.5, Changes: action.Effects}
		outcomes = append(outcomes, outcome)
		if learningEng != nil {
			if _, err := learningEng.LearnFromExecution(action, outcome, nil); err != nil {
				success = false
			}
		}
	}
	return &ActionResult{Outcomes: outcomes, Success: success}, nil
}

// Decide exposes the Reasoning Engine's decide() operation: it weighs the
// given candidate options against a reasoned analysis of input and
// returns the one the reasoning best supports.
func (o *Orchestrator) Decide(ctx context.Context, input reasoning.Input, options []string) (*reasoning.Decision, error) {
	if err := o.requireRunning("orchestrator.Decide"); err != nil {
		return nil, err
	}
	o.mu.RLock()
	reasoningEng := o.reasoningEng
	o.mu.RUnlock()
	return reasoningEng.Decide(ctx, input, options)
}

// Learn exposes the Learning Engine's primary operation directly.
func (o *Orchestrator) Learn(exp types.Experience) (learning.Result, error) {
	if err := o.requireRunning("orchestrator.Learn"); err != nil {
		return learning.Result{}, err
	}
	o.mu.RLock()
	learningEng := o.learningEng
	o.mu.RUnlock()
	return learningEng.Learn(exp)
}

// TransferKnowledge exposes the Learning Engine's transfer_knowledge()
// operation: it re-derives insights from experiences recorded under
// sourceDomain and integrates the confident ones into the Knowledge Base
// under targetDomain.
func (o *Orchestrator) TransferKnowledge(sourceDomain, targetDomain string) (learning.Result, error) {
	if err := o.requireRunning("orchestrator.TransferKnowledge"); err != nil {
		return learning.Result{}, err
	}
	o.mu.RLock()
	learningEng := o.learningEng
	o.mu.RUnlock()
	return learningEng.TransferKnowledge(sourceDomain, targetDomain)
}

// Status is the get_status() snapshot.
type Status struct {
	State         LifecycleState
	Processed     int
	Cancelled     int
	LearnFailures int
	Memory        memory.State
	Learning      learning.State
	Consciousness types.ConsciousnessState
}

// GetStatus returns a lifecycle + counters + sub-engine-state snapshot.
func (o *Orchestrator) GetStatus() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	status := Status{
		State:         o.state,
		Processed:     o.metrics.processed,
		Cancelled:     o.metrics.cancelled,
		LearnFailures: o.metrics.learnFails,
	}
	if o.memoryManager != nil {
		status.Memory = o.memoryManager.GetState()
	}
	if o.learningEng != nil {
		status.Learning = o.learningEng.GetState()
	}
	if o.conscious != nil {
		status.Consciousness = *o.conscious.Snapshot()
	}
	return status
}

// SystemMetrics is the get_metrics() snapshot: every counter/gauge
// recorded by the orchestrator's metrics collector, distinct from
// GetStatus's lifecycle + sub-engine-state view.
type SystemMetrics struct {
	Counters map[string]int64
	Gauges   map[string]float64
}

// GetMetrics returns a point-in-time snapshot of every counter and gauge
// the orchestrator has recorded.
func (o *Orchestrator) GetMetrics() SystemMetrics {
	snap := o.collector.Snapshot()
	return SystemMetrics{Counters: snap.Counters, Gauges: snap.Gauges}
}

// Shutdown closes the graph mirror (if any) and transitions to stopped.
// It does not wait for in-flight requests to finish. It never returns an
// error.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateUninitialized {
		return
	}
	if o.graphMirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = o.graphMirror.Close(ctx)
		cancel()
	}
	o.state = StateStopped
}
