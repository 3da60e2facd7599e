package learning

import (
	"sync"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/learning/algorithms"
	"cognitive-core/internal/types"
)

const historyCapDefault = 1000

// KnowledgeIntegrator is the subset of the Knowledge Base the Learning
// Engine depends on, kept narrow to avoid coupling to its full API.
type KnowledgeIntegrator interface {
	IntegrateLearning(newEntries []*types.KnowledgeEntry, insightPatterns []string) error
}

// Config bounds the engine's history ring and algorithm set.
type Config struct {
	HistoryCapacity int
}

// Engine is the Learning Engine: it classifies experiences, dispatches
// primary/secondary algorithms, extracts insights, and converts
// confident insights into knowledge entries.
type Engine struct {
	mu sync.Mutex

	clock     clock.Clock
	knowledge KnowledgeIntegrator
	registry  map[string]algorithms.LearningAlgorithm
	cfg       Config

	history []types.Experience
	metrics engineMetrics
}

type engineMetrics struct {
	learned        int
	insightsFound  int
	knowledgeAdded int
	cancelled      int
}

// New constructs a Learning Engine wired to a Knowledge Base.
func New(c clock.Clock, kb KnowledgeIntegrator, cfg Config) *Engine {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = historyCapDefault
	}
	return &Engine{
		clock:     c,
		knowledge: kb,
		registry:  algorithms.Registry(),
		cfg:       cfg,
	}
}

// Result is what Learn returns: the analysis, chosen strategy, and every
// insight extracted (algorithmic + direct). Insights are not marked by
// whether they met the confidence bar for knowledge conversion.
type Result struct {
	Analysis Analysis
	Strategy Strategy
	Insights []types.LearningInsight
}

// Learn runs the full pipeline for one experience: analyze, determine
// strategy, run primary+secondary algorithms (tolerating failures),
// extract direct insights, convert confident ones to knowledge, record
// history, and update metrics.
func (e *Engine) Learn(exp types.Experience) (Result, error) {
	e.mu.Lock()
	history := append([]types.Experience(nil), e.history...)
	priorLearnings := e.metrics.knowledgeAdded
	e.mu.Unlock()

	analysis := Analyze(exp, history, priorLearnings)
	strategy := DetermineStrategy(analysis)

	var insights []types.LearningInsight
	for _, name := range append([]string{strategy.Primary}, strategy.Secondary...) {
		algo, ok := e.registry[name]
		if !ok {
			continue
		}
		batch := algo.Learn([]types.Experience{exp})
		insights = append(insights, batch.Insights...)
	}
	insights = append(insights, extractDirectInsights(exp, analysis)...)

	var knowledgeEntries []*types.KnowledgeEntry
	var patterns []string
	for _, ins := range insights {
		if ins.Confidence < 0.5 {
			continue
		}
		knowledgeEntries = append(knowledgeEntries, insightToKnowledge(ins, e.clock))
		if ins.Pattern != nil {
			patterns = append(patterns, ins.Pattern.Structure)
		}
		if ins.Generalization != nil {
			patterns = append(patterns, ins.Generalization.To)
		}
	}

	if e.knowledge != nil && len(knowledgeEntries) > 0 {
		if err := e.knowledge.IntegrateLearning(knowledgeEntries, patterns); err != nil {
			return Result{Analysis: analysis, Strategy: strategy, Insights: insights}, err
		}
	}

	e.mu.Lock()
	e.history = append(e.history, exp)
	if len(e.history) > e.cfg.HistoryCapacity {
		e.history = e.history[len(e.history)-e.cfg.HistoryCapacity:]
	}
	e.metrics.learned++
	e.metrics.insightsFound += len(insights)
	e.metrics.knowledgeAdded += len(knowledgeEntries)
	e.mu.Unlock()

	return Result{Analysis: analysis, Strategy: strategy, Insights: insights}, nil
}

// LearnFromExecution is a convenience wrapper: it builds an Experience
// from an action/outcome pair observed during plan execution and learns
// from it directly (no separately reported feedback).
func (e *Engine) LearnFromExecution(action types.Action, outcome types.Outcome, context map[string]any) (Result, error) {
	feedback := types.Feedback{Type: types.FeedbackNeutral, Strength: 0.3}
	if outcome.Value > 0.2 {
		feedback = types.Feedback{Type: types.FeedbackPositive, Strength: clampUnit(outcome.Value)}
	} else if outcome.Value < -0.2 {
		feedback = types.Feedback{Type: types.FeedbackNegative, Strength: clampUnit(-outcome.Value)}
	}
	exp := types.Experience{
		ID:        ids.New(),
		Timestamp: int64(e.clock.Now()),
		Context:   context,
		Action:    action,
		Outcome:   outcome,
		Feedback:  feedback,
	}
	return e.Learn(exp)
}

// TransferKnowledge re-runs the transfer algorithm over past experiences
// recorded under sourceDomain, then integrates any confident resulting
// insights into the Knowledge Base under targetDomain instead of
// re-recording them into history.
func (e *Engine) TransferKnowledge(sourceDomain, targetDomain string) (Result, error) {
	e.mu.Lock()
	var matched []types.Experience
	for _, exp := range e.history {
		if experienceDomain(exp) == sourceDomain {
			matched = append(matched, exp)
		}
	}
	e.mu.Unlock()

	if len(matched) == 0 {
		return Result{}, nil
	}
	transfer, ok := e.registry["transfer"]
	if !ok {
		return Result{}, nil
	}
	insights := transfer.Learn(matched).Insights

	var knowledgeEntries []*types.KnowledgeEntry
	for _, ins := range insights {
		if ins.Confidence < 0.5 {
			continue
		}
		entry := insightToKnowledge(ins, e.clock)
		entry.Content.Domain = targetDomain
		knowledgeEntries = append(knowledgeEntries, entry)
	}

	if e.knowledge == nil || len(knowledgeEntries) == 0 {
		return Result{Insights: insights}, nil
	}
	if err := e.knowledge.IntegrateLearning(knowledgeEntries, []string{sourceDomain, targetDomain}); err != nil {
		return Result{Insights: insights}, err
	}

	e.mu.Lock()
	e.metrics.knowledgeAdded += len(knowledgeEntries)
	e.mu.Unlock()

	return Result{Insights: insights}, nil
}

// experienceDomain reads the domain an experience was recorded under from
// its context map; experiences with no domain key belong to "".
func experienceDomain(exp types.Experience) string {
	if exp.Context == nil {
		return ""
	}
	d, _ := exp.Context["domain"].(string)
	return d
}

// AnalyzePatterns runs direct pattern extraction over the full history
// without algorithm dispatch, useful for offline inspection.
func (e *Engine) AnalyzePatterns() []types.LearningInsight {
	e.mu.Lock()
	history := append([]types.Experience(nil), e.history...)
	e.mu.Unlock()

	var out []types.LearningInsight
	for _, exp := range history {
		a := Analyze(exp, history, 0)
		out = append(out, extractDirectInsights(exp, a)...)
	}
	return out
}

// State is the get_state() snapshot for the Learning Engine.
type State struct {
	HistorySize    int
	Learned        int
	InsightsFound  int
	KnowledgeAdded int
}

// GetState returns a snapshot of engine counters.
func (e *Engine) GetState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		HistorySize:    len(e.history),
		Learned:        e.metrics.learned,
		InsightsFound:  e.metrics.insightsFound,
		KnowledgeAdded: e.metrics.knowledgeAdded,
	}
}

// MarkCancelled counts a cancelled request in the engine's metrics. It
// adds nothing to the learning history and publishes no other permanent
// state (process_input cancellation invariant).
func (e *Engine) MarkCancelled() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.cancelled++
}

func insightToKnowledge(ins types.LearningInsight, c clock.Clock) *types.KnowledgeEntry {
	meaning := ins.Description
	domain := "learning"
	if ins.Pattern != nil {
		domain = "pattern:" + ins.Pattern.Structure
	}
	if ins.Generalization != nil {
		domain = "generalization"
	}
	return &types.KnowledgeEntry{
		ID:         ids.New(),
		Kind:       types.KindFact,
		Confidence: ins.Confidence,
		Source:     "learning_engine",
		Timestamp:  int64(c.Now()),
		Content: types.KnowledgeContent{
			Representation: "insight",
			Meaning:         meaning,
			Domain:          domain,
		},
	}
}
