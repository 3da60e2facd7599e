// Package memory implements the Memory Manager: a tiered in-memory store
// (short, working, long, episodic, semantic) with capacity-bounded
// eviction, relevance-scored retrieval, consolidation, and optimization
// passes, guarded throughout by an RWMutex with deep-copy-on-read.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/errors"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

const (
	baseDecay = 0.1

	pruneImportanceThreshold = 0.2
	pruneIdleSeconds         = 3600.0

	retrievalMinScore = 0.1
	retrievalCap      = 20
)

var decayMultiplier = map[types.Tier]float64{
	types.TierShort:    2.0,
	types.TierWorking:  1.5,
	types.TierLong:     0.5,
	types.TierEpisodic: 0.8,
	types.TierSemantic: 0.3,
}

// DecayRateFor returns the tier-dependent decay rate (base=0.1).
func DecayRateFor(tier types.Tier) float64 {
	m, ok := decayMultiplier[tier]
	if !ok {
		m = 1.0
	}
	return m * baseDecay
}

// Config bounds the Manager's tier capacities and similarity thresholds.
type Config struct {
	CapacityShort              int
	CapacityWorking            int
	ConsolidationSimilarity    float64
	OptimizationCompressionSim float64
}

// RetrievalResult is one scored hit from Retrieve.
type RetrievalResult struct {
	Entry *types.MemoryEntry
	Score float64
}

// Manager is the Memory Manager component.
type Manager struct {
	mu    sync.RWMutex
	clock clock.Clock
	cfg   Config

	tiers map[types.Tier][]*types.MemoryEntry
	index map[ids.ID]types.Tier

	metrics managerMetrics
}

type managerMetrics struct {
	stores        int
	retrievals    int
	evictions     int
	consolidations int
	optimizations int
}

// New constructs an empty Memory Manager.
func New(c clock.Clock, cfg Config) *Manager {
	return &Manager{
		clock: c,
		cfg:   cfg,
		tiers: map[types.Tier][]*types.MemoryEntry{
			types.TierShort:    {},
			types.TierWorking:  {},
			types.TierLong:     {},
			types.TierEpisodic: {},
			types.TierSemantic: {},
		},
		index: make(map[ids.ID]types.Tier),
	}
}

func (m *Manager) capacityFor(tier types.Tier) int {
	switch tier {
	case types.TierShort:
		return m.cfg.CapacityShort
	case types.TierWorking:
		return m.cfg.CapacityWorking
	default:
		return 0 // unbounded
	}
}

// Store inserts a new memory entry into the given tier, evicting the
// lowest-scoring entry first if the tier is at capacity.
func (m *Manager) Store(id ids.ID, tier types.Tier, content map[string]any, importance float64, associations []string) (*types.MemoryEntry, error) {
	if id.Empty() {
		return nil, errors.New("memory.Store", errors.InvalidInput, "id must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := int64(m.clock.Now())
	entry := &types.MemoryEntry{
		ID:           id,
		Tier:         tier,
		Content:      content,
		Timestamp:    now,
		LastAccessed: now,
		AccessCount:  0,
		Importance:   clampUnit(importance),
		DecayRate:    DecayRateFor(tier),
		Associations: append([]string(nil), associations...),
	}

	if cap := m.capacityFor(tier); cap > 0 && len(m.tiers[tier]) >= cap {
		m.evictOneLocked(tier)
	}

	m.tiers[tier] = append(m.tiers[tier], entry)
	m.index[id] = tier
	m.metrics.stores++
	return entry.Clone(), nil
}

func (m *Manager) evictOneLocked(tier types.Tier) {
	entries := m.tiers[tier]
	if len(entries) == 0 {
		return
	}
	now := m.clock.Now()
	worstIdx := 0
	worstScore := evictionScore(entries[0], now)
	for i := 1; i < len(entries); i++ {
		s := evictionScore(entries[i], now)
		if s < worstScore {
			worstScore = s
			worstIdx = i
		}
	}
	evicted := entries[worstIdx]
	delete(m.index, evicted.ID)
	m.tiers[tier] = append(entries[:worstIdx], entries[worstIdx+1:]...)
	m.metrics.evictions++
}

func evictionScore(e *types.MemoryEntry, now clock.Millis) float64 {
	deltaSeconds := clock.Seconds(now - clock.Millis(e.LastAccessed))
	return e.Importance * (1 - e.DecayRate*deltaSeconds)
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

// tierSnapshotLocked returns a flat, access-count-bumped-free snapshot of
// all entries across tiers (or a single tier when non-empty).
func (m *Manager) tierSnapshotLocked(tier types.Tier) []*types.MemoryEntry {
	if tier != "" {
		return append([]*types.MemoryEntry(nil), m.tiers[tier]...)
	}
	var all []*types.MemoryEntry
	for _, t := range []types.Tier{types.TierShort, types.TierWorking, types.TierLong, types.TierEpisodic, types.TierSemantic} {
		all = append(all, m.tiers[t]...)
	}
	return all
}

// Retrieve scores every entry (optionally restricted to one tier)
// against the query string and returns up to 20 results scoring >= 0.1,
// sorted descending. It holds the write lock for the whole pass, since
// hits update access_count and last_accessed.
func (m *Manager) Retrieve(query string, tier types.Tier) []RetrievalResult {
	m.mu.Lock() // bumps access_count/last_accessed on hits, so a write-scope guard
	defer m.mu.Unlock()

	now := m.clock.Now()
	tokens := tokenizeQuery(query)
	snapshot := m.tierSnapshotLocked(tier)

	var results []RetrievalResult
	for _, e := range snapshot {
		score := retrievalScore(e, tokens, now)
		if score < retrievalMinScore {
			continue
		}
		e.AccessCount++
		e.LastAccessed = int64(now)
		results = append(results, RetrievalResult{Entry: e.Clone(), Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.ID < results[j].Entry.ID
	})
	if len(results) > retrievalCap {
		results = results[:retrievalCap]
	}
	m.metrics.retrievals++
	return results
}

func tokenizeQuery(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

func retrievalScore(e *types.MemoryEntry, tokens []string, now clock.Millis) float64 {
	keyword := keywordScore(e, tokens)
	association := associationScore(e, tokens)
	recency := recencyScore(e, now)
	importance := e.Importance

	score := 0.4*keyword + 0.3*association + 0.2*recency + 0.1*importance
	return clampUnit(score)
}

func keywordScore(e *types.MemoryEntry, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hay := contentToText(e.Content)
	hits := 0
	for _, tok := range tokens {
		if strings.Contains(hay, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

func associationScore(e *types.MemoryEntry, tokens []string) float64 {
	if len(tokens) == 0 || len(e.Associations) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range tokens {
		for _, a := range e.Associations {
			if strings.EqualFold(a, tok) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(tokens))
}

func recencyScore(e *types.MemoryEntry, now clock.Millis) float64 {
	deltaSeconds := clock.Seconds(now - clock.Millis(e.Timestamp))
	if deltaSeconds < 0 {
		deltaSeconds = 0
	}
	const halfLifeSeconds = 24 * 3600.0
	return clampUnit(1.0 / (1.0 + deltaSeconds/halfLifeSeconds))
}

func contentToText(content map[string]any) string {
	var b strings.Builder
	for k, v := range content {
		b.WriteString(strings.ToLower(k))
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(toText(v)))
		b.WriteByte(' ')
	}
	return b.String()
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return ""
	}
}

// Clear removes all entries from a tier, or every tier if tier == "".
func (m *Manager) Clear(tier types.Tier) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tier == "" {
		for t := range m.tiers {
			m.tiers[t] = nil
		}
		m.index = make(map[ids.ID]types.Tier)
		return
	}
	for _, e := range m.tiers[tier] {
		delete(m.index, e.ID)
	}
	m.tiers[tier] = nil
}

// State is the get_state() snapshot: per-tier counts.
type State struct {
	Counts map[types.Tier]int
}

// GetState returns the current per-tier entry counts.
func (m *Manager) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[types.Tier]int, len(m.tiers))
	for t, entries := range m.tiers {
		counts[t] = len(entries)
	}
	return State{Counts: counts}
}

// Metrics is the get_metrics() snapshot.
type Metrics struct {
	Stores         int
	Retrievals     int
	Evictions      int
	Consolidations int
	Optimizations  int
}

// GetMetrics returns a snapshot of the manager's operation counters.
func (m *Manager) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		Stores:         m.metrics.stores,
		Retrievals:     m.metrics.retrievals,
		Evictions:      m.metrics.evictions,
		Consolidations: m.metrics.consolidations,
		Optimizations:  m.metrics.optimizations,
	}
}
