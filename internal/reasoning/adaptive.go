package reasoning

import (
	"sync"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/types"
)

// AdaptiveStrategyStore tracks per-backend performance history, guarded by
// a single map lock: one record per backend, updated after each use.
type AdaptiveStrategyStore struct {
	mu       sync.Mutex
	clock    clock.Clock
	strategies map[types.BackendKind]*types.AdaptiveStrategy
	threshold  float64
}

// NewAdaptiveStrategyStore creates a store seeded with one strategy per
// backend kind, all starting at neutral confidence/success.
func NewAdaptiveStrategyStore(c clock.Clock, reuseThreshold float64) *AdaptiveStrategyStore {
	s := &AdaptiveStrategyStore{
		clock:      c,
		strategies: make(map[types.BackendKind]*types.AdaptiveStrategy),
		threshold:  reuseThreshold,
	}
	return s
}

func (s *AdaptiveStrategyStore) getOrCreateLocked(id types.BackendKind) *types.AdaptiveStrategy {
	st, ok := s.strategies[id]
	if !ok {
		st = &types.AdaptiveStrategy{ID: id, Confidence: 0.5, SuccessRate: 0.5, AdaptationRate: 0.5, LastUsed: int64(s.clock.Now())}
		s.strategies[id] = st
	}
	return st
}

// Update pushes a new performance sample for the backend and recomputes
// success_rate (mean of the last <=5 history entries) and confidence
// (+ (last_perf-0.5)*0.1, clamped to [0,1]), per the §3 invariant.
func (s *AdaptiveStrategyStore) Update(id types.BackendKind, resultConfidence, metaQuality float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(id)
	performance := clampUnit(0.4*resultConfidence + 0.4*metaQuality + 0.2*st.AdaptationRate)

	st.History.Push(performance)
	st.SuccessRate = st.History.Mean5()
	st.Confidence = clampUnit(st.Confidence + (performance-0.5)*0.1)
	st.LastUsed = int64(s.clock.Now())
}

// Snapshot returns a copy of a strategy's current state.
func (s *AdaptiveStrategyStore) Snapshot(id types.BackendKind) types.AdaptiveStrategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getOrCreateLocked(id)
	return *st
}

// ShouldReuse reports whether a backend's success_rate clears the
// configured reuse threshold, or it has been idle for more than 24h
// (either condition makes it an attractive candidate to re-select).
func (s *AdaptiveStrategyStore) ShouldReuse(id types.BackendKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.getOrCreateLocked(id)
	if st.SuccessRate > s.threshold {
		return true
	}
	idleSeconds := clock.Seconds(s.clock.Now() - clock.Millis(st.LastUsed))
	return idleSeconds > 24*3600
}
