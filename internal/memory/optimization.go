package memory

import (
	"cognitive-core/internal/clock"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

// Optimization is a single pass result (pruning, reorganization, or
// compression) emitted by Optimize.
type Optimization struct {
	Kind    string
	Details string
	Count   int
}

// Optimize runs the three optimization passes in order (pruning,
// reorganization, compression) under a single write-scope guard.
func (m *Manager) Optimize() []Optimization {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Optimization
	if op := m.pruneLocked(); op != nil {
		out = append(out, *op)
	}
	if op := m.reorganizeLocked(); op != nil {
		out = append(out, *op)
	}
	if op := m.compressLocked(); op != nil {
		out = append(out, *op)
	}
	m.metrics.optimizations += len(out)
	return out
}

// pruneLocked removes short entries with importance < 0.2 and
// idle > 1h.
func (m *Manager) pruneLocked() *Optimization {
	now := m.clock.Now()
	short := m.tiers[types.TierShort]
	var kept []*types.MemoryEntry
	pruned := 0
	for _, e := range short {
		idle := clock.Seconds(now - clock.Millis(e.LastAccessed))
		if e.Importance < pruneImportanceThreshold && idle > pruneIdleSeconds {
			delete(m.index, e.ID)
			pruned++
			continue
		}
		kept = append(kept, e)
	}
	m.tiers[types.TierShort] = kept
	if pruned == 0 {
		return nil
	}
	return &Optimization{Kind: "pruning", Details: "removed low-importance idle short entries", Count: pruned}
}

// reorganizeLocked expands each long-tier member's associations by the
// common-association set of any group sharing >=1 association, where
// membership exceeds half the group size.
func (m *Manager) reorganizeLocked() *Optimization {
	long := m.tiers[types.TierLong]
	if len(long) < 2 {
		return nil
	}

	groups := groupByCommonAssociation(long)
	expanded := 0
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		common := commonAssociationsAboveHalf(g)
		if len(common) == 0 {
			continue
		}
		for _, e := range g {
			before := len(e.Associations)
			e.Associations = unionStrings(e.Associations, common)
			if len(e.Associations) != before {
				expanded++
			}
		}
	}
	if expanded == 0 {
		return nil
	}
	return &Optimization{Kind: "reorganization", Details: "expanded associations across related long-tier groups", Count: expanded}
}

func groupByCommonAssociation(entries []*types.MemoryEntry) [][]*types.MemoryEntry {
	assocToEntries := make(map[string][]*types.MemoryEntry)
	for _, e := range entries {
		for _, a := range e.Associations {
			assocToEntries[a] = append(assocToEntries[a], e)
		}
	}
	var groups [][]*types.MemoryEntry
	for _, g := range assocToEntries {
		if len(g) >= 2 {
			groups = append(groups, g)
		}
	}
	return groups
}

func commonAssociationsAboveHalf(group []*types.MemoryEntry) []string {
	counts := make(map[string]int)
	for _, e := range group {
		seen := make(map[string]bool)
		for _, a := range e.Associations {
			if seen[a] {
				continue
			}
			seen[a] = true
			counts[a]++
		}
	}
	half := float64(len(group)) / 2.0
	var out []string
	for a, c := range counts {
		if float64(c) > half {
			out = append(out, a)
		}
	}
	return out
}

func unionStrings(a []string, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, v := range a {
		set[v] = true
	}
	out := append([]string(nil), a...)
	for _, v := range b {
		if !set[v] {
			set[v] = true
			out = append(out, v)
		}
	}
	return out
}

// compressLocked merges long-tier groups with pairwise similarity above
// the configured compression threshold into a single compressed summary
// entry; original members are deleted.
func (m *Manager) compressLocked() *Optimization {
	long := m.tiers[types.TierLong]
	if len(long) < 2 {
		return nil
	}

	now := m.clock.Now()
	groups := groupBySimilarity(long, m.cfg.OptimizationCompressionSim, now, true)
	if len(groups) == 0 {
		return nil
	}

	consumed := make(map[int]bool)
	var remaining []*types.MemoryEntry
	compressedCount := 0

	for _, g := range groups {
		summary := compressGroup(g, long, now)
		for _, idx := range g.indices {
			consumed[idx] = true
		}
		remaining = append(remaining, summary)
		compressedCount++
	}
	for i, e := range long {
		if consumed[i] {
			delete(m.index, e.ID)
			continue
		}
		remaining = append(remaining, e)
	}
	m.tiers[types.TierLong] = remaining

	if compressedCount == 0 {
		return nil
	}
	return &Optimization{Kind: "compression", Details: "merged similar long-tier groups into summaries", Count: compressedCount}
}

func compressGroup(g similarityGroup, entries []*types.MemoryEntry, now clock.Millis) *types.MemoryEntry {
	minImportance, maxImportance := 1.0, 0.0
	var themes []string
	var originals []ids.ID
	for _, idx := range g.indices {
		e := entries[idx]
		if e.Importance < minImportance {
			minImportance = e.Importance
		}
		if e.Importance > maxImportance {
			maxImportance = e.Importance
		}
		for k := range e.Content {
			themes = append(themes, k)
		}
		originals = append(originals, e.ID)
	}
	themes = dedupeStrings(themes)

	return &types.MemoryEntry{
		ID:           newMergedID(),
		Tier:         types.TierLong,
		Timestamp:    int64(now),
		LastAccessed: int64(now),
		Importance:   (minImportance + maxImportance) / 2,
		DecayRate:    DecayRateFor(types.TierLong),
		Content: map[string]any{
			"summary_of_count":   len(g.indices),
			"summary_themes":     themes,
			"summary_importance_range": []float64{minImportance, maxImportance},
		},
		Metadata: map[string]any{"compressed_from": idsToStrings(originals)},
	}
}
