package memory

import (
	"cognitive-core/internal/clock"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

// Consolidation is the event emitted for each merged group.
type Consolidation struct {
	NewEntryID   ids.ID
	OriginalIDs  []ids.ID
	Strength     float64
	Themes       []string
}

// Consolidate groups short-tier entries by pairwise similarity >= the
// configured threshold, merges each group of >=2 into a single long-tier
// entry, and removes the originating short entries. The whole pass holds
// the write lock so consolidation and optimization never observe or
// produce partial state.
func (m *Manager) Consolidate() []Consolidation {
	m.mu.Lock()
	defer m.mu.Unlock()

	short := m.tiers[types.TierShort]
	if len(short) < 2 {
		return nil
	}

	now := m.clock.Now()
	groups := groupBySimilarity(short, m.cfg.ConsolidationSimilarity, now, false)

	var events []Consolidation
	var consumed = make(map[int]bool)
	var remaining []*types.MemoryEntry

	for _, g := range groups {
		if len(g.indices) < 2 {
			continue
		}
		merged, strength, themes := mergeGroup(g, short, now)
		for _, idx := range g.indices {
			consumed[idx] = true
		}
		m.tiers[types.TierLong] = append(m.tiers[types.TierLong], merged)
		m.index[merged.ID] = types.TierLong
		events = append(events, Consolidation{
			NewEntryID:  merged.ID,
			OriginalIDs: g.ids(short),
			Strength:    strength,
			Themes:      themes,
		})
	}

	for i, e := range short {
		if consumed[i] {
			delete(m.index, e.ID)
			continue
		}
		remaining = append(remaining, e)
	}
	m.tiers[types.TierShort] = remaining
	m.metrics.consolidations += len(events)
	return events
}

type similarityGroup struct {
	indices []int
	sims    []float64
}

func (g similarityGroup) ids(entries []*types.MemoryEntry) []ids.ID {
	out := make([]ids.ID, 0, len(g.indices))
	for _, i := range g.indices {
		out = append(out, entries[i].ID)
	}
	return out
}

func (g similarityGroup) meanSimilarity() float64 {
	if len(g.sims) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range g.sims {
		sum += s
	}
	return sum / float64(len(g.sims))
}

// groupBySimilarity performs a simple union-find style grouping: any two
// entries whose similarity clears threshold land in the same group.
// Consolidation treats the threshold as inclusive (>=); compression
// requires strictly exceeding it (>), per their respective thresholds.
func groupBySimilarity(entries []*types.MemoryEntry, threshold float64, now clock.Millis, strict bool) []similarityGroup {
	n := len(entries)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	pairSim := make(map[[2]int]float64)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := entrySimilarity(entries[i], entries[j], now)
			cleared := s >= threshold
			if strict {
				cleared = s > threshold
			}
			if cleared {
				pairSim[[2]int{i, j}] = s
				union(i, j)
			}
		}
	}

	byRoot := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := find(i)
		byRoot[r] = append(byRoot[r], i)
	}

	var groups []similarityGroup
	for _, indices := range byRoot {
		if len(indices) < 2 {
			continue
		}
		var sims []float64
		for k := range pairSim {
			if find(k[0]) == find(indices[0]) {
				sims = append(sims, pairSim[k])
			}
		}
		groups = append(groups, similarityGroup{indices: indices, sims: sims})
	}
	return groups
}

// entrySimilarity = 0.5*content + 0.3*association + 0.2*temporal_proximity
// (hours-based decay over 24h), as specified by the consolidation protocol.
func entrySimilarity(a, b *types.MemoryEntry, now clock.Millis) float64 {
	content := contentSimilarity(a.Content, b.Content)
	assoc := jaccard(a.Associations, b.Associations)
	temporal := temporalProximity(a.Timestamp, b.Timestamp)
	return 0.5*content + 0.3*assoc + 0.2*temporal
}

// contentSimilarity scores two content records structurally rather than
// by key: content is opaque to the manager except for similarity (data
// model), so it cannot assume domain meaning for any given key. Two
// records are similar when they have the same shape (size) and a
// matching profile of value types, plus a bonus for any keys that
// happen to carry equal values.
func contentSimilarity(a, b map[string]any) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	sizeSim := sizeSimilarity(len(a), len(b))
	typeSim := typeProfileSimilarity(a, b)
	valueBonus := sharedValueFraction(a, b)
	return clampUnit(0.6*sizeSim*typeSim + 0.4*valueBonus)
}

func sizeSimilarity(a, b int) float64 {
	maxLen := a
	if b > maxLen {
		maxLen = b
	}
	if maxLen == 0 {
		return 1
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(maxLen)
}

func typeProfileSimilarity(a, b map[string]any) float64 {
	pa := typeProfile(a)
	pb := typeProfile(b)
	if len(pa) == 0 && len(pb) == 0 {
		return 1
	}
	inter := 0
	for t, ca := range pa {
		cb := pb[t]
		if ca < cb {
			inter += ca
		} else {
			inter += cb
		}
	}
	union := 0
	for _, c := range pa {
		union += c
	}
	for _, c := range pb {
		union += c
	}
	union -= inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func typeProfile(m map[string]any) map[string]int {
	out := make(map[string]int, len(m))
	for _, v := range m {
		out[typeName(v)]++
	}
	return out
}

func sharedValueFraction(a, b map[string]any) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matches := 0
	for k, av := range a {
		if bv, ok := b[k]; ok && valuesEqual(av, bv) {
			matches++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(matches) / float64(denom)
}

func valuesEqual(a, b any) bool {
	return valueKey(a) == valueKey(b)
}

func valueKey(v any) string {
	return toText(v) + "|" + typeName(v)
}

func typeName(v any) string {
	switch v.(type) {
	case string:
		return "s"
	case int, int64, float64:
		return "n"
	case bool:
		return "b"
	default:
		return "o"
	}
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	setA := make(map[string]bool, len(a))
	for _, v := range a {
		setA[v] = true
	}
	setB := make(map[string]bool, len(b))
	for _, v := range b {
		setB[v] = true
	}
	inter := 0
	for v := range setA {
		if setB[v] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 1
	}
	return float64(inter) / float64(union)
}

func temporalProximity(a, b int64) float64 {
	deltaHours := float64(abs64(a-b)) / 1000.0 / 3600.0
	v := 1.0 - deltaHours/24.0
	if v < 0 {
		return 0
	}
	return v
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// mergeGroup merges a group's entries into a single long-tier entry:
// shallow content merge, union associations, importance averaged then
// x1.2 clamped, access counts summed, original ids recorded in metadata.
func mergeGroup(g similarityGroup, entries []*types.MemoryEntry, now clock.Millis) (*types.MemoryEntry, float64, []string) {
	mergedContent := make(map[string]any)
	assocSet := make(map[string]bool)
	var importanceSum float64
	var accessSum int
	var originals []ids.ID
	var themes []string

	for _, idx := range g.indices {
		e := entries[idx]
		for k, v := range e.Content {
			mergedContent[k] = v
			themes = append(themes, k)
		}
		for _, a := range e.Associations {
			assocSet[a] = true
		}
		importanceSum += e.Importance
		accessSum += e.AccessCount
		originals = append(originals, e.ID)
	}

	avgImportance := importanceSum / float64(len(g.indices))
	importance := clampUnit(avgImportance * 1.2)

	assoc := make([]string, 0, len(assocSet))
	for a := range assocSet {
		assoc = append(assoc, a)
	}

	merged := &types.MemoryEntry{
		ID:           newMergedID(),
		Tier:         types.TierLong,
		Content:      mergedContent,
		Timestamp:    int64(now),
		LastAccessed: int64(now),
		Importance:   importance,
		DecayRate:    DecayRateFor(types.TierLong),
		Associations: assoc,
		AccessCount:  accessSum,
		Metadata:     map[string]any{"merged_from": idsToStrings(originals)},
	}
	return merged, g.meanSimilarity(), dedupeStrings(themes)
}

func idsToStrings(in []ids.ID) []string {
	out := make([]string, 0, len(in))
	for _, id := range in {
		out = append(out, id.String())
	}
	return out
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func newMergedID() ids.ID {
	return ids.New()
}
