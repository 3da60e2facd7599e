// Package knowledge implements the Knowledge Base: a keyed store of
// Knowledge Entries with secondary indexes, a relationship graph, and
// optional external mirrors for semantic search.
package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"

	graphlib "github.com/dominikbraun/graph"

	"cognitive-core/internal/clock"
	"cognitive-core/internal/errors"
	"cognitive-core/internal/ids"
	"cognitive-core/internal/types"
)

// Query filters a retrieve() call.
type Query struct {
	Kind          types.KnowledgeKind
	MinConfidence float64
	Source        string
	Tokens        []string
}

// GraphMirror is the optional external relationship store (backed by
// Neo4j in production). Writes are best-effort: a mirror error never
// fails a Knowledge Base write. Store calls the mirror synchronously,
// while holding the Knowledge Base write lock.
type GraphMirror interface {
	MirrorRelationship(from, to ids.ID) error
}

// KnowledgeBase is the Knowledge Base component: a keyed store of
// Knowledge Entries with secondary indexes, a relationship graph, and
// optional external mirrors for semantic search and graph persistence.
type KnowledgeBase struct {
	mu      sync.RWMutex
	clock   clock.Clock
	entries map[ids.ID]*types.KnowledgeEntry

	byKind       map[types.KnowledgeKind]map[ids.ID]struct{}
	byToken      map[string]map[ids.ID]struct{}
	byDayBucket  map[int64]map[ids.ID]struct{}
	byConfBucket map[int]map[ids.ID]struct{}

	graph    graphlib.Graph[string, string]
	mirror   GraphMirror
	semantic *SemanticIndex
}

// New constructs an empty Knowledge Base. mirror may be nil.
func New(c clock.Clock, mirror GraphMirror) *KnowledgeBase {
	return &KnowledgeBase{
		clock:        c,
		entries:      make(map[ids.ID]*types.KnowledgeEntry),
		byKind:       make(map[types.KnowledgeKind]map[ids.ID]struct{}),
		byToken:      make(map[string]map[ids.ID]struct{}),
		byDayBucket:  make(map[int64]map[ids.ID]struct{}),
		byConfBucket: make(map[int]map[ids.ID]struct{}),
		graph:        graphlib.New(graphlib.StringHash, graphlib.Directed()),
		mirror:       mirror,
	}
}

// WithSemanticIndex attaches an optional chromem-go-backed semantic index
// used by RetrieveSemantic. Passing nil disables semantic retrieval.
func (kb *KnowledgeBase) WithSemanticIndex(idx *SemanticIndex) *KnowledgeBase {
	kb.semantic = idx
	return kb
}

func dayBucket(ts int64) int64 {
	const dayMS = 24 * 60 * 60 * 1000
	return ts / dayMS
}

func confidenceBucket(conf float64) int {
	b := int(conf * 10)
	if b > 9 {
		b = 9
	}
	if b < 0 {
		b = 0
	}
	return b
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Store inserts or replaces a Knowledge Entry: updates secondary indexes,
// mirrors relationships into the graph (and the optional GraphMirror),
// and indexes the entry's meaning into the optional semantic index.
func (kb *KnowledgeBase) Store(entry *types.KnowledgeEntry) error {
	if entry == nil || entry.ID.Empty() {
		return errors.New("knowledge.Store", errors.InvalidInput, "entry must have a non-empty id")
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if existing, ok := kb.entries[entry.ID]; ok {
		kb.unindexLocked(existing)
	} else {
		_ = kb.graph.AddVertex(entry.ID.String())
	}

	stored := entry.Clone()
	kb.entries[entry.ID] = stored
	kb.indexLocked(stored)

	for _, rel := range stored.Content.Relationships {
		_ = kb.graph.AddVertex(rel)
		_ = kb.graph.AddEdge(stored.ID.String(), rel)
		if kb.mirror != nil {
			_ = kb.mirror.MirrorRelationship(stored.ID, ids.ID(rel))
		}
	}
	if kb.semantic != nil {
		_ = kb.semantic.Index(context.Background(), stored.ID, stored.Content.Meaning)
	}
	return nil
}

// RetrieveSemantic ranks stored entries by semantic closeness to queryText
// using the attached SemanticIndex. It returns nil without error when no
// semantic index is attached, so callers can treat it as a pure
// enhancement over Retrieve.
func (kb *KnowledgeBase) RetrieveSemantic(ctx context.Context, queryText string, k int) ([]*types.KnowledgeEntry, error) {
	if kb.semantic == nil {
		return nil, nil
	}
	matched, err := kb.semantic.Query(ctx, queryText, k)
	if err != nil {
		return nil, errors.Wrap("knowledge.RetrieveSemantic", errors.BackendFailure, "semantic query failed", err)
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()
	out := make([]*types.KnowledgeEntry, 0, len(matched))
	for _, id := range matched {
		if e, ok := kb.entries[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

func (kb *KnowledgeBase) indexLocked(e *types.KnowledgeEntry) {
	kb.addToSet(kb.byKind, e.Kind, e.ID)
	for _, tok := range tokenize(e.Content.Meaning) {
		kb.addToSet(kb.byToken, tok, e.ID)
	}
	kb.addToSet(kb.byDayBucket, dayBucket(e.Timestamp), e.ID)
	kb.addToSet(kb.byConfBucket, confidenceBucket(e.Confidence), e.ID)
}

func (kb *KnowledgeBase) unindexLocked(e *types.KnowledgeEntry) {
	kb.removeFromSet(kb.byKind, e.Kind, e.ID)
	for _, tok := range tokenize(e.Content.Meaning) {
		kb.removeFromSet(kb.byToken, tok, e.ID)
	}
	kb.removeFromSet(kb.byDayBucket, dayBucket(e.Timestamp), e.ID)
	kb.removeFromSet(kb.byConfBucket, confidenceBucket(e.Confidence), e.ID)
}

func (kb *KnowledgeBase) addToSet(index any, key any, id ids.ID) {
	switch m := index.(type) {
	case map[types.KnowledgeKind]map[ids.ID]struct{}:
		k := key.(types.KnowledgeKind)
		if m[k] == nil {
			m[k] = make(map[ids.ID]struct{})
		}
		m[k][id] = struct{}{}
	case map[string]map[ids.ID]struct{}:
		k := key.(string)
		if m[k] == nil {
			m[k] = make(map[ids.ID]struct{})
		}
		m[k][id] = struct{}{}
	case map[int64]map[ids.ID]struct{}:
		k := key.(int64)
		if m[k] == nil {
			m[k] = make(map[ids.ID]struct{})
		}
		m[k][id] = struct{}{}
	case map[int]map[ids.ID]struct{}:
		k := key.(int)
		if m[k] == nil {
			m[k] = make(map[ids.ID]struct{})
		}
		m[k][id] = struct{}{}
	}
}

func (kb *KnowledgeBase) removeFromSet(index any, key any, id ids.ID) {
	switch m := index.(type) {
	case map[types.KnowledgeKind]map[ids.ID]struct{}:
		k := key.(types.KnowledgeKind)
		delete(m[k], id)
	case map[string]map[ids.ID]struct{}:
		k := key.(string)
		delete(m[k], id)
	case map[int64]map[ids.ID]struct{}:
		k := key.(int64)
		delete(m[k], id)
	case map[int]map[ids.ID]struct{}:
		k := key.(int)
		delete(m[k], id)
	}
}

// Get retrieves a single entry by id.
func (kb *KnowledgeBase) Get(id ids.ID) (*types.KnowledgeEntry, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	e, ok := kb.entries[id]
	if !ok {
		return nil, errors.New("knowledge.Get", errors.NotFound, "no such knowledge entry")
	}
	return e.Clone(), nil
}

// Retrieve returns entries matching the query, ranked by confidence
// descending.
func (kb *KnowledgeBase) Retrieve(q Query) []*types.KnowledgeEntry {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	var candidates map[ids.ID]struct{}
	if q.Kind != "" {
		candidates = cloneSet(kb.byKind[q.Kind])
	}
	for _, tok := range q.Tokens {
		hit := kb.byToken[strings.ToLower(tok)]
		if candidates == nil {
			candidates = cloneSet(hit)
			continue
		}
		candidates = intersect(candidates, hit)
	}

	var ids_ []ids.ID
	if candidates == nil {
		for id := range kb.entries {
			ids_ = append(ids_, id)
		}
	} else {
		for id := range candidates {
			ids_ = append(ids_, id)
		}
	}

	results := make([]*types.KnowledgeEntry, 0, len(ids_))
	for _, id := range ids_ {
		e := kb.entries[id]
		if e == nil {
			continue
		}
		if e.Confidence < q.MinConfidence {
			continue
		}
		if q.Source != "" && e.Source != q.Source {
			continue
		}
		results = append(results, e.Clone())
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].ID < results[j].ID
	})
	return results
}

func cloneSet(s map[ids.ID]struct{}) map[ids.ID]struct{} {
	out := make(map[ids.ID]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func intersect(a, b map[ids.ID]struct{}) map[ids.ID]struct{} {
	out := make(map[ids.ID]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// IntegrateLearning stores each new knowledge entry from a learning
// result and bumps the confidence of related existing entries by up to
// +0.01 (clamped to 1.0), matching the Knowledge Entry confidence
// invariant in the data model.
func (kb *KnowledgeBase) IntegrateLearning(newEntries []*types.KnowledgeEntry, insightPatterns []string) error {
	newIDs := make(map[ids.ID]struct{}, len(newEntries))
	for _, e := range newEntries {
		if e.ID.Empty() {
			e.ID = ids.New()
		}
		if e.Timestamp == 0 {
			e.Timestamp = int64(kb.clock.Now())
		}
		newIDs[e.ID] = struct{}{}
		if err := kb.Store(e); err != nil {
			return err
		}
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	for id, e := range kb.entries {
		if _, justAdded := newIDs[id]; justAdded {
			continue
		}
		related := false
		for _, ne := range newEntries {
			if ne.Kind == e.Kind {
				related = true
				break
			}
		}
		if !related {
			for _, p := range insightPatterns {
				if p != "" && strings.Contains(strings.ToLower(e.Content.Meaning), strings.ToLower(p)) {
					related = true
					break
				}
			}
		}
		if related {
			e.Confidence += 0.01
			if e.Confidence > 1.0 {
				e.Confidence = 1.0
			}
		}
	}
	return nil
}

// Clear removes every entry, resetting the base to empty.
func (kb *KnowledgeBase) Clear() {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.entries = make(map[ids.ID]*types.KnowledgeEntry)
	kb.byKind = make(map[types.KnowledgeKind]map[ids.ID]struct{})
	kb.byToken = make(map[string]map[ids.ID]struct{})
	kb.byDayBucket = make(map[int64]map[ids.ID]struct{})
	kb.byConfBucket = make(map[int]map[ids.ID]struct{})
	kb.graph = graphlib.New(graphlib.StringHash, graphlib.Directed())
}

// Count returns the number of stored entries.
func (kb *KnowledgeBase) Count() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.entries)
}
