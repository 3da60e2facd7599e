package knowledge

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"cognitive-core/internal/embeddings"
	"cognitive-core/internal/ids"
	"cognitive-core/pkg/cache"
)

const semanticCollection = "knowledge_entries"
const embeddingCacheSize = 2048

// SemanticIndex is an optional chromem-go-backed semantic index over
// Knowledge Entry meanings, used when knowledge.embeddings_enabled is
// set. It supplements (never replaces) the token-based Retrieve index:
// a miss here just means no semantic candidates were added.
type SemanticIndex struct {
	db         *chromem.DB
	embedder   embeddings.Provider
	embedCache *cache.LRU[string, embeddings.Vector]
}

// NewSemanticIndex creates an in-memory chromem-go index using the given
// embedding provider. Repeated calls to embed the same text (common for
// short, reused knowledge meanings) are served from a bounded LRU cache
// instead of re-running the embedder.
func NewSemanticIndex(embedder embeddings.Provider) *SemanticIndex {
	return &SemanticIndex{
		db:         chromem.NewDB(),
		embedder:   embedder,
		embedCache: cache.New[string, embeddings.Vector](&cache.Config{MaxEntries: embeddingCacheSize}),
	}
}

func (s *SemanticIndex) embed(ctx context.Context, text string) (embeddings.Vector, error) {
	if vec, ok := s.embedCache.Get(text); ok {
		return vec, nil
	}
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.embedCache.Set(text, vec)
	return vec, nil
}

func (s *SemanticIndex) collection(ctx context.Context) (*chromem.Collection, error) {
	if c := s.db.GetCollection(semanticCollection, nil); c != nil {
		return c, nil
	}
	return s.db.CreateCollection(semanticCollection, nil, nil)
}

// Index adds or replaces an entry's embedding under its id.
func (s *SemanticIndex) Index(ctx context.Context, id ids.ID, meaning string) error {
	if s == nil || s.embedder == nil {
		return nil
	}
	coll, err := s.collection(ctx)
	if err != nil {
		return fmt.Errorf("knowledge.SemanticIndex.Index: %w", err)
	}
	vec, err := s.embed(ctx, meaning)
	if err != nil {
		return fmt.Errorf("knowledge.SemanticIndex.Index: embed: %w", err)
	}
	embedding := make([]float32, len(vec))
	for i, v := range vec {
		embedding[i] = float32(v)
	}
	return coll.AddDocument(ctx, chromem.Document{ID: id.String(), Content: meaning, Embedding: embedding})
}

// Query returns the ids of the k closest entries to the query text.
func (s *SemanticIndex) Query(ctx context.Context, query string, k int) ([]ids.ID, error) {
	if s == nil || s.embedder == nil {
		return nil, nil
	}
	coll := s.db.GetCollection(semanticCollection, nil)
	if coll == nil {
		return nil, nil
	}
	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("knowledge.SemanticIndex.Query: embed: %w", err)
	}
	embedding := make([]float32, len(vec))
	for i, v := range vec {
		embedding[i] = float32(v)
	}
	if k <= 0 {
		k = 10
	}
	results, err := coll.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("knowledge.SemanticIndex.Query: %w", err)
	}
	out := make([]ids.ID, 0, len(results))
	for _, r := range results {
		out = append(out, ids.ID(r.ID))
	}
	return out, nil
}
