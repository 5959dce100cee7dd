// Package retrieval fuses lexical (BM25) and semantic (embedding distance)
// search over the embedding index into one ranked result set.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harun/mnemo/pkg/oracle"
	"github.com/harun/mnemo/pkg/vectorstore"
)

// Default fusion weights
const (
	DefaultVectorWeight  = 0.7
	DefaultLexicalWeight = 0.3
)

// overFetchFactor controls candidate over-fetch per leg so fusion can re-rank
const overFetchFactor = 2

// Result is one fused search hit
type Result struct {
	ID            string               `json:"id"`
	Text          string               `json:"text"`
	Metadata      vectorstore.Metadata `json:"metadata"`
	VectorScore   float64              `json:"vector_score"`
	LexicalScore  float64              `json:"lexical_score"`
	CombinedScore float64              `json:"combined_score"`
}

// SearchOptions configures a hybrid search
type SearchOptions struct {
	Limit         int
	VectorWeight  float64
	LexicalWeight float64
	Filter        *vectorstore.Filter
}

// Engine is the hybrid retrieval engine. The lexical snapshot is rebuilt
// whenever its document count diverges from the embedding index count;
// readers keep using the previous snapshot while a rebuild is in flight.
type Engine struct {
	store    vectorstore.Store
	embedder oracle.EmbeddingOracle
	logger   zerolog.Logger

	mu       sync.RWMutex
	snapshot *lexicalSnapshot // nil means stale, rebuilt on next search
}

// NewEngine creates a hybrid retrieval engine
func NewEngine(store vectorstore.Store, embedder oracle.EmbeddingOracle, logger zerolog.Logger) *Engine {
	return &Engine{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// AddDocuments writes documents to the embedding index and invalidates the
// lexical snapshot. If the index write fails nothing is invalidated and the
// error is returned to the caller.
func (e *Engine) AddDocuments(ctx context.Context, texts []string, vectors [][]float32, metadata []vectorstore.Metadata) ([]string, error) {
	ids, err := e.store.Add(ctx, texts, vectors, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}

	e.Invalidate()
	return ids, nil
}

// Invalidate forces a lexical snapshot rebuild on the next search
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.snapshot = nil
	e.mu.Unlock()
}

// Search runs the hybrid query. Embedding oracle failure aborts the search;
// a missing or empty lexical snapshot degrades silently to vector-only
// scoring.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOptions) ([]Result, error) {
	if query == "" {
		return []Result{}, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 5
	}
	if opts.VectorWeight == 0 && opts.LexicalWeight == 0 {
		opts.VectorWeight = DefaultVectorWeight
		opts.LexicalWeight = DefaultLexicalWeight
	}

	snap, err := e.freshSnapshot(ctx)
	if err != nil {
		// Lexical leg failure is not fatal
		e.logger.Warn().Err(err).Msg("Lexical snapshot unavailable, degrading to vector-only")
		snap = nil
	}

	// Vector leg
	queryVector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := e.store.Search(ctx, queryVector, overFetchFactor*opts.Limit, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	fused := make(map[string]*Result)
	for _, h := range hits {
		fused[h.ID] = &Result{
			ID:       h.ID,
			Text:     h.Text,
			Metadata: h.Metadata,
			// Distance to similarity, bounded in (0,1]
			VectorScore: 1 / (1 + h.Distance),
		}
	}

	// Lexical leg
	if snap != nil && snap.count() > 0 {
		e.fuseLexical(snap, query, opts, fused)
	}

	results := make([]Result, 0, len(fused))
	for _, r := range fused {
		r.CombinedScore = opts.VectorWeight*r.VectorScore + opts.LexicalWeight*r.LexicalScore
		results = append(results, *r)
	}

	// Combined score descending; equal scores order by ascending document ID
	// so ranking is deterministic across runs.
	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	e.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("Search completed")

	return results, nil
}

// fuseLexical scores the corpus, normalizes by the full-corpus maximum and
// merges the top candidates into the fused map. Documents missing from the
// vector leg enter with a zero vector score rather than being dropped.
func (e *Engine) fuseLexical(snap *lexicalSnapshot, query string, opts SearchOptions, fused map[string]*Result) {
	scores := snap.scores(Tokenize(query))

	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	taken := 0
	for _, idx := range order {
		if taken >= overFetchFactor*opts.Limit {
			break
		}

		doc := snap.docs[idx].doc
		if !matchesFilter(opts.Filter, doc.Metadata) {
			continue
		}

		normalized := scores[idx] / maxScore
		if r, ok := fused[doc.ID]; ok {
			r.LexicalScore = normalized
		} else {
			fused[doc.ID] = &Result{
				ID:           doc.ID,
				Text:         doc.Text,
				Metadata:     doc.Metadata,
				LexicalScore: normalized,
			}
		}
		taken++
	}
}

// freshSnapshot returns a snapshot reconciled with the embedding index
// document count, rebuilding from the full document set on mismatch.
func (e *Engine) freshSnapshot(ctx context.Context) (*lexicalSnapshot, error) {
	count, err := e.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	e.mu.RLock()
	snap := e.snapshot
	e.mu.RUnlock()

	if snap != nil && snap.count() == count {
		return snap, nil
	}

	docs, err := e.store.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	rebuilt := buildSnapshot(docs)

	e.mu.Lock()
	e.snapshot = rebuilt
	e.mu.Unlock()

	e.logger.Debug().Int("documents", rebuilt.count()).Msg("Lexical index rebuilt")
	return rebuilt, nil
}

// matchesFilter applies the metadata predicate to lexical candidates so both
// legs honor the same restriction
func matchesFilter(filter *vectorstore.Filter, m vectorstore.Metadata) bool {
	if filter == nil {
		return true
	}
	if filter.Type != "" && m.Type != filter.Type {
		return false
	}
	if filter.DateFrom != "" && m.Date < filter.DateFrom {
		return false
	}
	if filter.DateTo != "" && m.Date > filter.DateTo {
		return false
	}
	return true
}
