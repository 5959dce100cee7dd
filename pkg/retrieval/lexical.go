package retrieval

import (
	"math"

	"github.com/harun/mnemo/pkg/vectorstore"
)

// BM25 parameters, standard Okapi defaults
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// lexDoc is one tokenized corpus entry
type lexDoc struct {
	doc       vectorstore.Document
	termFreqs map[string]int
	length    int
}

// lexicalSnapshot is a disposable term-frequency index over the full
// document set. It is immutable once built; rebuilds swap in a fresh one.
type lexicalSnapshot struct {
	docs     []lexDoc
	docFreqs map[string]int
	avgLen   float64
}

// buildSnapshot tokenizes the corpus and precomputes frequencies
func buildSnapshot(docs []vectorstore.Document) *lexicalSnapshot {
	snap := &lexicalSnapshot{
		docs:     make([]lexDoc, 0, len(docs)),
		docFreqs: make(map[string]int),
	}

	var totalLen int
	for _, d := range docs {
		tokens := Tokenize(d.Text)

		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for tok := range freqs {
			snap.docFreqs[tok]++
		}

		snap.docs = append(snap.docs, lexDoc{
			doc:       d,
			termFreqs: freqs,
			length:    len(tokens),
		})
		totalLen += len(tokens)
	}

	if len(snap.docs) > 0 {
		snap.avgLen = float64(totalLen) / float64(len(snap.docs))
	}

	return snap
}

// count returns the number of indexed documents, compared against the
// embedding index count before any search is trusted stale-free.
func (s *lexicalSnapshot) count() int {
	return len(s.docs)
}

// scores computes the raw BM25 score of every corpus document for the
// tokenized query, in corpus order.
func (s *lexicalSnapshot) scores(queryTokens []string) []float64 {
	scores := make([]float64, len(s.docs))
	if len(s.docs) == 0 {
		return scores
	}

	n := float64(len(s.docs))
	for _, tok := range queryTokens {
		df, ok := s.docFreqs[tok]
		if !ok {
			continue
		}

		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))

		for i := range s.docs {
			tf := float64(s.docs[i].termFreqs[tok])
			if tf == 0 {
				continue
			}

			norm := 1 - bm25B + bm25B*float64(s.docs[i].length)/s.avgLen
			scores[i] += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
	}

	return scores
}
