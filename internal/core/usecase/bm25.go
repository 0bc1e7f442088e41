package usecase

import (
	"math"
	"sort"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

type rankedDoc struct {
	docID string
	score float64
}

type bm25Retriever struct {
	k1 float64
	b  float64
}

// rank scores candidates against the query terms with Okapi BM25. Document
// frequencies are computed over the candidate set passed in; there is no
// corpus-wide index. Candidates with zero term overlap are excluded.
func (r bm25Retriever) rank(queryTerms []string, candidates []domain.Candidate, topK int) []rankedDoc {
	if len(queryTerms) == 0 || len(candidates) == 0 {
		return nil
	}

	n := len(candidates)
	totalLen := 0
	for _, cand := range candidates {
		totalLen += cand.DocLen
	}
	avgDocLen := float64(totalLen) / float64(n)
	if avgDocLen <= 0 {
		avgDocLen = 1
	}

	docFreq := make(map[string]int, len(queryTerms))
	for _, term := range queryTerms {
		if _, done := docFreq[term]; done {
			continue
		}
		df := 0
		for _, cand := range candidates {
			if _, ok := cand.TermFreq[term]; ok {
				df++
			}
		}
		docFreq[term] = df
	}

	scored := make([]rankedDoc, 0, n)
	for _, cand := range candidates {
		if len(cand.TermFreq) == 0 {
			continue
		}
		score := 0.0
		for _, term := range queryTerms {
			tf := cand.TermFreq[term]
			if tf == 0 {
				continue
			}
			df := docFreq[term]
			if df == 0 {
				continue
			}
			idf := math.Log(((float64(n)-float64(df)+0.5)/(float64(df)+0.5)) + 1)
			numerator := float64(tf) * (r.k1 + 1)
			denominator := float64(tf) + r.k1*(1-r.b+r.b*(float64(cand.DocLen)/avgDocLen))
			score += idf * (numerator / denominator)
		}
		if score > 0 {
			scored = append(scored, rankedDoc{docID: cand.DocID, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].docID < scored[j].docID
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
