package usecase

import (
	"strings"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

func buildRetrievalMetrics(chunks []domain.RetrievedChunk, bm25Ranked []rankedDoc) domain.RetrievalMetrics {
	metrics := domain.RetrievalMetrics{}

	if len(bm25Ranked) > 0 {
		var sum float64
		for _, doc := range bm25Ranked {
			sum += doc.score
		}
		metrics.AvgBM25Score = sum / float64(len(bm25Ranked))
	}

	if len(chunks) > 0 {
		var sum, max float64
		nonZero := 0
		for _, chunk := range chunks {
			sum += chunk.SimilarityScore
			if chunk.SimilarityScore > max {
				max = chunk.SimilarityScore
			}
			if chunk.Content != "" {
				nonZero++
			}
		}
		metrics.AvgSemanticSimilarity = sum / float64(len(chunks))
		metrics.Top1Similarity = max
		metrics.ChunkCountNonZero = nonZero
	}

	return metrics
}

// contextPrecision is the fraction of chunks containing at least
// minMatches of the query's keyword terms. It is 0.0 when there are no
// chunks or no terms, by definition rather than by error.
func contextPrecision(queryTerms []string, chunks []domain.RetrievedChunk, minMatches int) float64 {
	if len(queryTerms) == 0 || len(chunks) == 0 {
		return 0.0
	}
	relevant := 0
	for _, chunk := range chunks {
		content := strings.ToLower(chunk.Content)
		matches := 0
		for _, term := range queryTerms {
			if strings.Contains(content, term) {
				matches++
			}
		}
		if matches >= minMatches {
			relevant++
		}
	}
	return float64(relevant) / float64(len(chunks))
}
