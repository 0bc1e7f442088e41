package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
	"github.com/soporte-labs/persona-assistant/internal/core/ports"
)

type semanticRetriever struct {
	embedder ports.Embedder
}

// rank embeds the query once and orders candidates by cosine similarity
// against their precomputed embeddings. Candidates without an embedding are
// skipped; they stay eligible for lexical scoring. An empty or whitespace
// query returns nothing without calling the embedding service.
func (r semanticRetriever) rank(ctx context.Context, query string, candidates []domain.Candidate, topK int) ([]rankedDoc, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding result")
	}
	queryUnit := unitVector(vectors[0])

	scored := make([]rankedDoc, 0, len(candidates))
	for _, cand := range candidates {
		if len(cand.Embedding) == 0 {
			continue
		}
		scored = append(scored, rankedDoc{
			docID: cand.DocID,
			score: dotProduct(queryUnit, unitVector(cand.Embedding)),
		})
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
	return scored, nil
}

func unitVector(v []float32) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		out[i] = float64(x)
		sum += out[i] * out[i]
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		norm = 1
	}
	for i := range out {
		out[i] /= norm
	}
	return out
}

func dotProduct(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
