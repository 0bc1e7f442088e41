package usecase

import (
	"fmt"
	"sort"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

// fuseRanked merges the lexical and semantic rankings with weighted
// reciprocal rank fusion: each appearance at 1-based rank r in a list with
// weight w contributes w/(K+r), and contributions accumulate across lists.
// Ties break by doc ID so repeated calls produce identical orderings.
func fuseRanked(bm25Ranked, semanticRanked []rankedDoc, candidates []domain.Candidate, opts RetrievalOptions) []domain.RetrievedChunk {
	lookup := make(map[string]domain.Candidate, len(candidates))
	for _, cand := range candidates {
		lookup[cand.DocID] = cand
	}

	lexicalScores := make(map[string]float64, len(bm25Ranked))
	semanticScores := make(map[string]float64, len(semanticRanked))
	fused := make(map[string]float64, len(bm25Ranked)+len(semanticRanked))

	for i, doc := range bm25Ranked {
		lexicalScores[doc.docID] = doc.score
		fused[doc.docID] += opts.LexicalWeight / float64(opts.RRFK+i+1)
	}
	for i, doc := range semanticRanked {
		semanticScores[doc.docID] = doc.score
		fused[doc.docID] += opts.SemanticWeight / float64(opts.RRFK+i+1)
	}

	ordered := make([]rankedDoc, 0, len(fused))
	for docID, score := range fused {
		ordered = append(ordered, rankedDoc{docID: docID, score: score})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].docID < ordered[j].docID
	})
	if len(ordered) > opts.TopK {
		ordered = ordered[:opts.TopK]
	}

	out := make([]domain.RetrievedChunk, 0, len(ordered))
	for _, doc := range ordered {
		cand, ok := lookup[doc.docID]
		if !ok {
			continue
		}
		out = append(out, domain.RetrievedChunk{
			DocID:           doc.docID,
			CitationID:      fmt.Sprintf("kb_doc_%03d", len(out)+1),
			Content:         cand.Content,
			Source:          cand.Source,
			Metadata:        cand.Metadata,
			SimilarityScore: semanticScores[doc.docID],
			LexicalScore:    lexicalScores[doc.docID],
			FusionScore:     doc.score,
			Preview:         truncate(collapseWhitespace(cand.Content), opts.PreviewChars),
		})
	}
	return out
}
