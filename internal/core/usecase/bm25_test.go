package usecase

import (
	"math"
	"testing"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

func candidateFromText(docID, text string) domain.Candidate {
	cand, ok := prepareCandidate(docID, text, nil, domain.ChunkMetadata{ChunkIndex: -1})
	if !ok {
		panic("empty candidate in test fixture")
	}
	return cand
}

func TestBM25RankEmptyInputs(t *testing.T) {
	r := bm25Retriever{k1: 1.9, b: 0.75}
	if got := r.rank(nil, []domain.Candidate{candidateFromText("a", "x")}, 5); got != nil {
		t.Fatalf("expected nil for empty terms, got %v", got)
	}
	if got := r.rank([]string{"x"}, nil, 5); got != nil {
		t.Fatalf("expected nil for empty candidates, got %v", got)
	}
}

func TestBM25RankExcludesZeroOverlap(t *testing.T) {
	r := bm25Retriever{k1: 1.9, b: 0.75}
	candidates := []domain.Candidate{
		candidateFromText("doc-a", "vpn token reset guide"),
		candidateFromText("doc-b", "printer toner replacement"),
	}

	ranked := r.rank([]string{"vpn", "token"}, candidates, 5)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked doc, got %d", len(ranked))
	}
	if ranked[0].docID != "doc-a" {
		t.Fatalf("expected doc-a, got %s", ranked[0].docID)
	}
	if ranked[0].score <= 0 {
		t.Fatalf("expected positive score, got %f", ranked[0].score)
	}
}

func TestBM25RankMatchesClosedForm(t *testing.T) {
	// One shared term across both docs, one term unique to doc-a.
	r := bm25Retriever{k1: 1.9, b: 0.75}
	candidates := []domain.Candidate{
		candidateFromText("doc-a", "vpn vpn token"),
		candidateFromText("doc-b", "vpn printer toner"),
	}

	ranked := r.rank([]string{"vpn", "token"}, candidates, 5)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked docs, got %d", len(ranked))
	}
	if ranked[0].docID != "doc-a" {
		t.Fatalf("expected doc-a first, got %s", ranked[0].docID)
	}

	score := func(tf, df, docLen int) float64 {
		n := 2.0
		avgDL := 3.0
		idf := math.Log(((n-float64(df)+0.5)/(float64(df)+0.5)) + 1)
		num := float64(tf) * (1.9 + 1)
		den := float64(tf) + 1.9*(1-0.75+0.75*(float64(docLen)/avgDL))
		return idf * (num / den)
	}
	wantA := score(2, 2, 3) + score(1, 1, 3)
	if math.Abs(ranked[0].score-wantA) > 1e-12 {
		t.Fatalf("doc-a score = %v, want %v", ranked[0].score, wantA)
	}
	wantB := score(1, 2, 3)
	if math.Abs(ranked[1].score-wantB) > 1e-12 {
		t.Fatalf("doc-b score = %v, want %v", ranked[1].score, wantB)
	}
}

func TestBM25RankRespectsTopK(t *testing.T) {
	r := bm25Retriever{k1: 1.9, b: 0.75}
	candidates := []domain.Candidate{
		candidateFromText("doc-a", "vpn"),
		candidateFromText("doc-b", "vpn vpn"),
		candidateFromText("doc-c", "vpn vpn vpn"),
	}
	ranked := r.rank([]string{"vpn"}, candidates, 2)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked docs, got %d", len(ranked))
	}
}
