package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

type corpusFake struct {
	manual     []domain.KnowledgeChunk
	articles   []domain.ArticleChunk
	manualErr  error
	articleErr error
}

func (f *corpusFake) ListKnowledgeChunks(_ context.Context, _ string, _ int) ([]domain.KnowledgeChunk, error) {
	return f.manual, f.manualErr
}

func (f *corpusFake) ListArticleChunks(_ context.Context, _ string, _ int) ([]domain.ArticleChunk, error) {
	return f.articles, f.articleErr
}

func TestCollectCandidatesOrdersManualBeforeArticles(t *testing.T) {
	corpus := &corpusFake{
		manual: []domain.KnowledgeChunk{
			{ID: "manual-1", Content: "vpn reset guide", Source: "manual"},
		},
		articles: []domain.ArticleChunk{
			{ArticleID: "art-9", ChunkIndex: 0, Content: "printer setup", SourceTicketID: "T-12"},
			{ArticleID: "art-9", ChunkIndex: 1, Content: "printer troubleshooting", SourceTicketID: "T-12"},
		},
	}

	candidates, err := collectCandidates(context.Background(), corpus, "persona-1", 400)
	if err != nil {
		t.Fatalf("collectCandidates() error = %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].DocID != "manual-1" {
		t.Fatalf("manual chunk should come first, got %s", candidates[0].DocID)
	}
	if candidates[1].DocID != "art-9_chunk0" || candidates[2].DocID != "art-9_chunk1" {
		t.Fatalf("unexpected article doc IDs: %s, %s", candidates[1].DocID, candidates[2].DocID)
	}
	if candidates[1].Source != "T-12" {
		t.Fatalf("article source should fall back to ticket ID, got %q", candidates[1].Source)
	}
	if candidates[0].Metadata.ChunkIndex != -1 {
		t.Fatalf("manual chunk index = %d, want -1", candidates[0].Metadata.ChunkIndex)
	}
}

func TestCollectCandidatesDropsEmptyContent(t *testing.T) {
	corpus := &corpusFake{
		manual: []domain.KnowledgeChunk{
			{ID: "manual-1", Content: "   "},
			{ID: "manual-2", Content: "usable content"},
		},
	}

	candidates, err := collectCandidates(context.Background(), corpus, "persona-1", 400)
	if err != nil {
		t.Fatalf("collectCandidates() error = %v", err)
	}
	if len(candidates) != 1 || candidates[0].DocID != "manual-2" {
		t.Fatalf("expected only manual-2, got %v", candidates)
	}
}

func TestCollectCandidatesEnforcesCap(t *testing.T) {
	corpus := &corpusFake{
		manual: []domain.KnowledgeChunk{
			{ID: "m1", Content: "a"},
			{ID: "m2", Content: "b"},
		},
		articles: []domain.ArticleChunk{
			{ArticleID: "art", ChunkIndex: 0, Content: "c"},
		},
	}

	candidates, err := collectCandidates(context.Background(), corpus, "persona-1", 2)
	if err != nil {
		t.Fatalf("collectCandidates() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(candidates))
	}
}

func TestCollectCandidatesPropagatesReadErrors(t *testing.T) {
	wantErr := errors.New("db down")
	if _, err := collectCandidates(context.Background(), &corpusFake{manualErr: wantErr}, "p", 10); !errors.Is(err, wantErr) {
		t.Fatalf("expected manual read error, got %v", err)
	}
	if _, err := collectCandidates(context.Background(), &corpusFake{articleErr: wantErr}, "p", 10); !errors.Is(err, wantErr) {
		t.Fatalf("expected article read error, got %v", err)
	}
}

func TestPrepareCandidateComputesTermStats(t *testing.T) {
	cand, ok := prepareCandidate("doc-1", "VPN vpn token", nil, domain.ChunkMetadata{ChunkIndex: -1})
	if !ok {
		t.Fatal("expected candidate")
	}
	if cand.DocLen != 3 {
		t.Fatalf("DocLen = %d, want 3", cand.DocLen)
	}
	if cand.TermFreq["vpn"] != 2 || cand.TermFreq["token"] != 1 {
		t.Fatalf("unexpected term frequencies: %v", cand.TermFreq)
	}
}
