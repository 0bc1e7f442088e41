package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
	"github.com/soporte-labs/persona-assistant/internal/core/ports"
)

// collectCandidates normalizes the persona's corpus into scoring-ready
// candidates: first the flat knowledge chunks, then article chunks, stopping
// at the cap. A corpus with zero usable chunks yields an empty slice, not an
// error.
func collectCandidates(ctx context.Context, corpus ports.CorpusReader, personaID string, maxCandidates int) ([]domain.Candidate, error) {
	candidates := make([]domain.Candidate, 0, maxCandidates)

	manual, err := corpus.ListKnowledgeChunks(ctx, personaID, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list knowledge chunks: %w", err)
	}
	for _, chunk := range manual {
		candidate, ok := prepareManualCandidate(chunk)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
		if len(candidates) >= maxCandidates {
			return candidates, nil
		}
	}

	articleChunks, err := corpus.ListArticleChunks(ctx, personaID, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("list article chunks: %w", err)
	}
	for _, chunk := range articleChunks {
		candidate, ok := prepareArticleCandidate(chunk)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
		if len(candidates) >= maxCandidates {
			break
		}
	}

	return candidates, nil
}

func prepareManualCandidate(chunk domain.KnowledgeChunk) (domain.Candidate, bool) {
	docID := chunk.ID
	if docID == "" {
		docID = fmt.Sprintf("manual_%04d_0", len(chunk.Content))
	}
	meta := domain.ChunkMetadata{
		Tags:       chunk.Tags,
		ChunkIndex: -1,
		Source:     chunk.Source,
	}
	return prepareCandidate(docID, chunk.Content, chunk.Embedding, meta)
}

func prepareArticleCandidate(chunk domain.ArticleChunk) (domain.Candidate, bool) {
	articleID := chunk.ArticleID
	if articleID == "" {
		articleID = fmt.Sprintf("article_%04d_%d", len(chunk.Content), chunk.ChunkIndex)
	}
	docID := fmt.Sprintf("%s_chunk%d", articleID, chunk.ChunkIndex)
	meta := domain.ChunkMetadata{
		Tags:           chunk.Tags,
		SourceTicketID: chunk.SourceTicketID,
		PublishedAt:    chunk.PublishedAt,
		Title:          chunk.Title,
		ChunkIndex:     chunk.ChunkIndex,
	}
	return prepareCandidate(docID, chunk.Content, chunk.Embedding, meta)
}

func prepareCandidate(docID, content string, embedding []float32, meta domain.ChunkMetadata) (domain.Candidate, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Candidate{}, false
	}

	tokens := splitAlphaNumLower(content)
	docLen := len(tokens)
	if docLen == 0 {
		// Content with no alphanumeric tokens still scores zero everywhere;
		// floor the length so BM25 never divides by zero.
		docLen = 1
	}

	source := meta.Source
	if source == "" {
		source = meta.SourceTicketID
	}

	return domain.Candidate{
		DocID:     docID,
		Content:   content,
		TermFreq:  termFrequencies(tokens),
		DocLen:    docLen,
		Embedding: embedding,
		Metadata:  meta,
		Source:    source,
	}, true
}
