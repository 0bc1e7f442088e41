package usecase

import (
	"strings"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

const promptSnippetChars = 480

// FormatChunksForPrompt renders the fused chunks for the generation prompt:
// one line per chunk keyed by citation ID, deterministic for a given input.
func FormatChunksForPrompt(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No supporting documents retrieved."
	}

	var b strings.Builder
	b.WriteString("DOCUMENT REFERENCE:")
	for _, chunk := range chunks {
		citation := chunk.CitationID
		if citation == "" {
			citation = chunk.DocID
		}
		snippet := truncate(collapseWhitespace(chunk.Content), promptSnippetChars)
		b.WriteString("\n")
		b.WriteString(citation)
		b.WriteString(": ")
		b.WriteString(snippet)
	}
	b.WriteString("\nWhen answering, cite sources like [kb_doc_001].")
	return b.String()
}
