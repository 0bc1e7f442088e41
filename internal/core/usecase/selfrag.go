package usecase

import (
	"regexp"
	"strings"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

var (
	relevanceMarkerRe = regexp.MustCompile(`(?i)\[(RELEVANT|IRRELEVANT)\]`)
	groundingMarkerRe = regexp.MustCompile(`(?i)\[(GROUNDED|UNGROUNDED)\]`)
)

// ParseSelfRAGTokens extracts the first relevance and grounding reflection
// markers from a generated answer and strips them from the visible text.
// Flags are nil when the corresponding marker is absent.
func ParseSelfRAGTokens(raw string) domain.SelfRAGResult {
	result := domain.SelfRAGResult{Answer: raw}

	if m := relevanceMarkerRe.FindStringSubmatch(result.Answer); m != nil {
		flag := strings.ToUpper(m[1])
		result.RelevanceFlag = &flag
		result.Answer = strings.TrimSpace(strings.Replace(result.Answer, m[0], "", 1))
	}
	if m := groundingMarkerRe.FindStringSubmatch(result.Answer); m != nil {
		flag := strings.ToUpper(m[1])
		result.GroundingFlag = &flag
		result.Answer = strings.TrimSpace(strings.Replace(result.Answer, m[0], "", 1))
	}

	result.Answer = strings.TrimSpace(result.Answer)
	return result
}

// EvaluateGrounding estimates how much of the answer is supported by the
// retrieved chunks, independent of the model's self-reported flags. The two
// signals can disagree; callers should treat either a reported UNGROUNDED or
// a low score here as cause for a secondary escalation decision.
func EvaluateGrounding(answer string, chunks []domain.RetrievedChunk) domain.GroundingReport {
	answerTerms := toTokenSet(answer)
	chunkTerms := make(map[string]struct{})
	for _, chunk := range chunks {
		for _, token := range splitAlphaNumLower(chunk.Content) {
			chunkTerms[token] = struct{}{}
		}
	}

	overlap := 0
	for term := range answerTerms {
		if _, ok := chunkTerms[term]; ok {
			overlap++
		}
	}
	denominator := len(answerTerms)
	if denominator == 0 {
		denominator = 1
	}
	score := float64(overlap) / float64(denominator)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	report := domain.GroundingReport{GroundingScore: score}
	for _, chunk := range chunks {
		citation := chunk.CitationID
		if citation == "" {
			citation = chunk.DocID
		}
		if citation == "" {
			continue
		}
		report.CitationsTotal++
		if strings.Contains(answer, "["+citation+"]") {
			report.CitationsFound++
		}
	}
	return report
}
