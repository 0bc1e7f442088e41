package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

const (
	reasonEmptyCorpus   = "Knowledge base empty for persona"
	reasonEmptyFusion   = "Hybrid retrieval returned 0 results"
	reasonLowSimilarity = "Low semantic similarity across retrieved chunks"
	reasonJudgeNo       = "LLM Relevance Judge determined retrieved context insufficient"

	lowConfidencePrefix = "I found limited information, but here's what I know: "

	verdictYes = "YES"
	verdictNo  = "NO"
)

type validationOutcome struct {
	decision       domain.Decision
	reason         string
	confidence     domain.Confidence
	responsePrefix string
	judgeResult    *string
	precision      float64
	stage          string
}

// runValidation applies the sequential gate: similarity floor, relevance
// judge, context-precision threshold. Starvation is a normal escalate
// outcome, never an error. Context precision is always computed for the
// metrics even when an earlier check already escalated; its threshold only
// applies while the decision is still proceed.
func (uc *BuildContextUseCase) runValidation(ctx context.Context, query string, queryTerms []string, chunks []domain.RetrievedChunk) validationOutcome {
	if len(chunks) == 0 {
		return validationOutcome{
			decision:   domain.DecisionEscalate,
			reason:     reasonEmptyFusion,
			confidence: domain.ConfidenceLow,
			stage:      "empty_fusion",
		}
	}

	var sumSimilarity, maxSimilarity float64
	for _, chunk := range chunks {
		sumSimilarity += chunk.SimilarityScore
		if chunk.SimilarityScore > maxSimilarity {
			maxSimilarity = chunk.SimilarityScore
		}
	}
	avgSimilarity := sumSimilarity / float64(len(chunks))

	out := validationOutcome{
		decision:   domain.DecisionProceed,
		confidence: domain.ConfidenceHigh,
	}

	if avgSimilarity < uc.opts.MinAvgSimilarity || maxSimilarity < uc.opts.MinTopSimilarity {
		out.decision = domain.DecisionEscalate
		out.reason = reasonLowSimilarity
		out.confidence = domain.ConfidenceLow
		out.stage = "low_similarity"
	}

	if out.decision == domain.DecisionProceed {
		verdict := uc.consultJudge(ctx, query, chunks)
		out.judgeResult = &verdict
		if verdict == verdictNo {
			out.decision = domain.DecisionEscalate
			out.reason = reasonJudgeNo
			out.confidence = domain.ConfidenceLow
			out.stage = "judge_no"
		}
	}

	out.precision = contextPrecision(queryTerms, chunks, uc.opts.PrecisionMatches)
	switch {
	case out.decision != domain.DecisionProceed:
	case out.precision < uc.opts.MinContextPrecision:
		out.decision = domain.DecisionEscalate
		out.reason = fmt.Sprintf("Context Precision %.2f below %.1f threshold", out.precision, uc.opts.MinContextPrecision)
		out.confidence = domain.ConfidenceLow
		out.stage = "low_precision"
	case out.precision < uc.opts.HighPrecisionFloor:
		out.confidence = domain.ConfidenceLow
		out.responsePrefix = lowConfidencePrefix
	}

	return out
}

// consultJudge fails OPEN: a judge that is unreachable or answers something
// unparseable must not block an answer backed by otherwise-strong similarity
// scores, so escalation from this stage requires an explicit NO.
func (uc *BuildContextUseCase) consultJudge(ctx context.Context, query string, chunks []domain.RetrievedChunk) string {
	if uc.judge == nil {
		return verdictYes
	}

	documents := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		documents = append(documents, truncate(chunk.Content, uc.opts.JudgeSnippetMax))
	}

	answer, err := uc.judge.JudgeRelevance(ctx, query, documents)
	if err != nil {
		uc.logger.Warn("relevance_judge_failed_open", "error", err)
		if uc.observer != nil {
			uc.observer.JudgeFailedOpen()
		}
		return verdictYes
	}
	if strings.Contains(strings.ToUpper(answer), verdictYes) {
		return verdictYes
	}
	return verdictNo
}
