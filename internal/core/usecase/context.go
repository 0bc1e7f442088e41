package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
	"github.com/soporte-labs/persona-assistant/internal/core/ports"
)

// PipelineObserver receives pipeline outcomes for instrumentation. All
// methods must be cheap and non-blocking.
type PipelineObserver interface {
	ContextBuilt(decision domain.Decision, stage string, candidates, chunks int, duration time.Duration)
	JudgeFailedOpen()
}

// BuildContextUseCase is the hybrid retrieval-and-validation pipeline. It is
// stateless across calls and safe for concurrent use; the corpus is re-read
// fresh on every call.
type BuildContextUseCase struct {
	corpus    ports.CorpusReader
	semantic  semanticRetriever
	bm25      bm25Retriever
	judge     ports.RelevanceJudge
	publisher ports.EscalationPublisher
	observer  PipelineObserver
	opts      RetrievalOptions
	logger    *slog.Logger
}

func NewBuildContextUseCase(
	corpus ports.CorpusReader,
	embedder ports.Embedder,
	judge ports.RelevanceJudge,
	publisher ports.EscalationPublisher,
	observer PipelineObserver,
	opts RetrievalOptions,
	logger *slog.Logger,
) *BuildContextUseCase {
	opts = opts.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildContextUseCase{
		corpus:    corpus,
		semantic:  semanticRetriever{embedder: embedder},
		bm25:      bm25Retriever{k1: opts.BM25K1, b: opts.BM25B},
		judge:     judge,
		publisher: publisher,
		observer:  observer,
		opts:      opts,
		logger:    logger,
	}
}

// BuildContext retrieves, fuses, and validates knowledge for one query.
// Starvation (empty corpus, empty fusion, weak similarity or precision,
// judge rejection) yields a normal escalate outcome. An embedding failure is
// the one hard error: no answer can be produced without a query vector.
func (uc *BuildContextUseCase) BuildContext(ctx context.Context, personaID, query string) (*domain.RetrievalContext, error) {
	start := time.Now()

	personaID = strings.TrimSpace(personaID)
	if personaID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "build context", fmt.Errorf("persona_id is required"))
	}

	candidates, err := collectCandidates(ctx, uc.corpus, personaID, uc.opts.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("collect candidates: %w", err)
	}
	if len(candidates) == 0 {
		result := &domain.RetrievalContext{
			Decision:       domain.DecisionEscalate,
			Reason:         reasonEmptyCorpus,
			Confidence:     domain.ConfidenceLow,
			ResponsePrefix: "",
			Chunks:         []domain.RetrievedChunk{},
		}
		uc.notifyEscalation(ctx, personaID, query, result.Reason)
		uc.observe(domain.DecisionEscalate, "empty_corpus", 0, 0, start)
		return result, nil
	}

	queryTerms := extractQueryTerms(query, uc.opts.MaxQueryTerms)
	if len(queryTerms) == 0 {
		queryTerms = splitAlphaNumLower(query)
	}

	bm25Ranked := uc.bm25.rank(queryTerms, candidates, uc.opts.TopK)
	semanticRanked, err := uc.semantic.rank(ctx, query, candidates, uc.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("semantic retrieval: %w", err)
	}

	chunks := fuseRanked(bm25Ranked, semanticRanked, candidates, uc.opts)
	retrieval := buildRetrievalMetrics(chunks, bm25Ranked)

	outcome := uc.runValidation(ctx, query, queryTerms, chunks)
	retrieval.ContextPrecision = outcome.precision

	result := &domain.RetrievalContext{
		Decision:       outcome.decision,
		Reason:         outcome.reason,
		Confidence:     outcome.confidence,
		ResponsePrefix: outcome.responsePrefix,
		Chunks:         chunks,
		Metrics: domain.ContextMetrics{
			Retrieval: retrieval,
			Validation: domain.ValidationMetrics{
				RelevanceJudgeResult: outcome.judgeResult,
				CitationsTotal:       len(chunks),
			},
		},
	}

	if result.Decision == domain.DecisionEscalate {
		uc.notifyEscalation(ctx, personaID, query, result.Reason)
	}
	uc.observe(result.Decision, outcome.stage, len(candidates), len(chunks), start)
	return result, nil
}

// notifyEscalation is fire-and-forget: a broken event bus must not turn a
// clean escalate outcome into a request failure.
func (uc *BuildContextUseCase) notifyEscalation(ctx context.Context, personaID, query, reason string) {
	if uc.publisher == nil {
		return
	}
	event := domain.EscalationEvent{
		ID:         uuid.NewString(),
		PersonaID:  personaID,
		Query:      query,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := uc.publisher.PublishEscalation(ctx, event); err != nil {
		uc.logger.Warn("escalation_publish_failed", "persona_id", personaID, "reason", reason, "error", err)
	}
}

func (uc *BuildContextUseCase) observe(decision domain.Decision, stage string, candidates, chunks int, start time.Time) {
	if uc.observer == nil {
		return
	}
	uc.observer.ContextBuilt(decision, stage, candidates, chunks, time.Since(start))
}
