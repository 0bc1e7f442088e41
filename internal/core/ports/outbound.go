package ports

import (
	"context"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

// CorpusReader exposes the two persona-scoped corpus views. The corpus is
// owned and mutated by the external ingestion/distillation pipelines; this
// service reads it fresh on every call.
type CorpusReader interface {
	ListKnowledgeChunks(ctx context.Context, personaID string, limit int) ([]domain.KnowledgeChunk, error)
	ListArticleChunks(ctx context.Context, personaID string, limit int) ([]domain.ArticleChunk, error)
}

// Embedder builds vectors for query text. Chunk embeddings are produced
// upstream by the ingestion pipeline, never here.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// RelevanceJudge answers whether the retrieved documents are sufficient to
// answer the query. The verdict is "YES" or "NO".
type RelevanceJudge interface {
	JudgeRelevance(ctx context.Context, query string, documents []string) (string, error)
}

// EscalationPublisher emits gate escalations for the ticketing workflow.
type EscalationPublisher interface {
	PublishEscalation(ctx context.Context, event domain.EscalationEvent) error
}

// EscalationConsumer delivers escalation events to a handler until the
// context is cancelled.
type EscalationConsumer interface {
	SubscribeEscalations(ctx context.Context, handler func(context.Context, domain.EscalationEvent) error) error
}

// EscalationStore persists escalation events for operator review.
type EscalationStore interface {
	RecordEscalation(ctx context.Context, event domain.EscalationEvent, cls *domain.TicketClassification) error
}

// TicketClassifier is the contract of the external ticket-routing component.
type TicketClassifier interface {
	Classify(ctx context.Context, text string) (domain.TicketClassification, error)
}
