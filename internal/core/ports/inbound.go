package ports

import (
	"context"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

// ContextBuilder is the inbound contract for the retrieval pipeline. The sole
// entry point; everything it returns is call-scoped.
type ContextBuilder interface {
	BuildContext(ctx context.Context, personaID, query string) (*domain.RetrievalContext, error)
}

// EscalationRecorder is the inbound contract for the worker that persists
// escalation events.
type EscalationRecorder interface {
	Record(ctx context.Context, event domain.EscalationEvent) error
}
