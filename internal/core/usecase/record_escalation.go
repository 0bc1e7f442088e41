package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
	"github.com/soporte-labs/persona-assistant/internal/core/ports"
)

// RecordEscalationUseCase persists gate escalations for operator review.
// When a ticket classifier is wired, the escalated query is annotated with
// its routing classification; classifier failures only cost the annotation.
type RecordEscalationUseCase struct {
	store      ports.EscalationStore
	classifier ports.TicketClassifier
	logger     *slog.Logger
}

func NewRecordEscalationUseCase(store ports.EscalationStore, classifier ports.TicketClassifier, logger *slog.Logger) *RecordEscalationUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordEscalationUseCase{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

func (uc *RecordEscalationUseCase) Record(ctx context.Context, event domain.EscalationEvent) error {
	var cls *domain.TicketClassification
	if uc.classifier != nil {
		classified, err := uc.classifier.Classify(ctx, event.Query)
		if err != nil {
			uc.logger.Warn("escalation_classify_failed", "escalation_id", event.ID, "error", err)
		} else {
			cls = &classified
		}
	}

	if err := uc.store.RecordEscalation(ctx, event, cls); err != nil {
		return fmt.Errorf("record escalation: %w", err)
	}
	return nil
}
