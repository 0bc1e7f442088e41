package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/soporte-labs/persona-assistant/internal/core/domain"
)

type EscalationRepository struct {
	db *sql.DB
}

func NewEscalationRepository(db *sql.DB) *EscalationRepository {
	return &EscalationRepository{db: db}
}

func (r *EscalationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083102)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS escalations (
	id TEXT PRIMARY KEY,
	persona_id TEXT NOT NULL,
	query TEXT NOT NULL,
	reason TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	category TEXT,
	urgency TEXT,
	requires_human BOOLEAN,
	needs_supervisor BOOLEAN,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_escalations_persona ON escalations(persona_id);
CREATE INDEX IF NOT EXISTS idx_escalations_occurred_at ON escalations(occurred_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// RecordEscalation is idempotent on event ID: the queue redelivers on worker
// restarts and the same escalation must not be counted twice.
func (r *EscalationRepository) RecordEscalation(ctx context.Context, event domain.EscalationEvent, cls *domain.TicketClassification) error {
	var category, urgency any
	var requiresHuman, needsSupervisor any
	if cls != nil {
		category = cls.Category
		urgency = cls.Urgency
		requiresHuman = cls.RequiresHuman
		needsSupervisor = cls.NeedsSupervisor
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO escalations (id, persona_id, query, reason, occurred_at, category, urgency, requires_human, needs_supervisor)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING
`, event.ID, event.PersonaID, event.Query, event.Reason, event.OccurredAt, category, urgency, requiresHuman, needsSupervisor)
	if err != nil {
		return fmt.Errorf("insert escalation: %w", err)
	}
	return nil
}
