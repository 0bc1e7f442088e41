package domain

import "time"

// EscalationEvent is emitted when the validation gate decides a query must be
// handed to a human. The reason is operational detail and is never shown to
// end users verbatim.
type EscalationEvent struct {
	ID         string    `json:"id"`
	PersonaID  string    `json:"persona_id"`
	Query      string    `json:"query"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TicketClassification is the contract of the external ticket-routing
// component.
type TicketClassification struct {
	Category        string `json:"category"`
	Urgency         string `json:"urgency"`
	RequiresHuman   bool   `json:"requires_human"`
	NeedsSupervisor bool   `json:"needs_supervisor"`
}
