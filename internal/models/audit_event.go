package models

import "time"

// AuditEvent is a single entry in the authentication audit log.
type AuditEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Type       string    `json:"type"` // SIGNUP | LOGIN | LOGIN_FAILED | LOGOUT
	Username   string    `json:"username"`
	Metadata   any       `json:"metadata,omitempty"`
}
