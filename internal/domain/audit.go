package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one immutable entry of the append-only audit trail. Events
// are never updated; the only entity with no current state, only history.
type AuditEvent struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	EventType AuditEventType
	Payload   map[string]any
	CreatedAt time.Time
}

// AuditFilter narrows audit-trail listings. Zero-value fields are ignored.
type AuditFilter struct {
	UserID    *uuid.UUID
	EventType *AuditEventType
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}
