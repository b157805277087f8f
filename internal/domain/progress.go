package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProgressRecord is the per-user, per-module state and payload. Exactly one
// record exists per (UserID, ModuleID); it only moves forward through
// NOT_STARTED -> IN_PROGRESS -> COMPLETED and is never deleted by the
// normal flow. Responses is the caller-supplied opaque payload; Metadata
// carries completion context (e.g. the consent version in force when the
// module was completed).
type ProgressRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ModuleID    uuid.UUID
	ModuleName  string
	Status      ProgressStatus
	Responses   map[string]any
	Metadata    map[string]any
	StartedAt   time.Time
	LastSavedAt time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCompleted reports whether the record reached its terminal state.
func (p *ProgressRecord) IsCompleted() bool {
	return p.Status == ProgressStatusCompleted
}

// MergeResponses overlays src onto dst key by key and returns the result.
// dst is not mutated. Used by saves and completes: later submissions win
// per key, earlier keys survive unless overwritten.
func MergeResponses(dst, src map[string]any) map[string]any {
	if len(dst) == 0 && len(src) == 0 {
		return map[string]any{}
	}
	merged := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		merged[k] = v
	}
	for k, v := range src {
		merged[k] = v
	}
	return merged
}
