package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConsentVersion is a versioned agreement document. At most one version is
// ACTIVE at a time; activation retires the previous ACTIVE version in the
// same transaction.
type ConsentVersion struct {
	ID          uuid.UUID
	Version     string
	Status      ConsentVersionStatus
	Content     string
	CreatedAt   time.Time
	ActivatedAt *time.Time
	RetiredAt   *time.Time
}

// IsActive reports whether this version currently governs consent.
func (v *ConsentVersion) IsActive() bool {
	return v.Status == ConsentVersionStatusActive
}

// ConsentRecord captures a participant's acceptance of one consent version.
// Created at most once per (UserID, Version); immutable after creation.
// Content snapshots the text the participant actually accepted.
type ConsentRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Version    string
	Content    string
	AcceptedAt time.Time
}
