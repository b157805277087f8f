package domain

import (
	"time"

	"github.com/google/uuid"
)

// Identity is an anonymous participant account. The alias is the generated,
// unique login name; the passphrase exists only as a bcrypt hash. Attributes
// is an opaque bag (cohort, device, locale) searchable by containment.
type Identity struct {
	ID           uuid.UUID
	Alias        string
	PasswordHash string
	Role         IdentityRole
	Attributes   map[string]any
	CreatedAt    time.Time
	LastSeenAt   *time.Time
}

// IdentityFilter narrows identity listings. Zero-value fields are ignored;
// AttrKey/AttrValue select by attribute containment.
type IdentityFilter struct {
	Role      *IdentityRole
	AttrKey   string
	AttrValue any
	Limit     int
	Offset    int
}
