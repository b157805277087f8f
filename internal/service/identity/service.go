// Package identity manages anonymous participant accounts: enrollment with
// generated credentials, passphrase login, and the opaque attribute bag used
// to slice cohorts. Participants are pseudonymous; the alias is the only
// login name and the passphrase plaintext leaves the process exactly once,
// in the enrollment response.
package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/fernwood-lab/studyflow-backend/internal/config"
	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

const (
	// passphraseLength balances phone-support readability against brute
	// force; 12 chars over a 54-symbol alphabet is ~69 bits.
	passphraseLength = 12

	// maxAliasAttempts bounds the regenerate-and-retry loop on alias
	// collisions. The alias space is ~5.7M, so hitting this means the
	// generator is broken, not the space full.
	maxAliasAttempts = 5
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type identityRepo interface {
	Create(ctx context.Context, identity domain.Identity) (domain.Identity, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Identity, error)
	GetByAlias(ctx context.Context, alias string) (domain.Identity, error)
	UpdateAttributes(ctx context.Context, id uuid.UUID, attrs map[string]any) (domain.Identity, error)
	UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, int, error)
}

type auditRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, eventType domain.AuditEventType, payload map[string]any)
}

type tokenIssuer interface {
	GenerateAccessToken(identityID uuid.UUID, role string) (string, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements identity business logic.
type Service struct {
	identities identityRepo
	audit      auditRecorder
	tokens     tokenIssuer
	cfg        config.AuthConfig
	clock      clockwork.Clock
	log        *slog.Logger
}

// NewService creates a new identity service.
func NewService(
	log *slog.Logger,
	identities identityRepo,
	audit auditRecorder,
	tokens tokenIssuer,
	cfg config.AuthConfig,
	clock clockwork.Clock,
) *Service {
	return &Service{
		identities: identities,
		audit:      audit,
		tokens:     tokens,
		cfg:        cfg,
		clock:      clock,
		log:        log.With("service", "identity"),
	}
}
